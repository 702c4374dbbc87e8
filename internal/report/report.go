// Package report writes build results and post listings as styled text or
// JSON.
package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/config"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// Reporter formats and writes build results.
type Reporter interface {
	// Report writes formatted output for the given result.
	// It returns the number of failures reported and any write errors.
	Report(ctx context.Context, result *site.Result) (int, error)
}

// New creates a Reporter for the specified options.
func New(opts Options) (Reporter, error) {
	// Default writer to stdout if not specified
	if opts.Writer == nil {
		opts.Writer = DefaultOptions().Writer
	}

	switch opts.Format {
	case config.FormatJSON:
		return NewJSONReporter(opts), nil
	case config.FormatText, "":
		return NewTextReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}

// fileSources returns a pretty.SourceFunc reading files relative to root.
// Contents are cached, since a template can fail in many renders.
func fileSources(root string) pretty.SourceFunc {
	cache := make(map[string][]byte)
	return func(filename string) ([]byte, bool) {
		if content, ok := cache[filename]; ok {
			return content, content != nil
		}
		path := filename
		if !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		content, err := os.ReadFile(path)
		if err != nil {
			content = nil
		}
		cache[filename] = content
		return content, content != nil
	}
}
