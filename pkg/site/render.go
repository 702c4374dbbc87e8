package site

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/fsutil"
	"github.com/yaklabco/gomdsite/pkg/markdown"
	"github.com/yaklabco/gomdsite/pkg/metadata"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
	"github.com/yaklabco/gomdsite/pkg/template"
)

// ErrUnsupportedFile indicates a file that is neither Markdown nor a
// template.
var ErrUnsupportedFile = errors.New("unsupported file type")

// RenderFile renders a single Markdown document or template to w. Markdown
// front matter is skipped and the body rendered with the site's options;
// a template is executed with the site globals bound. Links and images are
// resolved against the site when it can be loaded.
func (s *Site) RenderFile(ctx context.Context, w io.Writer, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".md" && ext != ".html" {
		return fmt.Errorf("%w: %s", ErrUnsupportedFile, path)
	}

	var hooks markdown.Hooks = markdown.DefaultHooks{}
	if _, err := s.Load(ctx); err == nil {
		hooks = s.hooks
	} else if ext == ".html" || !errors.Is(err, ErrNoTemplates) {
		return err
	}

	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return err
	}
	rep := reporter.New()

	if ext == ".html" {
		tmpl, err := template.Parse(scanner.New(data, path, rep))
		if err != nil {
			return err
		}
		return template.Execute(w, rep, tmpl, template.NewScope(s.globals), hooks)
	}

	_, body, err := metadata.Parse(data)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	doc, err := markdown.Parse(scanner.FromSpan(body, path, rep))
	if err != nil {
		return err
	}
	return markdown.Render(rep, w, doc, hooks, markdownOptions(s.cfg, s.hl))
}
