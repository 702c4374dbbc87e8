package report

import (
	"bufio"
	"context"
	"fmt"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// TextReporter formats results as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *TextReporter) Report(_ context.Context, result *site.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if result == nil {
		return 0, nil
	}

	var source pretty.SourceFunc
	if r.opts.ShowContext {
		source = fileSources(r.opts.Root)
	}

	failures := result.Failures()
	for _, outcome := range failures {
		path := outcome.Source
		if path == "" {
			path = outcome.Output
		}
		fmt.Fprint(r.bw, r.styles.FormatError(path, outcome.Err, source))
	}
	if len(failures) > 0 {
		fmt.Fprintln(r.bw)
	}

	if r.opts.ShowSummary {
		fmt.Fprint(r.bw, r.styles.FormatSummaryOneLine(result.Stats, r.opts.DryRun))
	}

	return len(failures), nil
}
