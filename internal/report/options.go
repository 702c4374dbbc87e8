package report

import (
	"io"
	"os"

	"github.com/yaklabco/gomdsite/internal/ui/pretty"
	"github.com/yaklabco/gomdsite/pkg/config"
)

// bufWriterSize is the buffer size for buffered output writers (64 KiB).
const bufWriterSize = 64 * 1024

// Options configures reporter behavior.
type Options struct {
	// Writer is the destination for output (typically os.Stdout).
	Writer io.Writer

	// Format specifies the output format.
	Format config.OutputFormat

	// Color controls colorized output.
	// Values: "auto" (default), "always", "never"
	Color string

	// ShowContext includes the source line and a caret under each failure.
	ShowContext bool

	// ShowSummary displays aggregate statistics after results.
	ShowSummary bool

	// Compact uses minified JSON.
	Compact bool

	// DryRun marks results of a build that wrote nothing.
	DryRun bool

	// Root is the directory failure file names are relative to. It is
	// used to read source lines.
	Root string

	// TermWidth bounds table output. 0 means a default width.
	TermWidth int
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Writer:      os.Stdout,
		Format:      config.FormatText,
		Color:       pretty.ColorAuto,
		ShowContext: true,
		ShowSummary: true,
	}
}
