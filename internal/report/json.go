package report

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/site"
)

// jsonVersion is the schema version of JSON output.
const jsonVersion = "1.0.0"

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version  string        `json:"version"`
	Outcomes []JSONOutcome `json:"outcomes"`
	Summary  JSONSummary   `json:"summary"`
}

// JSONOutcome represents a single loaded or rendered file.
type JSONOutcome struct {
	Kind    string     `json:"kind"`
	Source  string     `json:"source,omitempty"`
	Output  string     `json:"output,omitempty"`
	Written bool       `json:"written,omitempty"`
	Error   *JSONError `json:"error,omitempty"`
}

// JSONError is a failure. Location fields are set for located failures.
type JSONError struct {
	Message string     `json:"message"`
	File    string     `json:"file,omitempty"`
	Line    int        `json:"line,omitempty"`
	Column  int        `json:"column,omitempty"`
	Notes   []JSONNote `json:"notes,omitempty"`
}

// JSONNote is context attached to a failure.
type JSONNote struct {
	Message string `json:"message"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	Templates  int   `json:"templates"`
	Posts      int   `json:"posts"`
	Pages      int   `json:"pages"`
	Drafts     int   `json:"drafts"`
	Written    int   `json:"written"`
	Unchanged  int   `json:"unchanged"`
	Assets     int   `json:"assets"`
	Failures   int   `json:"failures"`
	DurationMS int64 `json:"durationMs"`
}

// JSONReporter formats results as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, result *site.Result) (_ int, err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	output := buildOutput(result)

	if err := encode(r.bw, output, r.opts.Compact); err != nil {
		return 0, err
	}

	return output.Summary.Failures, nil
}

func encode(bw *bufio.Writer, value any, compact bool) error {
	encoder := json.NewEncoder(bw)
	if !compact {
		encoder.SetIndent("", "  ")
	}
	if err := encoder.Encode(value); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func buildOutput(result *site.Result) *JSONOutput {
	output := &JSONOutput{
		Version:  jsonVersion,
		Outcomes: make([]JSONOutcome, 0),
	}

	if result == nil {
		return output
	}

	for _, outcome := range result.Outcomes {
		item := JSONOutcome{
			Kind:    string(outcome.Kind),
			Source:  outcome.Source,
			Output:  outcome.Output,
			Written: outcome.Written,
		}
		if outcome.Err != nil {
			item.Error = jsonError(outcome.Err)
		}
		output.Outcomes = append(output.Outcomes, item)
	}

	stats := result.Stats
	output.Summary = JSONSummary{
		Templates:  stats.Templates,
		Posts:      stats.Posts,
		Pages:      stats.Pages,
		Drafts:     stats.Drafts,
		Written:    stats.Written,
		Unchanged:  stats.Unchanged,
		Assets:     stats.Assets,
		Failures:   stats.Failures,
		DurationMS: stats.Duration.Milliseconds(),
	}

	return output
}

func jsonError(err error) *JSONError {
	failure, ok := reporter.AsFailure(err)
	if !ok {
		return &JSONError{Message: err.Error()}
	}

	out := &JSONError{
		Message: failure.Message,
		File:    failure.Filename,
		Line:    failure.Position.Line,
		Column:  failure.Position.Column,
	}
	for _, note := range failure.Notes {
		out.Notes = append(out.Notes, JSONNote{
			Message: note.Message,
			File:    note.Filename,
			Line:    note.Position.Line,
			Column:  note.Position.Column,
		})
	}
	return out
}
