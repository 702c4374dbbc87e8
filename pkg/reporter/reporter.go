// Package reporter provides the single-slot error sink shared by the scanner,
// the Markdown renderer and the template engine.
//
// A Reporter formats a located message, keeps it as the live failure and
// returns it as an error. Only one failure is live at a time: a later call to
// Fail replaces the previous one, so callers must surface a failure before
// triggering another. Use one Reporter per render; a Reporter is not safe for
// concurrent use.
package reporter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrFailure is the sentinel matched by every located failure.
// Use errors.Is(err, ErrFailure) to tell reported failures from other errors.
var ErrFailure = errors.New("reported failure")

// Position is a 1-based line and column in a source file.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// String formats the position as "line:col".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Note is additional context attached to a failure, such as the include
// site of a template that failed.
type Note struct {
	Filename string
	Position Position
	Message  string
}

// Failure is a formatted, located error message.
type Failure struct {
	Filename string
	Position Position
	Message  string
	Notes    []Note
}

// Error renders "file:line:col: message" followed by one line per note.
func (f *Failure) Error() string {
	var builder strings.Builder
	writeLocated(&builder, f.Filename, f.Position, f.Message)
	for _, note := range f.Notes {
		builder.WriteByte('\n')
		writeLocated(&builder, note.Filename, note.Position, "note: "+note.Message)
	}
	return builder.String()
}

// Is reports whether target is ErrFailure.
func (f *Failure) Is(target error) bool {
	return target == ErrFailure
}

func writeLocated(builder *strings.Builder, filename string, pos Position, msg string) {
	if filename != "" {
		builder.WriteString(filename)
		builder.WriteByte(':')
	}
	if pos.IsValid() {
		builder.WriteString(pos.String())
		builder.WriteByte(':')
	}
	if builder.Len() > 0 {
		builder.WriteByte(' ')
	}
	builder.WriteString(msg)
}

// Reporter retains at most one live failure.
type Reporter struct {
	last *Failure
}

// New creates an empty Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Fail formats a message located at pos in filename, makes it the live
// failure and returns it.
func (r *Reporter) Fail(filename string, pos Position, format string, args ...any) error {
	failure := &Failure{
		Filename: filename,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	}
	r.last = failure
	return failure
}

// AddNote appends context to the live failure. It is a no-op when no failure
// is live.
func (r *Reporter) AddNote(filename string, pos Position, format string, args ...any) {
	if r.last == nil {
		return
	}
	r.last.Notes = append(r.last.Notes, Note{
		Filename: filename,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// Err returns the live failure, or nil.
func (r *Reporter) Err() *Failure {
	return r.last
}

// Message returns the formatted live failure, or "" when there is none.
func (r *Reporter) Message() string {
	if r.last == nil {
		return ""
	}
	return r.last.Error()
}

// Reset clears the live failure.
func (r *Reporter) Reset() {
	r.last = nil
}

// AsFailure extracts a *Failure from err's chain.
func AsFailure(err error) (*Failure, bool) {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}
