package pretty

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/reporter"
)

// SourceFunc returns the content of a file for source context. It reports
// false when the file cannot be read.
type SourceFunc func(filename string) ([]byte, bool)

// FormatFailure formats a located failure and its notes for terminal
// output. When source is non-nil, the offending line is shown with a caret
// under the reported column.
func (s *Styles) FormatFailure(failure *reporter.Failure, source SourceFunc) string {
	var builder strings.Builder

	builder.WriteString(s.formatLocated(failure.Filename, failure.Position, s.Error.Render("error"), failure.Message))
	builder.WriteString(s.context(failure.Filename, failure.Position, source))

	for _, note := range failure.Notes {
		builder.WriteString(s.formatLocated(note.Filename, note.Position, s.Note.Render("note"), note.Message))
		builder.WriteString(s.context(note.Filename, note.Position, source))
	}

	return builder.String()
}

// FormatError formats any error. Located failures get FormatFailure
// treatment; other errors print on one line, prefixed by path when known.
func (s *Styles) FormatError(path string, err error, source SourceFunc) string {
	if failure, ok := reporter.AsFailure(err); ok {
		return s.FormatFailure(failure, source)
	}
	return s.formatLocated(path, reporter.Position{}, s.Error.Render("error"), err.Error())
}

// formatLocated formats "  path:line:col  severity  message".
func (s *Styles) formatLocated(filename string, pos reporter.Position, severity, message string) string {
	var location string
	switch {
	case filename != "" && pos.IsValid():
		location = s.FilePath.Render(filename) + s.Location.Render(":"+pos.String())
	case filename != "":
		location = s.FilePath.Render(filename)
	case pos.IsValid():
		location = s.Location.Render(pos.String())
	}

	if location == "" {
		return fmt.Sprintf("  %s  %s\n", severity, s.Message.Render(message))
	}
	return fmt.Sprintf("  %s  %s  %s\n", location, severity, s.Message.Render(message))
}

func (s *Styles) context(filename string, pos reporter.Position, source SourceFunc) string {
	if source == nil || filename == "" || !pos.IsValid() {
		return ""
	}
	content, ok := source(filename)
	if !ok {
		return ""
	}
	line, ok := SourceLine(content, pos.Line)
	if !ok {
		return ""
	}
	return s.FormatSourceContext(line, pos.Column)
}

// FormatSourceContext formats the source line with a caret marker.
func (s *Styles) FormatSourceContext(line string, column int) string {
	var builder strings.Builder

	// Indent to align with failure output
	const indent = "        "

	// Tabs would shift the caret.
	line = strings.ReplaceAll(line, "\t", " ")

	// Source line
	builder.WriteString(indent + s.SourceLine.Render(line) + "\n")

	// Caret marker
	if column > 0 {
		padding := indent + strings.Repeat(" ", column-1)
		builder.WriteString(padding + s.Caret.Render("^") + "\n")
	}

	return builder.String()
}

// SourceLine returns the 1-based line of content without its newline.
func SourceLine(content []byte, line int) (string, bool) {
	if line < 1 {
		return "", false
	}
	for current := 1; ; current++ {
		end := bytes.IndexByte(content, '\n')
		if current == line {
			if end < 0 {
				end = len(content)
			}
			return strings.TrimSuffix(string(content[:end]), "\r"), true
		}
		if end < 0 {
			return "", false
		}
		content = content[end+1:]
	}
}
