// Package scanner provides the byte cursor shared by the Markdown renderer and
// the template engine.
//
// A Scanner walks an immutable buffer forward, offers bounded lookahead that
// never moves the cursor, captures spans that borrow from the buffer, and
// reports failures located at "file:line:col" through a reporter.Reporter.
package scanner

import (
	"bytes"
	"sort"

	"github.com/yaklabco/gomdsite/pkg/reporter"
)

// Location is a 1-based line and column. Columns count bytes, not runes.
type Location = reporter.Position

// Span is a borrowed view into a source buffer plus the location of its
// first byte. It never owns memory: the buffer must outlive the span.
type Span struct {
	Text     []byte
	Location Location
}

// String returns the span's text.
func (s Span) String() string {
	return string(s.Text)
}

// Len returns the length of the span in bytes.
func (s Span) Len() int {
	return len(s.Text)
}

// IsEmpty returns true if the span has no text.
func (s Span) IsEmpty() bool {
	return len(s.Text) == 0
}

// Scanner is a forward-only cursor over source.
//
// Invariant: 0 <= offset <= len(source).
type Scanner struct {
	// Filename prefixes every reported location.
	Filename string

	// Reporter receives failures. A nil Reporter gets a private one on first use.
	Reporter *reporter.Reporter

	source []byte
	offset int
	base   Location

	// lineStarts holds the offset of every line start, built lazily.
	lineStarts []int
}

// New creates a Scanner over source with locations starting at 1:1.
func New(source []byte, filename string, rep *reporter.Reporter) *Scanner {
	return NewAt(source, Location{Line: 1, Column: 1}, filename, rep)
}

// NewAt creates a Scanner over source whose first byte is at base. It is
// used to scan a sub-slice of a file (for example a body after front matter)
// while still reporting locations relative to the whole file.
func NewAt(source []byte, base Location, filename string, rep *reporter.Reporter) *Scanner {
	if !base.IsValid() {
		base = Location{Line: 1, Column: 1}
	}
	return &Scanner{
		Filename: filename,
		Reporter: rep,
		source:   source,
		base:     base,
	}
}

// FromSpan creates a Scanner over a span.
func FromSpan(span Span, filename string, rep *reporter.Reporter) *Scanner {
	return NewAt(span.Text, span.Location, filename, rep)
}

// Source returns the whole buffer.
func (s *Scanner) Source() []byte {
	return s.source
}

// Offset returns the current byte offset.
func (s *Scanner) Offset() int {
	return s.offset
}

// EOF reports whether the cursor is at the end of input.
func (s *Scanner) EOF() bool {
	return s.offset >= len(s.source)
}

// Rest returns the unconsumed input.
func (s *Scanner) Rest() []byte {
	return s.source[s.offset:]
}

// Peek returns the byte n positions ahead of the cursor without consuming.
func (s *Scanner) Peek(n int) (byte, bool) {
	idx := s.offset + n
	if n < 0 || idx >= len(s.source) {
		return 0, false
	}
	return s.source[idx], true
}

// PeekIs reports whether the byte n positions ahead equals c.
func (s *Scanner) PeekIs(n int, c byte) bool {
	b, ok := s.Peek(n)
	return ok && b == c
}

// PrevByte returns the byte just before the cursor.
func (s *Scanner) PrevByte() (byte, bool) {
	if s.offset == 0 {
		return 0, false
	}
	return s.source[s.offset-1], true
}

// HasPrefix reports whether the unconsumed input starts with lit.
func (s *Scanner) HasPrefix(lit string) bool {
	rest := s.source[s.offset:]
	return len(rest) >= len(lit) && string(rest[:len(lit)]) == lit
}

// Eat consumes and returns one byte.
func (s *Scanner) Eat() (byte, bool) {
	if s.offset >= len(s.source) {
		return 0, false
	}
	b := s.source[s.offset]
	s.offset++
	return b, true
}

// Consume advances the cursor by n bytes, stopping at the end of input.
// Negative n is ignored.
func (s *Scanner) Consume(n int) {
	s.offset = min(s.offset+max(n, 0), len(s.source))
}

// Attempt consumes lit only if the input starts with it.
func (s *Scanner) Attempt(lit string) bool {
	if !s.HasPrefix(lit) {
		return false
	}
	s.offset += len(lit)
	return true
}

// AttemptByte consumes c only if it is the next byte.
func (s *Scanner) AttemptByte(c byte) bool {
	if s.offset < len(s.source) && s.source[s.offset] == c {
		s.offset++
		return true
	}
	return false
}

// Expect consumes lit or fails with `expected "lit", got "..."`.
func (s *Scanner) Expect(lit string) error {
	if s.Attempt(lit) {
		return nil
	}
	rest := s.source[s.offset:]
	if len(rest) == 0 {
		return s.Fail("expected %q, got EOF", lit)
	}
	got := rest[:min(len(lit), len(rest))]
	if idx := bytes.IndexByte(got, '\n'); idx >= 0 {
		got = got[:idx]
	}
	return s.Fail("expected %q, got %q", lit, got)
}

// Until consumes up to, but not including, delim and returns the consumed
// span. It fails with "unexpected EOF" if delim does not occur.
func (s *Scanner) Until(delim byte) (Span, error) {
	idx := bytes.IndexByte(s.source[s.offset:], delim)
	if idx < 0 {
		s.offset = len(s.source)
		return Span{}, s.Fail("unexpected EOF")
	}
	start := s.offset
	loc := s.Location()
	s.offset += idx
	return Span{Text: s.source[start:s.offset], Location: loc}, nil
}

// UntilLineEnd consumes the rest of the current line, excluding the newline.
func (s *Scanner) UntilLineEnd() Span {
	start := s.offset
	loc := s.Location()
	idx := bytes.IndexByte(s.source[s.offset:], '\n')
	if idx < 0 {
		s.offset = len(s.source)
	} else {
		s.offset += idx
	}
	return Span{Text: s.source[start:s.offset], Location: loc}
}

// SkipSpaces consumes spaces and tabs and returns how many bytes it skipped.
func (s *Scanner) SkipSpaces() int {
	start := s.offset
	for s.offset < len(s.source) && (s.source[s.offset] == ' ' || s.source[s.offset] == '\t') {
		s.offset++
	}
	return s.offset - start
}

// AtLineStart reports whether the cursor is at the start of a line.
func (s *Scanner) AtLineStart() bool {
	return s.offset == 0 || s.source[s.offset-1] == '\n'
}

// SpanFrom returns the span between start and the cursor.
func (s *Scanner) SpanFrom(start int) Span {
	return Span{Text: s.source[start:s.offset], Location: s.LocationAt(start)}
}

// Location returns the location of the cursor.
func (s *Scanner) Location() Location {
	return s.LocationAt(s.offset)
}

// LocationAt returns the location of an arbitrary offset in the buffer.
func (s *Scanner) LocationAt(offset int) Location {
	if s.lineStarts == nil {
		s.lineStarts = buildLineStarts(s.source)
	}
	offset = max(0, min(offset, len(s.source)))
	idx := sort.Search(len(s.lineStarts), func(i int) bool {
		return s.lineStarts[i] > offset
	}) - 1
	col := offset - s.lineStarts[idx]
	if idx == 0 {
		col += s.base.Column
	} else {
		col++
	}
	return Location{Line: s.base.Line + idx, Column: col}
}

// Column returns the 0-based byte column of the cursor within its line.
func (s *Scanner) Column() int {
	start := bytes.LastIndexByte(s.source[:s.offset], '\n') + 1
	return s.offset - start
}

// Fail reports a failure at the cursor.
func (s *Scanner) Fail(format string, args ...any) error {
	return s.FailAt(s.Location(), format, args...)
}

// FailAt reports a failure at loc and returns the sentinel failure.
func (s *Scanner) FailAt(loc Location, format string, args ...any) error {
	return s.reporter().Fail(s.Filename, loc, format, args...)
}

// Note appends context at loc to the live failure.
func (s *Scanner) Note(loc Location, format string, args ...any) {
	s.reporter().AddNote(s.Filename, loc, format, args...)
}

func (s *Scanner) reporter() *reporter.Reporter {
	if s.Reporter == nil {
		s.Reporter = reporter.New()
	}
	return s.Reporter
}

func buildLineStarts(source []byte) []int {
	starts := make([]int, 1, bytes.Count(source, []byte{'\n'})+1)
	for idx, char := range source {
		if char == '\n' {
			starts = append(starts, idx+1)
		}
	}
	return starts
}
