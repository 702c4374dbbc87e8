// Package highlight renders fenced code blocks for the Markdown renderer.
//
// The renderer drives a Session line by line: it strips container prefixes
// (blockquote markers, list indentation) itself and then calls Resume, which
// consumes one source line. Resume recognizes the closing fence at the start
// of a line and reports that the block is finished. Sessions HTML-escape
// everything they write.
package highlight

import (
	"bytes"
	"io"

	"github.com/yuin/goldmark/util"

	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// Fence is the delimiter that opens and closes a code block.
const Fence = "```"

// Highlighter starts code block sessions.
type Highlighter interface {
	// Begin writes the opening markup for a block in lang ("" when the fence
	// has no language) and returns a session for its lines.
	Begin(w io.Writer, lang string) (Session, error)
}

// Session consumes the lines of one code block.
type Session interface {
	// Resume consumes one line from s. It returns true after consuming the
	// closing fence line.
	Resume(w io.Writer, s *scanner.Scanner) (finished bool, err error)

	// End writes the closing markup.
	End(w io.Writer) error
}

// Plain escapes code without highlighting.
type Plain struct{}

// Begin implements Highlighter.
func (Plain) Begin(w io.Writer, lang string) (Session, error) {
	if err := writeOpen(w, lang); err != nil {
		return nil, err
	}
	return &plainSession{}, nil
}

type plainSession struct{}

func (*plainSession) Resume(w io.Writer, s *scanner.Scanner) (bool, error) {
	line, closing := nextLine(s)
	if closing {
		return true, nil
	}
	if err := WriteEscaped(w, line); err != nil {
		return false, err
	}
	return false, nil
}

func (*plainSession) End(w io.Writer) error {
	_, err := io.WriteString(w, "</code></pre>")
	return err
}

// nextLine consumes one line including its newline. It returns closing=true
// when the line is the closing fence, in which case the line is discarded.
func nextLine(s *scanner.Scanner) ([]byte, bool) {
	if s.HasPrefix(Fence) {
		s.UntilLineEnd()
		s.AttemptByte('\n')
		return nil, true
	}
	start := s.Offset()
	s.UntilLineEnd()
	s.AttemptByte('\n')
	return s.Source()[start:s.Offset()], false
}

func writeOpen(w io.Writer, lang string) error {
	if lang == "" {
		_, err := io.WriteString(w, "<pre><code>")
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(`<pre><code class="language-`)
	buf.Write(util.EscapeHTML([]byte(lang)))
	buf.WriteString(`">`)
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteEscaped writes text with '<' and '&' escaped.
func WriteEscaped(w io.Writer, text []byte) error {
	start := 0
	for idx, char := range text {
		var entity string
		switch char {
		case '<':
			entity = "&lt;"
		case '&':
			entity = "&amp;"
		default:
			continue
		}
		if _, err := w.Write(text[start:idx]); err != nil {
			return err
		}
		if _, err := io.WriteString(w, entity); err != nil {
			return err
		}
		start = idx + 1
	}
	_, err := w.Write(text[start:])
	return err
}
