package template

import (
	"bytes"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/scanner"
)

const (
	leftDelim  = "{{"
	rightDelim = "}}"
)

// itemKind classifies a lexed item.
type itemKind uint8

const (
	itemEOF itemKind = iota
	itemText
	itemVariable // {{ name }} or {{ . }}
	itemAssign   // {{ name = "literal" }}
	itemDefine   // {{ define name }}
	itemIf       // {{ if name }}
	itemRange    // {{ range name }}
	itemElse     // {{ else }}
	itemEnd      // {{ end }}
	itemTemplate // {{ template "path" }}
)

var itemNames = map[itemKind]string{
	itemEOF:      "EOF",
	itemText:     "text",
	itemVariable: "variable",
	itemAssign:   "assignment",
	itemDefine:   "define",
	itemIf:       "if",
	itemRange:    "range",
	itemElse:     "else",
	itemEnd:      "end",
	itemTemplate: "template",
}

func (k itemKind) String() string {
	return itemNames[k]
}

// control reports whether the item is trimmed when it sits alone on a line.
func (k itemKind) control() bool {
	switch k {
	case itemAssign, itemDefine, itemIf, itemRange, itemElse, itemEnd:
		return true
	default:
		return false
	}
}

// item is a text run or one command.
type item struct {
	kind itemKind
	loc  scanner.Location

	// name is the identifier or template key of a command.
	name string

	// text is the raw text of a text item, or the value of an assignment.
	text []byte

	// standalone is set on control commands that were alone on their line.
	// The whitespace and newline after them have already been consumed.
	standalone bool
}

type lexer struct {
	s *scanner.Scanner
}

func (l *lexer) next() (item, error) {
	s := l.s
	loc := s.Location()
	if s.EOF() {
		return item{kind: itemEOF, loc: loc}, nil
	}
	if s.HasPrefix(leftDelim) {
		return l.command()
	}
	start := s.Offset()
	idx := bytes.Index(s.Rest(), []byte(leftDelim))
	if idx < 0 {
		s.Consume(len(s.Rest()))
	} else {
		s.Consume(idx)
	}
	return item{kind: itemText, loc: loc, text: s.Source()[start:s.Offset()]}, nil
}

func (l *lexer) command() (item, error) {
	s := l.s
	start := s.Offset()
	it := item{loc: s.Location()}
	s.Consume(len(leftDelim))
	s.SkipSpaces()

	word, err := l.word()
	if err != nil {
		return item{}, err
	}
	switch word {
	case "define", "if", "range":
		s.SkipSpaces()
		nameLoc := s.Location()
		name, err := l.word()
		if err != nil {
			return item{}, err
		}
		if word == "define" && name == "." {
			return item{}, s.FailAt(nameLoc, "cannot define '.'")
		}
		it.kind = map[string]itemKind{"define": itemDefine, "if": itemIf, "range": itemRange}[word]
		it.name = name
	case "else":
		it.kind = itemElse
	case "end":
		it.kind = itemEnd
	case "template":
		s.SkipSpaces()
		key, err := l.stringLiteral()
		if err != nil {
			return item{}, err
		}
		it.kind = itemTemplate
		it.name = key
	default:
		it.kind = itemVariable
		it.name = word
		s.SkipSpaces()
		if word != "." && s.AttemptByte('=') {
			s.SkipSpaces()
			value, err := l.stringLiteral()
			if err != nil {
				return item{}, err
			}
			it.kind = itemAssign
			it.text = []byte(value)
		}
	}

	s.SkipSpaces()
	if err := s.Expect(rightDelim); err != nil {
		return item{}, err
	}
	if it.kind.control() && l.blankBefore(start) && l.blankAfter() {
		it.standalone = true
		s.SkipSpaces()
		s.AttemptByte('\n')
	}
	return it, nil
}

// word lexes an identifier or ".".
func (l *lexer) word() (string, error) {
	s := l.s
	if s.AttemptByte('.') {
		return ".", nil
	}
	start := s.Offset()
	if c, ok := s.Peek(0); !ok || !isIdentStart(c) {
		got := s.Rest()[:min(len(s.Rest()), len(rightDelim))]
		if len(got) == 0 {
			return "", s.Fail("expected identifier, got EOF")
		}
		return "", s.Fail("expected identifier, got %q", got)
	}
	for {
		c, ok := s.Peek(0)
		if !ok || !isIdentChar(c) {
			break
		}
		s.Consume(1)
	}
	return string(s.Source()[start:s.Offset()]), nil
}

// stringLiteral lexes a double-quoted string with \" \\ \n and \t escapes.
func (l *lexer) stringLiteral() (string, error) {
	s := l.s
	loc := s.Location()
	if err := s.Expect(`"`); err != nil {
		return "", err
	}
	var builder strings.Builder
	for {
		at := s.Location()
		c, ok := s.Eat()
		if !ok || c == '\n' {
			return "", s.FailAt(loc, "unterminated string")
		}
		switch c {
		case '"':
			return builder.String(), nil
		case '\\':
			esc, ok := s.Eat()
			if !ok {
				return "", s.FailAt(loc, "unterminated string")
			}
			switch esc {
			case '"', '\\':
				builder.WriteByte(esc)
			case 'n':
				builder.WriteByte('\n')
			case 't':
				builder.WriteByte('\t')
			default:
				return "", s.FailAt(at, "unknown escape sequence '\\%c'", esc)
			}
		default:
			builder.WriteByte(c)
		}
	}
}

// blankBefore reports whether only spaces and tabs precede offset on its line.
func (l *lexer) blankBefore(offset int) bool {
	src := l.s.Source()
	for idx := offset - 1; idx >= 0 && src[idx] != '\n'; idx-- {
		if src[idx] != ' ' && src[idx] != '\t' {
			return false
		}
	}
	return true
}

// blankAfter reports whether only spaces and tabs follow the cursor on its line.
func (l *lexer) blankAfter() bool {
	for _, c := range l.s.Rest() {
		switch c {
		case '\n':
			return true
		case ' ', '\t', '\r':
		default:
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c == '_' || (c|0x20 >= 'a' && c|0x20 <= 'z')
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c == '-' || (c >= '0' && c <= '9')
}
