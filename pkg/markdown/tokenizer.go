package markdown

import (
	"bytes"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/highlight"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// tokenKind classifies a Markdown token.
type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokNewline

	// Block tokens, only recognized while block markers are allowed.
	tokBlank       // whitespace-only line, including its newline
	tokIndent      // leading whitespace of a line
	tokHeading     // '#'..'######'
	tokListItem    // "- ", "* " or "N. "
	tokQuote       // '>'
	tokRule        // "***" or "---"
	tokFenceOpen   // "```lang"
	tokFootnoteDef // "[^label]: "
	tokFigureOpen  // "![" with a target after the matching ']'

	// Inline tokens.
	tokText
	tokRawTag      // "<tag ...>" copied verbatim
	tokLT          // '<' to escape
	tokAmp         // '&' to escape
	tokEntity      // "&name;" copied verbatim
	tokEscaped     // '\' + byte
	tokFootnoteRef // "[^label]"
	tokEm          // '_'
	tokStrong      // "**"
	tokCode        // '`'
	tokLinkOpen    // '[' with a target after the matching ']'
	tokLinkClose   // ']' of an open link, plus its target
	tokFigureClose // ']' of an open figure caption, plus its target
	tokSingleQuote
	tokDoubleQuote
	tokEnDash   // "--"
	tokEmDash   // " -- "
	tokEllipsis // "..."
)

// token is one lexical unit. Text borrows from the source buffer.
type token struct {
	kind tokenKind
	text []byte
	loc  scanner.Location

	// col is the 0-based byte column where the token starts.
	col int

	// level is the heading level, or the content column of a list item.
	level   int
	ordered bool

	// opening is set on quotes that open rather than close.
	opening bool

	// label marks link and figure targets that name a link reference.
	// labelLoc locates the target text.
	label    bool
	labelLoc scanner.Location
}

// closer records where a pending link or figure ends.
type closer struct {
	at     int // offset of the matching ']'
	end    int // offset just past the target
	figure bool
}

// tokenizer splits Markdown into tokens with a single peek slot.
type tokenizer struct {
	s     *scanner.Scanner
	links LinkMap

	// inline disables block tokens entirely.
	inline bool

	// blockAllowed is true at line start and after block-opening tokens,
	// and false after the first inline token of a line.
	blockAllowed bool

	// inCode is driven by the renderer while an inline code span is open.
	inCode bool

	closers []closer

	slot   token
	peeked bool
}

func newTokenizer(s *scanner.Scanner, links LinkMap, inline bool) *tokenizer {
	return &tokenizer{s: s, links: links, inline: inline}
}

// peek returns the next token without consuming it.
func (t *tokenizer) peek() token {
	if !t.peeked {
		t.slot = t.scan()
		t.peeked = true
	}
	return t.slot
}

// next consumes and returns the next token.
func (t *tokenizer) next() token {
	tok := t.peek()
	t.peeked = false
	return tok
}

func (t *tokenizer) scan() token {
	s := t.s
	if s.AtLineStart() && !t.inline {
		t.blockAllowed = true
	}
	tok := token{loc: s.Location(), col: s.Column()}
	if s.EOF() {
		tok.kind = tokEOF
		return tok
	}
	if n := len(t.closers); n > 0 && s.Offset() == t.closers[n-1].at {
		return t.scanCloser(tok)
	}
	if t.blockAllowed && !t.inCode {
		if t.scanBlock(&tok) {
			return tok
		}
		t.blockAllowed = false
	}
	if t.inCode {
		t.scanCode(&tok)
	} else {
		t.scanInline(&tok)
	}
	return tok
}

func (t *tokenizer) scanCloser(tok token) token {
	last := t.closers[len(t.closers)-1]
	t.closers = t.closers[:len(t.closers)-1]
	start := t.s.Offset()
	t.s.Consume(last.end - start)
	tok.text = t.s.Source()[start:last.end]
	tok.kind = tokLinkClose
	if last.figure {
		tok.kind = tokFigureClose
	}
	return tok
}

// scanBlock recognizes a block token at the cursor.
func (t *tokenizer) scanBlock(tok *token) bool {
	s := t.s
	line := currentLine(s.Rest())
	if isBlank(line) {
		s.Consume(len(line))
		s.AttemptByte('\n')
		tok.kind = tokBlank
		return true
	}
	if s.AtLineStart() && (line[0] == ' ' || line[0] == '\t') {
		tok.level = s.SkipSpaces()
		tok.kind = tokIndent
		return true
	}

	switch line[0] {
	case '>':
		s.Consume(1)
		s.AttemptByte(' ')
		tok.kind = tokQuote
		return true
	case '#':
		level := countLeading(line, '#')
		if level < len(line) && line[level] != ' ' {
			return false
		}
		s.Consume(level)
		s.SkipSpaces()
		tok.kind = tokHeading
		tok.level = level
		tok.text = bytes.TrimSpace(line[level:])
		t.blockAllowed = false
		return true
	case '`':
		if !s.HasPrefix(highlight.Fence) {
			return false
		}
		s.Consume(len(highlight.Fence))
		tok.kind = tokFenceOpen
		tok.text = bytes.TrimSpace(s.UntilLineEnd().Text)
		t.blockAllowed = false
		return true
	case '-', '*':
		if isRule(line) {
			s.Consume(len(line))
			tok.kind = tokRule
			t.blockAllowed = false
			return true
		}
		if len(line) > 1 && line[1] == ' ' {
			s.Consume(2)
			tok.kind = tokListItem
			tok.level = s.Column()
			return true
		}
		return false
	case '[':
		label, n := footnoteLabel(line)
		if n == 0 || n >= len(line) || line[n] != ':' {
			return false
		}
		s.Consume(n + 1)
		s.AttemptByte(' ')
		tok.kind = tokFootnoteDef
		tok.text = label
		return true
	case '!':
		if len(line) < 2 || line[1] != '[' {
			return false
		}
		target, ok := t.lookahead(s.Offset() + 1)
		if !ok {
			return false
		}
		s.Consume(2)
		t.pushCloser(target, true)
		tok.kind = tokFigureOpen
		tok.text, tok.label, tok.labelLoc = target.text, target.label, s.LocationAt(target.textAt)
		t.blockAllowed = false
		return true
	}

	digits := countDigits(line)
	if digits > 0 && digits+1 < len(line) && line[digits] == '.' && line[digits+1] == ' ' {
		s.Consume(digits + 2)
		tok.kind = tokListItem
		tok.ordered = true
		tok.level = s.Column()
		return true
	}
	return false
}

// inlineSpecials are the bytes that end a text run.
const inlineSpecials = "\n\\<&_*`[]'\"-."

func (t *tokenizer) scanInline(tok *token) {
	s := t.s
	c, _ := s.Peek(0)
	switch c {
	case '\n':
		s.Consume(1)
		tok.kind = tokNewline
		return
	case '\\':
		if next, ok := s.Peek(1); ok && next != '\n' {
			s.Consume(2)
			tok.kind = tokEscaped
			tok.text = s.Source()[s.Offset()-1 : s.Offset()]
			return
		}
	case '<':
		if n := rawTagLen(s.Rest()); n > 0 {
			tok.kind = tokRawTag
			tok.text = s.Rest()[:n]
			s.Consume(n)
			return
		}
		s.Consume(1)
		tok.kind = tokLT
		return
	case '&':
		if n := entityLen(s.Rest()); n > 0 {
			tok.kind = tokEntity
			tok.text = s.Rest()[:n]
			s.Consume(n)
			return
		}
		s.Consume(1)
		tok.kind = tokAmp
		return
	case '_':
		if t.atWordBoundary() {
			s.Consume(1)
			tok.kind = tokEm
			return
		}
	case '*':
		if s.Attempt("**") {
			tok.kind = tokStrong
			return
		}
	case '`':
		s.Consume(1)
		tok.kind = tokCode
		return
	case '[':
		if label, n := footnoteLabel(s.Rest()); n > 0 {
			s.Consume(n)
			tok.kind = tokFootnoteRef
			tok.text = label
			return
		}
		if target, ok := t.lookahead(s.Offset()); ok {
			s.Consume(1)
			t.pushCloser(target, false)
			tok.kind = tokLinkOpen
			tok.text, tok.label, tok.labelLoc = target.text, target.label, s.LocationAt(target.textAt)
			return
		}
	case '\'', '"':
		prev, ok := s.PrevByte()
		tok.opening = !ok || prev == ' ' || prev == '\n'
		tok.kind = tokSingleQuote
		if c == '"' {
			tok.kind = tokDoubleQuote
		}
		s.Consume(1)
		return
	case '-':
		if s.Attempt("--") {
			tok.kind = tokEnDash
			return
		}
	case '.':
		if s.Attempt("...") {
			tok.kind = tokEllipsis
			return
		}
	case ' ':
		if s.Attempt(" -- ") {
			tok.kind = tokEmDash
			return
		}
	}
	t.scanText(tok, inlineSpecials, true)
}

// codeSpecials end a text run inside an inline code span.
const codeSpecials = "\n<&`"

func (t *tokenizer) scanCode(tok *token) {
	s := t.s
	c, _ := s.Peek(0)
	switch c {
	case '\n':
		s.Consume(1)
		tok.kind = tokNewline
	case '<':
		s.Consume(1)
		tok.kind = tokLT
	case '&':
		s.Consume(1)
		tok.kind = tokAmp
	case '`':
		s.Consume(1)
		tok.kind = tokCode
	default:
		t.scanText(tok, codeSpecials, false)
	}
}

// scanText consumes at least one byte and stops before the next special.
func (t *tokenizer) scanText(tok *token, specials string, dashes bool) {
	s := t.s
	rest := s.Rest()
	n := 1
	for n < len(rest) {
		c := rest[n]
		if strings.IndexByte(specials, c) >= 0 {
			break
		}
		if dashes && c == ' ' && bytes.HasPrefix(rest[n:], []byte(" -- ")) {
			break
		}
		n++
	}
	tok.kind = tokText
	tok.text = rest[:n]
	s.Consume(n)
}

// atWordBoundary reports whether the '_' at the cursor can toggle emphasis.
func (t *tokenizer) atWordBoundary() bool {
	prev, hasPrev := t.s.PrevByte()
	next, hasNext := t.s.Peek(1)
	return !hasPrev || !isAlnum(prev) || !hasNext || !isAlnum(next)
}

// linkTarget is the result of looking ahead from a '['.
type linkTarget struct {
	closeAt int // offset of the matching ']'
	end     int // offset just past the target
	text    []byte
	textAt  int
	label   bool
}

// lookahead finds the ']' matching the '[' at offset open and the target
// after it: "(url)", "[label]", "[]" or a bare defined label.
func (t *tokenizer) lookahead(open int) (linkTarget, bool) {
	src := t.s.Source()
	closeAt := matchBracket(src, open)
	if closeAt < 0 {
		return linkTarget{}, false
	}
	after := closeAt + 1
	switch {
	case after < len(src) && src[after] == '(':
		end := indexLine(src, after+1, ')')
		if end < 0 {
			return linkTarget{}, false
		}
		return linkTarget{closeAt: closeAt, end: end + 1, text: src[after+1 : end], textAt: after + 1}, true
	case after < len(src) && src[after] == '[':
		end := indexLine(src, after+1, ']')
		if end < 0 {
			return linkTarget{}, false
		}
		if end == after+1 {
			return linkTarget{closeAt: closeAt, end: end + 1, text: src[open+1 : closeAt], textAt: open + 1, label: true}, true
		}
		return linkTarget{closeAt: closeAt, end: end + 1, text: src[after+1 : end], textAt: after + 1, label: true}, true
	}
	text := src[open+1 : closeAt]
	if _, ok := t.links[string(text)]; ok {
		return linkTarget{closeAt: closeAt, end: closeAt + 1, text: text, textAt: open + 1, label: true}, true
	}
	return linkTarget{}, false
}

func (t *tokenizer) pushCloser(target linkTarget, figure bool) {
	t.closers = append(t.closers, closer{at: target.closeAt, end: target.end, figure: figure})
}

// matchBracket returns the offset of the ']' matching the '[' at open, or -1.
// The search stops at a blank line.
func matchBracket(src []byte, open int) int {
	depth := 0
	for idx := open; idx < len(src); idx++ {
		switch src[idx] {
		case '\\':
			idx++
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return idx
			}
		case '\n':
			if idx+1 < len(src) && src[idx+1] == '\n' {
				return -1
			}
		}
	}
	return -1
}

// indexLine returns the offset of delim at or after from, stopping at the end
// of the line.
func indexLine(src []byte, from int, delim byte) int {
	for idx := from; idx < len(src); idx++ {
		switch src[idx] {
		case delim:
			return idx
		case '\n':
			return -1
		}
	}
	return -1
}

// footnoteLabel matches "[^label]" at the start of src and returns the label
// and the length of the match, or 0.
func footnoteLabel(src []byte) ([]byte, int) {
	if !bytes.HasPrefix(src, []byte("[^")) {
		return nil, 0
	}
	n := 2
	for n < len(src) && (isAlnum(src[n]) || src[n] == '-' || src[n] == '_') {
		n++
	}
	if n == 2 || n >= len(src) || src[n] != ']' {
		return nil, 0
	}
	return src[2:n], n + 1
}

// rawTagLen returns the length of an inline HTML tag at the start of src.
func rawTagLen(src []byte) int {
	if len(src) < 2 {
		return 0
	}
	if c := src[1]; !isLetter(c) && c != '/' && c != '!' {
		return 0
	}
	end := indexLine(src, 1, '>')
	if end < 0 {
		return 0
	}
	return end + 1
}

// entityLen returns the length of a character reference at the start of src.
func entityLen(src []byte) int {
	n := 1
	switch {
	case bytes.HasPrefix(src, []byte("&#x")), bytes.HasPrefix(src, []byte("&#X")):
		n = 3
		for n < len(src) && isHex(src[n]) {
			n++
		}
		if n == 3 {
			return 0
		}
	case bytes.HasPrefix(src, []byte("&#")):
		n = 2
		for n < len(src) && isDigit(src[n]) {
			n++
		}
		if n == 2 {
			return 0
		}
	default:
		for n < len(src) && isAlnum(src[n]) {
			n++
		}
		if n == 1 {
			return 0
		}
	}
	if n >= len(src) || src[n] != ';' {
		return 0
	}
	return n + 1
}

func currentLine(src []byte) []byte {
	if idx := bytes.IndexByte(src, '\n'); idx >= 0 {
		return src[:idx]
	}
	return src
}

func isBlank(line []byte) bool {
	return len(bytes.Trim(line, " \t\r")) == 0
}

// isRule matches a line of three or more '*' or '-'.
func isRule(line []byte) bool {
	line = bytes.TrimRight(line, " \t\r")
	return len(line) >= 3 && countLeading(line, line[0]) == len(line)
}

func countLeading(line []byte, c byte) int {
	n := 0
	for n < len(line) && line[n] == c {
		n++
	}
	return n
}

func countDigits(line []byte) int {
	n := 0
	for n < len(line) && isDigit(line[n]) {
		n++
	}
	return n
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return c|0x20 >= 'a' && c|0x20 <= 'z' }
func isAlnum(c byte) bool  { return isDigit(c) || isLetter(c) }
func isHex(c byte) bool    { return isDigit(c) || (c|0x20 >= 'a' && c|0x20 <= 'f') }
