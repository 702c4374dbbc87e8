package highlight

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/go-enry/go-enry/v2"

	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// Chroma highlights code with chroma lexers and short CSS classes:
// "kw" (keywords), "fu" (builtins and type keywords), "cn" (constants and
// literals) and "at" (comments).
type Chroma struct {
	// Detect guesses the language of fences that do not name one.
	Detect bool
}

// NewChroma returns a chroma-backed Highlighter.
func NewChroma(detect bool) *Chroma {
	return &Chroma{Detect: detect}
}

// Begin implements Highlighter. It fails for languages chroma does not know.
func (c *Chroma) Begin(w io.Writer, lang string) (Session, error) {
	if lang == "" && !c.Detect {
		return Plain{}.Begin(w, "")
	}
	session := &chromaSession{}
	if lang != "" {
		lexer, canonical := lookupLexer(lang)
		if lexer == nil {
			return nil, fmt.Errorf("%q: unsupported language", lang)
		}
		session.lexer = lexer
		session.lang = canonical
	}
	if err := writeOpen(w, lang); err != nil {
		return nil, err
	}
	return session, nil
}

// lookupLexer finds a lexer by chroma name, falling back to go-enry's alias
// table ("golang", "sh", "js", ...).
func lookupLexer(lang string) (chroma.Lexer, string) {
	if lexer := lexers.Get(lang); lexer != nil {
		return lexer, strings.ToLower(lang)
	}
	if name, ok := enry.GetLanguageByAlias(lang); ok {
		if lexer := lexers.Get(name); lexer != nil {
			return lexer, strings.ToLower(name)
		}
	}
	return nil, ""
}

type chromaSession struct {
	lexer chroma.Lexer
	lang  string
	code  bytes.Buffer
}

func (cs *chromaSession) Resume(w io.Writer, s *scanner.Scanner) (bool, error) {
	loc := s.Location()
	line, closing := nextLine(s)
	if !closing {
		cs.code.Write(line)
		return false, nil
	}
	if cs.lexer == nil {
		detected := Detect(cs.code.Bytes())
		cs.lexer, cs.lang = lookupLexer(detected)
		if cs.lexer == nil {
			return true, WriteEscaped(w, cs.code.Bytes())
		}
	}
	iter, err := chroma.Coalesce(cs.lexer).Tokenise(nil, cs.code.String())
	if err != nil {
		return true, s.FailAt(loc, "lexing code: %v", err)
	}
	return true, writeHTML(w, iter, classifierFor(cs.lang))
}

func (*chromaSession) End(w io.Writer) error {
	_, err := io.WriteString(w, "</code></pre>")
	return err
}

// writeHTML reads tokens from iter and writes them as spans. Whitespace
// between tokens of the same class stays inside the span.
func writeHTML(w io.Writer, iter chroma.Iterator, classify classifier) error {
	var out bytes.Buffer
	var class string
	var space bytes.Buffer
	closeSpan := func() {
		if class != "" {
			out.WriteString("</span>")
			class = ""
		}
	}
	flushSpace := func() {
		out.Write(space.Bytes())
		space.Reset()
	}

	var prev, tok, next chroma.Token
	next = iter()
	for next != chroma.EOF {
		prev, tok, next = tok, next, iter()
		if strings.TrimSpace(tok.Value) == "" {
			space.WriteString(tok.Value)
			continue
		}
		if c := classify(prev, tok, next); c != class {
			closeSpan()
			flushSpace()
			if c != "" {
				fmt.Fprintf(&out, `<span class="%s">`, c)
				class = c
			}
		} else {
			flushSpace()
		}
		_ = WriteEscaped(&out, []byte(tok.Value))
	}
	closeSpan()
	flushSpace()
	_, err := w.Write(out.Bytes())
	return err
}

// classifier returns the CSS class for tok, or "" for none.
type classifier func(prev, tok, next chroma.Token) string

func classifierFor(lang string) classifier {
	if lang == "ruby" {
		return rubyClass
	}
	return tokenClass
}

func tokenClass(_, tok, _ chroma.Token) string {
	switch tok.Type {
	case chroma.KeywordType, chroma.NameBuiltin:
		return "fu"
	case chroma.KeywordPseudo, chroma.NameConstant:
		return "cn"
	}
	switch {
	case tok.Type.InCategory(chroma.Comment):
		return "at"
	case tok.Type.InCategory(chroma.Keyword):
		return "kw"
	case tok.Type.InCategory(chroma.Literal):
		return "cn"
	}
	return ""
}

func rubyClass(prev, tok, next chroma.Token) string {
	switch tok.Type {
	case chroma.NameConstant:
		return ""
	case chroma.NameVariableInstance:
		return "fu"
	case chroma.NameBuiltin:
		if tok.Value == "test" {
			return "kw"
		}
		return ""
	case chroma.LiteralStringSymbol:
		// Hash keys like `key:` read better unhighlighted.
		if next.Value == ":" {
			return ""
		}
	}
	return tokenClass(prev, tok, next)
}
