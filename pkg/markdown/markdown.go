// Package markdown renders a restricted Markdown dialect to HTML in a single
// pass.
//
// The dialect covers paragraphs, ATX headings, "-"/"N." lists, blockquotes,
// fenced code, thematic breaks, figures ("![caption](url)" on its own line),
// footnotes, inline and reference links, emphasis ("_"), strong ("**"),
// inline code, raw HTML and smart typography. No tree is built: tokens are
// turned into HTML as they are read, with two bounded stacks of open tags.
package markdown

import (
	"io"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/highlight"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// Options control rendering.
type Options struct {
	// IsInline renders inline markup only, without block wrappers.
	IsInline bool

	// FirstBlockOnly stops after the first top-level block. Footnote
	// references and definitions are not rendered.
	FirstBlockOnly bool

	// HighlightCode routes fenced code through Highlighter.
	HighlightCode bool

	// AutoHeadingIDs adds id attributes derived from the heading text.
	AutoHeadingIDs bool

	// ShiftHeadingLevel is added to every heading level before clamping
	// to 1-6.
	ShiftHeadingLevel int8

	// Highlighter is used when HighlightCode is set. Nil means chroma
	// without language detection.
	Highlighter highlight.Highlighter
}

func (o Options) highlighter() highlight.Highlighter {
	switch {
	case !o.HighlightCode:
		return highlight.Plain{}
	case o.Highlighter != nil:
		return o.Highlighter
	default:
		return highlight.NewChroma(false)
	}
}

// Render writes doc as HTML to w. Failures are reported through rep and
// returned; on failure w holds a prefix of the output.
func Render(rep *reporter.Reporter, w io.Writer, doc Document, hooks Hooks, opts Options) error {
	if hooks == nil {
		hooks = DefaultHooks{}
	}
	s := scanner.FromSpan(doc.Body, doc.Filename, rep)
	r := &renderer{
		s:     s,
		tz:    newTokenizer(s, doc.Links, opts.IsInline),
		w:     &htmlWriter{w: w},
		links: doc.Links,
		hooks: hooks,
		opts:  opts,
		hl:    opts.highlighter(),
	}
	return r.run()
}

// RenderString parses and renders src with the default hooks.
func RenderString(src string, opts Options) (string, error) {
	rep := reporter.New()
	doc, err := Parse(scanner.New([]byte(src), "", rep))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := Render(rep, &out, doc, DefaultHooks{}, opts); err != nil {
		return "", err
	}
	return out.String(), nil
}

// htmlWriter remembers the last byte written and the first error.
type htmlWriter struct {
	w    io.Writer
	last byte
	n    int
	err  error
}

func (hw *htmlWriter) Write(p []byte) (int, error) {
	if hw.err != nil {
		return 0, hw.err
	}
	n, err := hw.w.Write(p)
	if n > 0 {
		hw.last = p[n-1]
		hw.n += n
	}
	hw.err = err
	return n, err
}

func (hw *htmlWriter) writeString(s string) {
	_, _ = io.WriteString(hw, s)
}

// lineBreak starts a new output line unless one was just started.
func (hw *htmlWriter) lineBreak() {
	if hw.n > 0 && hw.last != '\n' {
		hw.writeString("\n")
	}
}
