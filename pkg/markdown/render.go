package markdown

import (
	"errors"
	"fmt"

	"github.com/yaklabco/gomdsite/pkg/highlight"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// errStop ends rendering once the first top-level block is complete.
var errStop = errors.New("markdown: first block complete")

type renderer struct {
	s     *scanner.Scanner
	tz    *tokenizer
	w     *htmlWriter
	links LinkMap
	hooks Hooks
	opts  Options
	hl    highlight.Highlighter

	blocks  blockStack
	inlines inlineStack

	// fence is the live highlight session of an open code block.
	fence      highlight.Session
	fenceLoc   scanner.Location
	fenceDepth int

	prevBlank bool
	// openedLine is set when the current line opened a block.
	openedLine   bool
	rawHTML      bool
	lines        int
	lastFootnote string
}

func (r *renderer) run() error {
	err := r.loop()
	if errors.Is(err, errStop) {
		return r.w.err
	}
	if err != nil {
		return err
	}
	return r.finish()
}

func (r *renderer) loop() error {
	for r.w.err == nil {
		if r.fence != nil {
			if r.s.EOF() {
				return nil
			}
			if err := r.fenceLine(); err != nil {
				return err
			}
			continue
		}
		if r.tz.peek().kind == tokEOF {
			return nil
		}
		if err := r.line(); err != nil {
			return err
		}
	}
	return r.w.err
}

func (r *renderer) finish() error {
	if r.fence != nil {
		return r.s.FailAt(r.fenceLoc, "unclosed code block")
	}
	if err := r.truncate(0); err != nil && !errors.Is(err, errStop) {
		return err
	}
	if top := r.inlines.top(); top != nil {
		return r.unclosed(top)
	}
	return r.w.err
}

// line renders one source line outside code blocks.
func (r *renderer) line() error {
	wasBlank := r.prevBlank
	r.prevBlank = false
	r.openedLine = false

	if r.opts.IsInline {
		if r.lines > 0 {
			r.w.writeString("\n")
		}
		r.lines++
		return r.inlineLine()
	}

	depth, err := r.matchContainers()
	if err != nil {
		return err
	}
	for {
		tok := r.tz.peek()
		switch tok.kind {
		case tokEOF:
			return nil
		case tokIndent:
			r.tz.next()
		case tokBlank:
			r.tz.next()
			r.prevBlank = true
			return r.blankLine()
		case tokQuote:
			r.tz.next()
			if err := r.openContainer(depth, blockTag{kind: blockQuote}, tok.loc); err != nil {
				return err
			}
			depth = r.blocks.n
		case tokListItem:
			r.tz.next()
			list := blockTag{kind: blockUL}
			if tok.ordered {
				list.kind = blockOL
			}
			if err := r.openContainer(depth, list, tok.loc); err != nil {
				return err
			}
			if err := r.pushBlock(blockTag{kind: blockLI, indent: tok.level}, tok.loc); err != nil {
				return err
			}
			depth = r.blocks.n
		case tokFootnoteDef:
			r.tz.next()
			if err := r.openContainer(depth, blockTag{kind: blockFootnoteOL}, tok.loc); err != nil {
				return err
			}
			if err := r.openFootnote(tok); err != nil {
				return err
			}
			depth = r.blocks.n
		case tokHeading:
			r.tz.next()
			if err := r.truncate(depth); err != nil {
				return err
			}
			heading := blockTag{
				kind:  blockHeading,
				level: clampHeading(tok.level + int(r.opts.ShiftHeadingLevel)),
			}
			if r.opts.AutoHeadingIDs {
				heading.label = HeadingID(tok.text)
			}
			if err := r.pushBlock(heading, tok.loc); err != nil {
				return err
			}
			return r.inlineLine()
		case tokRule:
			r.tz.next()
			if err := r.truncate(depth); err != nil {
				return err
			}
			r.fillTop()
			r.w.lineBreak()
			r.w.writeString("<hr>")
			r.endLine()
			return r.topLevelDone()
		case tokFenceOpen:
			r.tz.next()
			if err := r.truncate(depth); err != nil {
				return err
			}
			if err := r.beginFence(tok); err != nil {
				return err
			}
			r.endLine()
			return nil
		case tokFigureOpen:
			r.tz.next()
			if err := r.openFigure(depth, tok); err != nil {
				return err
			}
			return r.inlineLine()
		default:
			if err := r.startInline(depth, tok, wasBlank); err != nil {
				return err
			}
			return r.inlineLine()
		}
	}
}

// matchContainers consumes the container markers that continue the open
// blocks and returns how many blocks stay open. A list marker that starts a
// sibling item or footnote closes the previous item here.
func (r *renderer) matchContainers() (int, error) {
	depth := 0
	for depth < r.blocks.n {
		tag := r.blocks.at(depth)
		tok := r.peekBlock()
		switch tag.kind {
		case blockQuote:
			if tok.kind != tokQuote {
				return depth, nil
			}
			r.tz.next()
			depth++
		case blockUL, blockOL:
			if depth+1 >= r.blocks.n {
				return depth, nil
			}
			item := r.blocks.at(depth + 1)
			if tok.kind == tokListItem && tok.ordered == (tag.kind == blockOL) && tok.col < item.indent {
				r.tz.next()
				if err := r.truncate(depth + 1); err != nil {
					return 0, err
				}
				if err := r.pushBlock(blockTag{kind: blockLI, indent: tok.level}, tok.loc); err != nil {
					return 0, err
				}
				return depth + 2, nil
			}
			if tok.kind == tokBlank || tok.kind == tokEOF || tok.col < item.indent {
				return depth, nil
			}
			depth += 2
		case blockFootnoteOL:
			if tok.kind != tokFootnoteDef {
				return depth, nil
			}
			r.tz.next()
			if err := r.truncate(depth + 1); err != nil {
				return 0, err
			}
			if err := r.openFootnote(tok); err != nil {
				return 0, err
			}
			return depth + 2, nil
		default:
			return depth, nil
		}
	}
	return depth, nil
}

// peekBlock skips indentation and peeks at the next token.
func (r *renderer) peekBlock() token {
	for {
		tok := r.tz.peek()
		if tok.kind != tokIndent {
			return tok
		}
		r.tz.next()
	}
}

// startInline decides where the first inline token of a line goes: a lazy
// continuation of the open leaf, a raw HTML block, or an implicit block.
func (r *renderer) startInline(depth int, tok token, wasBlank bool) error {
	top := r.blocks.top()
	if !wasBlank && !r.openedLine && top != nil && top.leaf() {
		r.w.writeString("\n")
		return nil
	}
	if err := r.truncate(depth); err != nil {
		return err
	}
	if r.blocks.n == 0 && (r.rawHTML || tok.kind == tokRawTag) {
		r.rawHTML = true
		r.w.lineBreak()
		return nil
	}
	return r.implicitBlock(tok, wasBlank)
}

// implicitBlock opens the wrapper that inline content needs under the
// current top of the stack.
func (r *renderer) implicitBlock(tok token, wasBlank bool) error {
	top := r.blocks.top()
	switch {
	case top == nil, top.kind == blockQuote:
		return r.pushBlock(blockTag{kind: blockP}, tok.loc)
	case top.kind == blockUL, top.kind == blockOL:
		return r.pushBlock(blockTag{kind: blockLI, indent: tok.col}, tok.loc)
	case top.kind == blockFootnoteOL:
		return r.pushBlock(blockTag{kind: blockFootnoteLI, label: r.lastFootnote}, tok.loc)
	case (top.kind == blockLI || top.kind == blockFootnoteLI) && wasBlank && top.filled:
		return r.pushBlock(blockTag{kind: blockP}, tok.loc)
	}
	top.filled = true
	return nil
}

func (r *renderer) blankLine() error {
	if r.rawHTML {
		r.rawHTML = false
		if err := r.topLevelDone(); err != nil {
			return err
		}
	}
	for top := r.blocks.top(); top != nil && (top.kind == blockP || top.kind == blockHeading); top = r.blocks.top() {
		if err := r.popBlock(); err != nil {
			return err
		}
	}
	return nil
}

// endLine consumes the newline after a block that spans a whole line.
func (r *renderer) endLine() {
	if r.tz.peek().kind == tokNewline {
		r.tz.next()
	}
}

func (r *renderer) inlineLine() error {
	for {
		tok := r.tz.next()
		switch tok.kind {
		case tokEOF:
			return nil
		case tokNewline:
			if top := r.blocks.top(); top != nil && top.kind == blockHeading {
				return r.popBlock()
			}
			return nil
		default:
			if err := r.inline(tok); err != nil {
				return err
			}
		}
	}
}

func (r *renderer) inline(tok token) error {
	switch tok.kind {
	case tokText, tokRawTag, tokEntity:
		_, _ = r.w.Write(tok.text)
	case tokLT:
		r.w.writeString("&lt;")
	case tokAmp:
		r.w.writeString("&amp;")
	case tokEscaped:
		return highlight.WriteEscaped(r.w, tok.text)
	case tokFootnoteRef:
		if r.opts.FirstBlockOnly {
			return nil
		}
		label := string(tok.text)
		_, _ = fmt.Fprintf(r.w, `<sup id="fnref:%s"><a href="#fn:%s">%s</a></sup>`, label, label, label)
	case tokEm:
		return r.toggle(inlineEm, tok.loc)
	case tokStrong:
		return r.toggle(inlineStrong, tok.loc)
	case tokCode:
		return r.toggle(inlineCode, tok.loc)
	case tokLinkOpen:
		return r.openLink(tok)
	case tokLinkClose:
		return r.closeLink()
	case tokFigureClose:
		return r.closeFigure()
	case tokSingleQuote:
		r.w.writeString(pick(tok.opening, "‘", "’"))
	case tokDoubleQuote:
		r.w.writeString(pick(tok.opening, "“", "”"))
	case tokEnDash:
		r.w.writeString("–")
	case tokEmDash:
		r.w.writeString(" — ")
	case tokEllipsis:
		r.w.writeString("…")
	}
	return nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

// toggle opens kind, or closes it when it is already open. Closing a tag
// that is not innermost fails on the innermost one.
func (r *renderer) toggle(kind inlineKind, loc scanner.Location) error {
	if !r.inlines.contains(kind) {
		if err := r.pushInline(kind, loc); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(r.w, "<%s>", kind)
		r.tz.inCode = kind == inlineCode
		return nil
	}
	top := r.inlines.top()
	if top.kind != kind {
		return r.unclosed(top)
	}
	r.inlines.pop()
	_, _ = fmt.Fprintf(r.w, "</%s>", kind)
	if kind == inlineCode {
		r.tz.inCode = false
	}
	return nil
}

func (r *renderer) pushInline(kind inlineKind, loc scanner.Location) error {
	if !r.inlines.push(inlineTag{kind: kind, loc: loc}) {
		return r.depthExceeded(loc)
	}
	return nil
}

func (r *renderer) openLink(tok token) error {
	url, err := r.target(tok)
	if err != nil {
		return err
	}
	if err := r.pushInline(inlineLink, tok.loc); err != nil {
		return err
	}
	r.w.writeString(`<a href="`)
	if err := r.hooks.WriteURL(r.w, url, r.failAt(tok.labelLoc)); err != nil {
		return err
	}
	r.w.writeString(`">`)
	return nil
}

func (r *renderer) closeLink() error {
	top := r.inlines.top()
	if top == nil {
		return nil
	}
	if top.kind != inlineLink {
		return r.unclosed(top)
	}
	r.inlines.pop()
	r.w.writeString("</a>")
	return nil
}

func (r *renderer) openFigure(depth int, tok token) error {
	if err := r.truncate(depth); err != nil {
		return err
	}
	url, err := r.target(tok)
	if err != nil {
		return err
	}
	if err := r.pushBlock(blockTag{kind: blockFigure}, tok.loc); err != nil {
		return err
	}
	r.w.lineBreak()
	if err := r.hooks.WriteImage(r.w, url, r.failAt(tok.labelLoc)); err != nil {
		return err
	}
	return r.pushBlock(blockTag{kind: blockFigcaption}, tok.loc)
}

// closeFigure pops the caption and then the figure.
func (r *renderer) closeFigure() error {
	if top := r.inlines.top(); top != nil {
		return r.unclosed(top)
	}
	if top := r.blocks.top(); top == nil || top.kind != blockFigcaption {
		return nil
	}
	if err := r.popBlock(); err != nil {
		return err
	}
	return r.popBlock()
}

func (r *renderer) openFootnote(tok token) error {
	r.lastFootnote = string(tok.text)
	return r.pushBlock(blockTag{kind: blockFootnoteLI, label: r.lastFootnote}, tok.loc)
}

// target resolves the URL of a link or figure token.
func (r *renderer) target(tok token) (string, error) {
	if !tok.label {
		return string(tok.text), nil
	}
	span, ok := r.links[string(tok.text)]
	if !ok {
		return "", r.s.FailAt(tok.labelLoc, "link label '%s' is not defined", tok.text)
	}
	return span.String(), nil
}

func (r *renderer) beginFence(tok token) error {
	r.fillTop()
	r.w.lineBreak()
	session, err := r.hl.Begin(r.w, string(tok.text))
	if err != nil {
		if errors.Is(err, reporter.ErrFailure) {
			return err
		}
		return r.s.FailAt(tok.loc, "%v", err)
	}
	r.fence = session
	r.fenceLoc = tok.loc
	r.fenceDepth = r.blocks.n
	return nil
}

// fenceLine strips the container prefixes of one code line and hands it to
// the highlight session.
func (r *renderer) fenceLine() error {
	for idx := range r.fenceDepth {
		tag := r.blocks.at(idx)
		switch tag.kind {
		case blockQuote:
			if r.s.AttemptByte('>') {
				r.s.AttemptByte(' ')
			}
		case blockLI, blockFootnoteLI:
			for r.s.Column() < tag.indent && r.s.PeekIs(0, ' ') {
				r.s.Consume(1)
			}
		}
	}
	finished, err := r.fence.Resume(r.w, r.s)
	if err != nil {
		return err
	}
	if !finished {
		return nil
	}
	err = r.fence.End(r.w)
	r.fence = nil
	if err != nil {
		return err
	}
	return r.topLevelDone()
}

func (r *renderer) openContainer(depth int, tag blockTag, loc scanner.Location) error {
	if err := r.truncate(depth); err != nil {
		return err
	}
	return r.pushBlock(tag, loc)
}

func (r *renderer) pushBlock(tag blockTag, loc scanner.Location) error {
	if !r.blocks.push(tag) {
		return r.depthExceeded(loc)
	}
	if r.blocks.n > 1 {
		r.blocks.at(r.blocks.n - 2).filled = true
	}
	r.openedLine = true
	r.w.lineBreak()
	r.writeOpen(tag)
	return nil
}

// popBlock closes the innermost block. Inline tags must all be closed.
func (r *renderer) popBlock() error {
	if top := r.inlines.top(); top != nil {
		return r.unclosed(top)
	}
	tag := r.blocks.pop()
	if tag.container() {
		r.w.lineBreak()
	}
	r.writeClose(tag)
	return r.topLevelDone()
}

// truncate closes blocks until depth remain open.
func (r *renderer) truncate(depth int) error {
	for r.blocks.n > depth {
		if err := r.popBlock(); err != nil {
			return err
		}
	}
	return nil
}

// topLevelDone stops rendering after the first top-level block when only
// the first block is wanted.
func (r *renderer) topLevelDone() error {
	if r.opts.FirstBlockOnly && r.blocks.n == 0 {
		return errStop
	}
	return nil
}

func (r *renderer) fillTop() {
	if top := r.blocks.top(); top != nil {
		top.filled = true
	}
}

func (r *renderer) writeOpen(tag blockTag) {
	switch tag.kind {
	case blockP:
		r.w.writeString("<p>")
	case blockLI:
		r.w.writeString("<li>")
	case blockHeading:
		if tag.label != "" {
			_, _ = fmt.Fprintf(r.w, `<h%d id="%s">`, tag.level, tag.label)
		} else {
			_, _ = fmt.Fprintf(r.w, "<h%d>", tag.level)
		}
	case blockUL:
		r.w.writeString("<ul>")
	case blockOL:
		r.w.writeString("<ol>")
	case blockQuote:
		r.w.writeString("<blockquote>")
	case blockFigure:
		r.w.writeString("<figure>")
	case blockFigcaption:
		r.w.writeString("<figcaption>")
	case blockFootnoteOL:
		r.w.writeString(`<ol class="footnotes">`)
	case blockFootnoteLI:
		_, _ = fmt.Fprintf(r.w, `<li id="fn:%s">`, tag.label)
	}
}

func (r *renderer) writeClose(tag blockTag) {
	switch tag.kind {
	case blockP:
		r.w.writeString("</p>")
	case blockLI:
		r.w.writeString("</li>")
	case blockHeading:
		_, _ = fmt.Fprintf(r.w, "</h%d>", tag.level)
	case blockUL:
		r.w.writeString("</ul>")
	case blockOL, blockFootnoteOL:
		r.w.writeString("</ol>")
	case blockQuote:
		r.w.writeString("</blockquote>")
	case blockFigure:
		r.w.writeString("</figure>")
	case blockFigcaption:
		r.w.writeString("</figcaption>")
	case blockFootnoteLI:
		_, _ = fmt.Fprintf(r.w, ` <a href="#fnref:%s">↩</a></li>`, tag.label)
	}
}

func (r *renderer) failAt(loc scanner.Location) FailFunc {
	return func(format string, args ...any) error {
		return r.s.FailAt(loc, format, args...)
	}
}

func (r *renderer) unclosed(tag *inlineTag) error {
	return r.s.FailAt(tag.loc, "unclosed <%s> tag", tag.kind)
}

func (r *renderer) depthExceeded(loc scanner.Location) error {
	return r.s.FailAt(loc, "exceeded maximum tag depth (%d)", MaxDepth)
}
