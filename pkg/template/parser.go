package template

import (
	"bytes"

	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// Parse parses the template in s. Text commands borrow from the scanner's
// source.
func Parse(s *scanner.Scanner) (*Template, error) {
	p := &parser{lx: &lexer{s: s}, s: s}
	t := &Template{Filename: s.Filename}

	body, term, err := p.parseBody(t)
	if err != nil {
		return nil, err
	}
	if term.kind != itemEOF {
		return nil, p.unexpected(term)
	}
	t.Commands = body
	return t, nil
}

type parser struct {
	lx *lexer
	s  *scanner.Scanner
}

// parseBody collects commands until end, else or EOF and returns the
// terminating item. Definitions are hoisted into t.
func (p *parser) parseBody(t *Template) ([]Command, item, error) {
	var cmds []Command
	for {
		it, err := p.lx.next()
		if err != nil {
			return nil, item{}, err
		}
		if it.standalone {
			cmds = trimIndent(cmds)
		}

		switch it.kind {
		case itemEOF, itemEnd, itemElse:
			return cmds, it, nil

		case itemText:
			cmds = append(cmds, Text{Text: it.text})

		case itemVariable:
			cmds = append(cmds, Variable{Name: it.name, Location: it.loc})

		case itemTemplate:
			cmds = append(cmds, Include{Name: it.name, Location: it.loc})

		case itemAssign:
			if err := p.define(t, Definition{Name: it.name, Location: it.loc, Text: string(it.text)}); err != nil {
				return nil, item{}, err
			}

		case itemDefine:
			sub := &Template{Filename: t.Filename}
			body, term, err := p.parseBody(sub)
			if err != nil {
				return nil, item{}, err
			}
			if term.kind != itemEnd {
				return nil, item{}, p.unterminated(it, term)
			}
			sub.Commands = body
			if err := p.define(t, Definition{Name: it.name, Location: it.loc, Body: sub}); err != nil {
				return nil, item{}, err
			}

		case itemIf, itemRange:
			cmd, err := p.parseConditional(t, it)
			if err != nil {
				return nil, item{}, err
			}
			cmds = append(cmds, cmd)
		}
	}
}

func (p *parser) parseConditional(t *Template, open item) (Command, error) {
	cond := Variable{Name: open.name, Location: open.loc}
	body, term, err := p.parseBody(t)
	if err != nil {
		return nil, err
	}

	var elseBody []Command
	if term.kind == itemElse {
		// An else branch that is present but empty still counts.
		elseBody, term, err = p.parseBody(t)
		if err != nil {
			return nil, err
		}
		if elseBody == nil {
			elseBody = []Command{}
		}
		if term.kind == itemElse {
			return nil, p.s.FailAt(term.loc, "duplicate {{ else }} in {{ %s }}", open.kind)
		}
	}
	if term.kind != itemEnd {
		return nil, p.unterminated(open, term)
	}

	if open.kind == itemIf {
		return If{Cond: cond, Body: body, Else: elseBody}, nil
	}
	return Range{Cond: cond, Body: body, Else: elseBody}, nil
}

func (p *parser) define(t *Template, def Definition) error {
	for _, existing := range t.Definitions {
		if existing.Name == def.Name {
			err := p.s.FailAt(def.Location, "'%s' is already defined", def.Name)
			p.s.Note(existing.Location, "previous definition is here")
			return err
		}
	}
	t.Definitions = append(t.Definitions, def)
	return nil
}

func (p *parser) unterminated(open, term item) error {
	if term.kind == itemElse {
		return p.s.FailAt(term.loc, "unexpected {{ else }} in {{ %s }}", open.kind)
	}
	return p.s.FailAt(open.loc, "missing {{ end }} for {{ %s }}", open.kind)
}

func (p *parser) unexpected(term item) error {
	return p.s.FailAt(term.loc, "unexpected {{ %s }}", term.kind)
}

// trimIndent removes the indentation before a standalone control command
// from the last text node. A text node that is left empty, or that is the
// only node of its block and holds nothing but whitespace, is dropped.
func trimIndent(cmds []Command) []Command {
	if len(cmds) == 0 {
		return cmds
	}
	last, ok := cmds[len(cmds)-1].(Text)
	if !ok {
		return cmds
	}
	trimmed := bytes.TrimRight(last.Text, " \t")
	if len(trimmed) == 0 || (len(cmds) == 1 && len(bytes.TrimSpace(trimmed)) == 0) {
		return cmds[:len(cmds)-1]
	}
	cmds[len(cmds)-1] = Text{Text: trimmed}
	return cmds
}
