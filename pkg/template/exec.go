// Package template implements the small template language used for site
// layouts.
//
// Commands are delimited by "{{" and "}}": variables, string and block
// definitions, if, range and template includes. Scoping is dynamic: a
// sub-template sees the bindings of the place it is printed from, and its
// own definitions shadow them.
package template

import (
	"io"
	"strings"

	"github.com/yaklabco/gomdsite/pkg/markdown"
	"github.com/yaklabco/gomdsite/pkg/reporter"
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// MaxIncludeDepth bounds nested sub-template execution.
const MaxIncludeDepth = 32

// Execute runs t against scope and streams the output to w. Markdown
// values are rendered with hooks. Failures are reported through rep.
func Execute(w io.Writer, rep *reporter.Reporter, t *Template, scope *Scope, hooks markdown.Hooks) error {
	if rep == nil {
		rep = reporter.New()
	}
	if scope == nil {
		scope = NewScope(Null{})
	}
	e := &executor{w: w, rep: rep, hooks: hooks}
	return e.exec(t, scope)
}

// ExecuteString parses src and executes it against value.
func ExecuteString(src string, value Value) (string, error) {
	rep := reporter.New()
	t, err := Parse(scanner.New([]byte(src), "", rep))
	if err != nil {
		return "", err
	}
	var out strings.Builder
	if err := Execute(&out, rep, t, NewScope(value), nil); err != nil {
		return "", err
	}
	return out.String(), nil
}

type executor struct {
	w     io.Writer
	rep   *reporter.Reporter
	hooks markdown.Hooks
	depth int
}

func (e *executor) exec(t *Template, scope *Scope) error {
	if len(t.Definitions) > 0 {
		defs := make(Dict, len(t.Definitions))
		for _, def := range t.Definitions {
			if def.Body != nil {
				defs[def.Name] = SubTemplate{Template: def.Body}
			} else {
				defs[def.Name] = String(def.Text)
			}
		}
		scope = scope.withDefinitions(defs)
	}
	return e.run(t, t.Commands, scope)
}

func (e *executor) run(t *Template, cmds []Command, scope *Scope) error {
	for _, cmd := range cmds {
		if err := e.step(t, cmd, scope); err != nil {
			return err
		}
	}
	return nil
}

func (e *executor) step(t *Template, cmd Command, scope *Scope) error {
	switch cmd := cmd.(type) {
	case Text:
		_, err := e.w.Write(cmd.Text)
		return err

	case Variable:
		v, ok, err := e.resolve(t, scope, cmd.Name, cmd.Location)
		if err != nil {
			return err
		}
		if !ok {
			return e.fail(t, cmd.Location, "undefined variable '%s'", cmd.Name)
		}
		return e.print(t, scope, cmd.Name, cmd.Location, v)

	case Include:
		v, ok, err := e.resolve(t, scope, cmd.Name, cmd.Location)
		if err != nil {
			return err
		}
		if !ok {
			return e.fail(t, cmd.Location, "template '%s' not found", cmd.Name)
		}
		return e.print(t, scope, cmd.Name, cmd.Location, v)

	case If:
		v, err := e.cond(t, scope, cmd.Cond)
		if err != nil {
			return err
		}
		if Truthy(v) {
			return e.run(t, cmd.Body, scope.With(v))
		}
		return e.run(t, cmd.Else, scope)

	case Range:
		v, err := e.cond(t, scope, cmd.Cond)
		if err != nil {
			return err
		}
		if !Truthy(v) {
			return e.run(t, cmd.Else, scope)
		}
		items, ok := v.(Array)
		if !ok {
			return e.run(t, cmd.Body, scope.With(v))
		}
		for _, elem := range items {
			elem, err := e.deref(t, cmd.Cond.Location, elem)
			if err != nil {
				return err
			}
			if err := e.run(t, cmd.Body, scope.With(elem)); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

// cond resolves a condition. Undefined names are falsy.
func (e *executor) cond(t *Template, scope *Scope, cond Variable) (Value, error) {
	v, ok, err := e.resolve(t, scope, cond.Name, cond.Location)
	if err != nil || !ok {
		return Null{}, err
	}
	return v, nil
}

func (e *executor) resolve(t *Template, scope *Scope, name string, loc scanner.Location) (Value, bool, error) {
	v, ok := scope.Lookup(name)
	if !ok {
		return nil, false, nil
	}
	v, err := e.deref(t, loc, v)
	return v, true, err
}

func (e *executor) deref(t *Template, loc scanner.Location, v Value) (Value, error) {
	ptr, ok := v.(Pointer)
	if !ok {
		return v, nil
	}
	if ptr.Target == nil || *ptr.Target == nil {
		return Null{}, nil
	}
	if _, ok := (*ptr.Target).(Pointer); ok {
		return nil, e.fail(t, loc, "double pointer")
	}
	return *ptr.Target, nil
}

func (e *executor) print(t *Template, scope *Scope, name string, loc scanner.Location, v Value) error {
	switch v := v.(type) {
	case String:
		_, err := io.WriteString(e.w, string(v))
		return err
	case Date:
		_, err := io.WriteString(e.w, v.Date.Format(v.Style))
		return err
	case Markdown:
		return markdown.Render(e.rep, e.w, v.Doc, e.hooks, v.Options)
	case SubTemplate:
		return e.include(t, scope, loc, v.Template)
	default:
		return e.fail(t, loc, "cannot print %s value '%s'", v.Kind(), name)
	}
}

func (e *executor) include(t *Template, scope *Scope, loc scanner.Location, sub *Template) error {
	if e.depth >= MaxIncludeDepth {
		return e.fail(t, loc, "exceeded maximum template depth (%d)", MaxIncludeDepth)
	}
	e.depth++
	err := e.exec(sub, scope)
	e.depth--
	if err != nil && sub.Filename != t.Filename {
		if _, ok := reporter.AsFailure(err); ok {
			e.rep.AddNote(t.Filename, loc, "in template included from here")
		}
	}
	return err
}

func (e *executor) fail(t *Template, loc scanner.Location, format string, args ...any) error {
	return e.rep.Fail(t.Filename, loc, format, args...)
}
