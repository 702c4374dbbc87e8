package template

import (
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// Template is a parsed template file or define body.
type Template struct {
	// Filename locates runtime failures.
	Filename string

	// Definitions are hoisted out of the command stream and visible to the
	// whole body.
	Definitions []Definition

	// Commands are executed in order.
	Commands []Command
}

// Definition binds a name to a sub-template or a string literal.
type Definition struct {
	Name     string
	Location scanner.Location

	// Body is nil for string definitions.
	Body *Template
	Text string
}

// Command is one of Text, Variable, Include, If or Range.
type Command interface {
	command()
}

// Text is literal output borrowed from the template source.
type Text struct {
	Text []byte
}

// Variable prints the value bound to Name.
type Variable struct {
	Name     string
	Location scanner.Location
}

// Include prints the template bound to Name.
type Include struct {
	Name     string
	Location scanner.Location
}

// If runs Body with "." bound to the condition when it is truthy and Else
// otherwise.
type If struct {
	Cond Variable
	Body []Command
	Else []Command
}

// Range runs Body once per array element, once for any other truthy value,
// and Else when the condition is falsy.
type Range struct {
	Cond Variable
	Body []Command
	Else []Command
}

func (Text) command()     {}
func (Variable) command() {}
func (Include) command()  {}
func (If) command()       {}
func (Range) command()    {}
