package template

import (
	"github.com/yaklabco/gomdsite/pkg/date"
	"github.com/yaklabco/gomdsite/pkg/markdown"
)

// Kind identifies the variant of a Value.
type Kind uint8

// Value kinds.
const (
	KindNull Kind = iota
	KindBool
	KindString
	KindArray
	KindDict
	KindPointer
	KindTemplate
	KindDate
	KindMarkdown
)

var kindNames = [...]string{
	KindNull:     "null",
	KindBool:     "bool",
	KindString:   "string",
	KindArray:    "array",
	KindDict:     "dict",
	KindPointer:  "pointer",
	KindTemplate: "template",
	KindDate:     "date",
	KindMarkdown: "markdown",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is one of Null, Bool, String, Array, Dict, Pointer, SubTemplate,
// Date or Markdown.
type Value interface {
	Kind() Kind
}

// Null is the absent value.
type Null struct{}

// Bool is a boolean.
type Bool bool

// String is printed verbatim.
type String string

// Array is ranged over element by element.
type Array []Value

// Dict maps names to values. Lookups check the dict bound to "." first.
type Dict map[string]Value

// Pointer shares a value without copying it. It is dereferenced once on
// lookup and must not point at another Pointer.
type Pointer struct {
	Target *Value
}

// SubTemplate is executed in the scope where it is printed.
type SubTemplate struct {
	Template *Template
}

// Date is printed in Style.
type Date struct {
	Date  date.Date
	Style date.Style
}

// Markdown is rendered with Options when printed.
type Markdown struct {
	Doc     markdown.Document
	Options markdown.Options
}

func (Null) Kind() Kind        { return KindNull }
func (Bool) Kind() Kind        { return KindBool }
func (String) Kind() Kind      { return KindString }
func (Array) Kind() Kind       { return KindArray }
func (Dict) Kind() Kind        { return KindDict }
func (Pointer) Kind() Kind     { return KindPointer }
func (SubTemplate) Kind() Kind { return KindTemplate }
func (Date) Kind() Kind        { return KindDate }
func (Markdown) Kind() Kind    { return KindMarkdown }

// PointerTo returns a Pointer to v.
func PointerTo(v Value) Pointer {
	return Pointer{Target: &v}
}

// Truthy reports whether v selects the main branch of if and range.
// Null, false, "" and empty arrays are falsy.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, Null:
		return false
	case Bool:
		return bool(v)
	case String:
		return v != ""
	case Array:
		return len(v) > 0
	default:
		return true
	}
}
