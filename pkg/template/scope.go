package template

// Scope is an immutable frame in a chain of bindings. Each frame holds
// either the value bound to "." or a template's definitions.
type Scope struct {
	parent      *Scope
	value       Value
	definitions bool
}

// NewScope returns a root scope with "." bound to value.
func NewScope(value Value) *Scope {
	return &Scope{value: value}
}

// With returns a child scope with "." bound to value.
func (s *Scope) With(value Value) *Scope {
	return &Scope{parent: s, value: value}
}

func (s *Scope) withDefinitions(defs Dict) *Scope {
	return &Scope{parent: s, value: defs, definitions: true}
}

// Dot returns the value bound to ".", or Null in an empty chain.
func (s *Scope) Dot() Value {
	for frame := s; frame != nil; frame = frame.parent {
		if !frame.definitions && frame.value != nil {
			return frame.value
		}
	}
	return Null{}
}

// Lookup resolves name by walking the chain outwards and checking every
// dict-valued frame.
func (s *Scope) Lookup(name string) (Value, bool) {
	if name == "." {
		return s.Dot(), true
	}
	for frame := s; frame != nil; frame = frame.parent {
		dict, ok := frame.value.(Dict)
		if !ok {
			continue
		}
		if v, ok := dict[name]; ok {
			return v, true
		}
	}
	return nil, false
}
