package binder

// Value is one bound parameter: what the caller supplied and the same value
// coerced to the Go type of its request field.
type Value struct {
	Raw   any
	Typed any
}

// ParameterSet is the immutable result of binding. The zero value is an
// empty set.
type ParameterSet struct {
	names  []string
	values map[string]Value
}

// Has reports whether the canonical parameter name was supplied.
func (s ParameterSet) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

// Get returns the bound value for a canonical parameter name.
func (s ParameterSet) Get(name string) (Value, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Raw returns the caller-supplied value of a parameter.
func (s ParameterSet) Raw(name string) (any, bool) {
	v, ok := s.values[name]
	return v.Raw, ok
}

// Names returns the bound parameter names in schema order.
func (s ParameterSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of bound parameters.
func (s ParameterSet) Len() int {
	return len(s.names)
}

// With returns a copy of s with name bound to v. s itself is unchanged.
func (s ParameterSet) With(name string, v Value) ParameterSet {
	out := ParameterSet{
		names:  make([]string, 0, len(s.names)+1),
		values: make(map[string]Value, len(s.values)+1),
	}
	out.names = append(out.names, s.names...)
	for k, val := range s.values {
		out.values[k] = val
	}
	if _, ok := out.values[name]; !ok {
		out.names = append(out.names, name)
	}
	out.values[name] = v
	return out
}

func (s *ParameterSet) add(name string, v Value) {
	if s.values == nil {
		s.values = make(map[string]Value)
	}
	s.names = append(s.names, name)
	s.values[name] = v
}
