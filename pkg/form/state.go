package form

import (
	"reflect"
	"slices"
)

// State is an ordered mapping from field name to value. Keys keep their
// insertion order. A nil value means the field is undefined.
type State struct {
	keys   []string
	values map[string]any
}

// NewState returns an empty state.
func NewState() *State {
	return &State{values: make(map[string]any)}
}

// Set stores value under name, appending the key on first write. Typed nil
// pointers, maps, slices and funcs are normalised to an untyped nil.
func (s *State) Set(name string, value any) {
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, exists := s.values[name]; !exists {
		s.keys = append(s.keys, name)
	}
	s.values[name] = normalizeUndefined(value)
}

// Get returns the value stored under name and whether the key exists.
func (s *State) Get(name string) (any, bool) {
	if s == nil || s.values == nil {
		return nil, false
	}
	value, ok := s.values[name]
	return value, ok
}

// String returns the value under name when it is a string.
func (s *State) String(name string) string {
	value, _ := s.Get(name)
	str, _ := value.(string)
	return str
}

// Bool returns the value under name when it is a bool.
func (s *State) Bool(name string) bool {
	value, _ := s.Get(name)
	b, _ := value.(bool)
	return b
}

// Keys returns the field names in insertion order.
func (s *State) Keys() []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s.keys)
}

// Len reports the number of keys.
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Values returns a shallow copy of the mapping.
func (s *State) Values() map[string]any {
	out := make(map[string]any, s.Len())
	if s == nil {
		return out
	}
	for _, key := range s.keys {
		out[key] = s.values[key]
	}
	return out
}

// Clone returns an independent copy preserving key order.
func (s *State) Clone() *State {
	clone := NewState()
	if s == nil {
		return clone
	}
	for _, key := range s.keys {
		clone.Set(key, s.values[key])
	}
	return clone
}

func normalizeUndefined(value any) any {
	if value == nil {
		return nil
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		if rv.IsNil() {
			return nil
		}
	}
	return value
}
