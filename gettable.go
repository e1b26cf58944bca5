package world

import "reflect"

// Gettable is a value that can answer keyed lookups during dotted-path
// traversal.
type Gettable interface {
	Get(key string) (any, bool)
}

// Mapping is the mapping-backed Gettable.
type Mapping map[string]any

// Get implements Gettable.
func (m Mapping) Get(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// Record is the record-backed Gettable. Fields answers attribute lookups,
// typically with a switch over the struct's exported fields.
type Record struct {
	Fields func(key string) (any, bool)
}

// Get implements Gettable.
func (r Record) Get(key string) (any, bool) {
	if r.Fields == nil {
		return nil, false
	}
	return r.Fields(key)
}

// AsGettable reports whether v supports keyed lookups.
func AsGettable(v any) (Gettable, bool) {
	switch typed := v.(type) {
	case Gettable:
		return typed, typed != nil
	case map[string]any:
		return Mapping(typed), true
	case map[string]string:
		return stringMapping(typed), true
	case nil:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String {
		return reflectMapping{rv}, true
	}
	return nil, false
}

// Traverse walks path from root. It returns nil as soon as a segment is
// missing or a non-traversable value is reached before the path ends.
func Traverse(root any, path []string) any {
	current := root
	for _, key := range path {
		getter, ok := AsGettable(current)
		if !ok {
			return nil
		}
		next, ok := getter.Get(key)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

type stringMapping map[string]string

func (m stringMapping) Get(key string) (any, bool) {
	value, ok := m[key]
	return value, ok
}

// reflectMapping adapts any map with string-kinded keys, such as
// map[string]int or map[Name][]string.
type reflectMapping struct {
	rv reflect.Value
}

func (m reflectMapping) Get(key string) (any, bool) {
	value := m.rv.MapIndex(reflect.ValueOf(key).Convert(m.rv.Type().Key()))
	if !value.IsValid() {
		return nil, false
	}
	return value.Interface(), true
}

func (m reflectMapping) entries() map[string]any {
	out := make(map[string]any, m.rv.Len())
	iter := m.rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out
}
