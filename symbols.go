package world

import (
	"fmt"
	"sort"
	"sync"
)

// Symbols is the table placeholders resolve against. Values may be plain data
// (maps, Gettables, scalars) or callables (Function, Expression and
// zero-argument Go funcs).
type Symbols struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSymbols constructs an empty table.
func NewSymbols() *Symbols {
	return &Symbols{
		values: make(map[string]any),
	}
}

// Set stores value under name, replacing any previous entry.
func (s *Symbols) Set(name string, value any) error {
	if name == "" {
		return fmt.Errorf("world: symbol name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	s.values[name] = value
	return nil
}

// Register stores fn under name guarding against duplicates.
func (s *Symbols) Register(name string, fn Function) error {
	if fn == nil {
		return fmt.Errorf("world: function %q is nil", name)
	}
	if name == "" {
		return fmt.Errorf("world: function name must not be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.values == nil {
		s.values = make(map[string]any)
	}
	if _, exists := s.values[name]; exists {
		return fmt.Errorf("world: symbol %q already registered", name)
	}
	s.values[name] = fn
	return nil
}

// Lookup returns the value stored under name.
func (s *Symbols) Lookup(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[name]
	return value, ok
}

// Delete removes name from the table.
func (s *Symbols) Delete(name string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	delete(s.values, name)
	s.mu.Unlock()
}

// Clone returns a shallow copy of the table.
func (s *Symbols) Clone() *Symbols {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	clone := &Symbols{
		values: make(map[string]any, len(s.values)),
	}
	for name, value := range s.values {
		clone.values[name] = value
	}
	return clone
}

// Call executes the callable registered for name with args.
func (s *Symbols) Call(name string, args ...any) (any, error) {
	if s == nil {
		return nil, fmt.Errorf("world: symbol table is nil")
	}
	value, ok := s.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("world: function %q not registered", name)
	}
	fn, ok := asFunction(value)
	if !ok {
		return nil, fmt.Errorf("world: symbol %q is not callable", name)
	}
	return fn(args...)
}

// Names returns symbol names sorted alphabetically.
func (s *Symbols) Names() []string {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.values))
	for name := range s.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// evalContext splits the table for an Evaluator. Expression symbols are left
// out so expressions cannot recurse into each other.
func (s *Symbols) evalContext() EvalContext {
	ctx := EvalContext{}.withDefaults()
	if s == nil {
		return ctx
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for name, value := range s.values {
		if _, ok := value.(Expression); ok {
			continue
		}
		if fn, ok := asFunction(value); ok {
			ctx.Functions[name] = fn
			continue
		}
		ctx.Variables[name] = value
	}
	return ctx
}

// asFunction adapts the supported Go callable shapes to Function.
func asFunction(value any) (Function, bool) {
	switch fn := value.(type) {
	case Function:
		return fn, fn != nil
	case func(...any) (any, error):
		return Function(fn), fn != nil
	case func() any:
		if fn == nil {
			return nil, false
		}
		return func(...any) (any, error) { return fn(), nil }, true
	case func() string:
		if fn == nil {
			return nil, false
		}
		return func(...any) (any, error) { return fn(), nil }, true
	case func() (any, error):
		if fn == nil {
			return nil, false
		}
		return func(...any) (any, error) { return fn() }, true
	case func() (string, error):
		if fn == nil {
			return nil, false
		}
		return func(...any) (any, error) { return fn() }, true
	default:
		return nil, false
	}
}
