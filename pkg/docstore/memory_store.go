package docstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryStore keeps documents in memory. Values pass through a JSON round trip
// on write so reads observe the same shapes a FileStore would return.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: map[string][]byte{}}
}

// Read returns the document, initializing a missing one to an empty object.
func (s *MemoryStore) Read(_ context.Context, name string, scope Scope) (any, error) {
	key, err := memoryKey(name, scope)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	raw, ok := s.docs[key]
	if !ok {
		raw = []byte("{}")
		s.docs[key] = raw
	}
	s.mu.Unlock()

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil, &ParseError{Path: key, Err: err}
	}
	return value, nil
}

// Load reads a primary-scope document.
func (s *MemoryStore) Load(ctx context.Context, name string) (any, error) {
	return s.Read(ctx, name, ScopePrimary)
}

// Write stores value under the primary scope.
func (s *MemoryStore) Write(ctx context.Context, name string, value any) bool {
	return s.WriteScope(ctx, name, ScopePrimary, value)
}

// WriteScope stores value, reporting false when it cannot be encoded.
func (s *MemoryStore) WriteScope(_ context.Context, name string, scope Scope, value any) bool {
	key, err := memoryKey(name, scope)
	if err != nil {
		return false
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return false
	}

	s.mu.Lock()
	s.docs[key] = raw
	s.mu.Unlock()
	return true
}

// Put is a test helper that panics when value cannot be encoded.
func (s *MemoryStore) Put(name string, value any) {
	if !s.Write(context.Background(), name, value) {
		panic(fmt.Sprintf("docstore: cannot encode document %q", name))
	}
}

func memoryKey(name string, scope Scope) (string, error) {
	if name == "" {
		return "", ioError("resolve", string(scope), errEmptyName)
	}
	switch scope {
	case ScopePrimary, "":
		return string(ScopePrimary) + "/" + name, nil
	case ScopeInputs:
		return string(ScopeInputs) + "/" + name, nil
	default:
		return "", ioError("resolve", string(scope), errUnknownScope)
	}
}
