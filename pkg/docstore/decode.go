package docstore

import (
	"context"

	"github.com/goliatone/go-artificial-world/internal/hydrate"
)

// Reader is satisfied by FileStore and MemoryStore.
type Reader interface {
	Read(ctx context.Context, name string, scope Scope) (any, error)
}

// ReadInto reads a document and hydrates it into T.
func ReadInto[T any](ctx context.Context, store Reader, name string, scope Scope, opts ...hydrate.DecoderOption[T]) (T, error) {
	var zero T
	doc, err := store.Read(ctx, name, scope)
	if err != nil {
		return zero, err
	}
	if scope == "" {
		scope = ScopePrimary
	}
	return hydrate.NewDecoder(opts...).Decode(hydrate.Context{Document: name, Scope: string(scope)}, doc)
}
