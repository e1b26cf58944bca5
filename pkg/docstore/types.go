package docstore

import (
	"io"
	"log/slog"

	"github.com/goliatone/go-artificial-world/pkg/activity"
)

// DefaultArchiveCount is the number of archive slots kept per document when
// no WithArchiveCount option is given.
const DefaultArchiveCount = 10

// Scope selects the root directory a document lives under.
type Scope string

const (
	ScopePrimary Scope = "primary"
	ScopeInputs  Scope = "inputs"
)

// Layout names the directories a FileStore operates on.
type Layout struct {
	Root    string
	Inputs  string
	Archive string
}

// Slot is one archived version of a document.
type Slot struct {
	Index int
	Path  string
}

// Option configures a FileStore.
type Option func(*FileStore)

// WithLogger sets the structured logger. A nil logger keeps the discard default.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithArchiveCount sets how many archive slots are kept. Negative values
// disable rotation.
func WithArchiveCount(keep int) Option {
	return func(s *FileStore) {
		s.keep = keep
	}
}

// WithActivity emits document lifecycle events through emitter.
func WithActivity(emitter *activity.Emitter) Option {
	return func(s *FileStore) {
		s.activity = emitter
	}
}

// WithActor stamps emitted events with actor.
func WithActor(actor string) Option {
	return func(s *FileStore) {
		s.actor = actor
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
