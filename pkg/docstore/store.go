package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/goliatone/go-artificial-world/layering"
	"github.com/goliatone/go-artificial-world/pkg/activity"
	"github.com/google/uuid"
)

var (
	errEmptyName    = errors.New("document name is empty")
	errUnknownScope = errors.New("unknown scope")
	errInitFailed   = errors.New("initialize empty document failed")
)

// FileStore reads and writes JSON documents under a Layout.
type FileStore struct {
	layout   Layout
	keep     int
	logger   *slog.Logger
	activity *activity.Emitter
	actor    string
}

// New builds a FileStore. Directories are not created here; call Initialize
// once at startup, or rely on Write creating parent directories lazily.
func New(layout Layout, opts ...Option) *FileStore {
	s := &FileStore{
		layout: layout,
		keep:   DefaultArchiveCount,
		logger: discardLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Layout returns the directories the store operates on.
func (s *FileStore) Layout() Layout {
	return s.layout
}

// Read returns the decoded document. A missing document is initialized to an
// empty object in the same scope and read back.
func (s *FileStore) Read(ctx context.Context, name string, scope Scope) (any, error) {
	path, err := s.livePath(name, scope)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Error("document stat failed", "name", name, "path", path, "error", err)
			return nil, ioError("stat", path, err)
		}
		s.logger.Info("initializing missing document", "name", name, "scope", string(scope))
		if !s.WriteScope(ctx, name, scope, map[string]any{}) {
			return nil, ioError("initialize", path, errInitFailed)
		}
		s.emit(ctx, activity.BuildDocumentCreatedEvent(s.eventInput(name, scope, path)))
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		s.logger.Error("document read failed", "name", name, "path", path, "error", err)
		return nil, ioError("read", path, err)
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		s.logger.Error("document parse failed", "name", name, "path", path, "error", err)
		return nil, &ParseError{Path: path, Err: err}
	}

	s.logger.Info("document read", "name", name, "scope", string(scope))
	return value, nil
}

// Load reads a primary-scope document.
func (s *FileStore) Load(ctx context.Context, name string) (any, error) {
	return s.Read(ctx, name, ScopePrimary)
}

// Write stores value as the primary-scope document name.
func (s *FileStore) Write(ctx context.Context, name string, value any) bool {
	return s.WriteScope(ctx, name, ScopePrimary, value)
}

// WriteScope rotates the archive, then atomically replaces the document with
// value. Failures are logged and reported as false; archive failures are
// logged but do not block the write.
func (s *FileStore) WriteScope(ctx context.Context, name string, scope Scope, value any) bool {
	target, err := s.livePath(name, scope)
	if err != nil {
		s.logger.Error("document write failed", "name", name, "scope", string(scope), "error", err)
		return false
	}

	if err := s.archive(ctx, name, scope, s.keep); err != nil {
		s.logger.Warn("document archive incomplete", "name", name, "error", err)
	}

	if err := writeAtomic(target, value); err != nil {
		s.logger.Error("document write failed", "name", name, "path", target, "error", err)
		return false
	}

	input := s.eventInput(name, scope, target)
	input.SnapshotID = uuid.NewString()
	s.logger.Info("document written", "name", name, "path", target, "snapshot_id", input.SnapshotID)
	s.emit(ctx, activity.BuildDocumentWrittenEvent(input))
	return true
}

// Patch deep-merges patch over the current primary document and writes the
// result. Objects merge key by key; arrays and scalars in patch replace.
func (s *FileStore) Patch(ctx context.Context, name string, patch any) bool {
	current, err := s.Read(ctx, name, ScopePrimary)
	if err != nil {
		s.logger.Error("document patch failed", "name", name, "error", err)
		return false
	}
	return s.Write(ctx, name, layering.MergeDocuments(patch, current))
}

// Path returns the live file path for name in scope.
func (s *FileStore) Path(name string, scope Scope) (string, error) {
	return s.livePath(name, scope)
}

func (s *FileStore) livePath(name string, scope Scope) (string, error) {
	root, err := s.scopeRoot(scope)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(name) == "" {
		return "", ioError("resolve", root, errEmptyName)
	}
	return filepath.Join(root, name), nil
}

func (s *FileStore) scopeRoot(scope Scope) (string, error) {
	switch scope {
	case ScopePrimary, "":
		return s.layout.Root, nil
	case ScopeInputs:
		return s.layout.Inputs, nil
	default:
		return "", ioError("resolve", string(scope), errUnknownScope)
	}
}

func (s *FileStore) eventInput(name string, scope Scope, path string) activity.DocumentEventInput {
	if scope == "" {
		scope = ScopePrimary
	}
	return activity.DocumentEventInput{
		ActorID: s.actor,
		Name:    name,
		Scope:   string(scope),
		Path:    path,
	}
}

func (s *FileStore) emit(ctx context.Context, event activity.Event) {
	if !s.activity.Enabled() {
		return
	}
	if err := s.activity.Emit(ctx, event); err != nil {
		s.logger.Warn("activity emit failed", "verb", event.Verb, "object_id", event.ObjectID, "error", err)
	}
}

// writeAtomic encodes value into a temp file in the target directory and
// renames it over target.
func writeAtomic(target string, value any) error {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ioError("mkdir", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".docstore-*")
	if err != nil {
		return ioError("create temp", dir, err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName) // no-op once renamed
	}()

	enc := json.NewEncoder(tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("docstore: encode %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("close temp", tmpName, err)
	}

	mode := fs.FileMode(0o644)
	if info, err := os.Stat(target); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return ioError("chmod", tmpName, err)
	}

	if err := os.Rename(tmpName, target); err != nil {
		return ioError("rename", target, err)
	}
	return nil
}
