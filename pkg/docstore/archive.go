package docstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goliatone/go-artificial-world/pkg/activity"
)

// Archive rotates the primary-scope document name into its archive slots.
// Slots 0..keep-1 shift up by one, slot keep is overwritten by keep-1, and the
// live file (if present) is copied into slot 0. Per-slot failures are logged,
// skipped and joined into the returned error.
func (s *FileStore) Archive(ctx context.Context, name string, keep int) error {
	return s.archive(ctx, name, ScopePrimary, keep)
}

// History lists the archive slots currently on disk for a primary-scope
// document, most recent first.
func (s *FileStore) History(_ context.Context, name string) ([]Slot, error) {
	if _, err := s.livePath(name, ScopePrimary); err != nil {
		return nil, err
	}
	var slots []Slot
	for i := 0; i <= s.keep; i++ {
		path := s.slotPath(name, ScopePrimary, i)
		if isFile(path) {
			slots = append(slots, Slot{Index: i, Path: path})
		}
	}
	return slots, nil
}

func (s *FileStore) archive(ctx context.Context, name string, scope Scope, keep int) error {
	if keep < 0 {
		return nil
	}
	live, err := s.livePath(name, scope)
	if err != nil {
		return err
	}

	var errs []error
	for i := keep; i >= 0; i-- {
		src := s.slotPath(name, scope, i)
		if i+1 > keep || !isFile(src) {
			continue
		}
		dst := s.slotPath(name, scope, i+1)
		if err := copyFile(src, dst); err != nil {
			s.logger.Error("archive shift failed", "from", src, "to", dst, "error", err)
			errs = append(errs, err)
			continue
		}
		s.logger.Info("archive shifted", "from", src, "to", dst)
	}

	if !isFile(live) {
		return errors.Join(errs...)
	}

	slot0 := s.slotPath(name, scope, 0)
	dir := filepath.Dir(slot0)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.logger.Error("archive directory failed", "path", dir, "error", err)
		errs = append(errs, ioError("mkdir", dir, err))
		return errors.Join(errs...)
	}
	if err := copyFile(live, slot0); err != nil {
		s.logger.Error("archive failed", "from", live, "to", slot0, "error", err)
		errs = append(errs, err)
		return errors.Join(errs...)
	}

	s.logger.Info("document archived", "from", live, "to", slot0)
	input := s.eventInput(name, scope, slot0)
	input.Slot = 0
	s.emit(ctx, activity.BuildDocumentArchivedEvent(input))
	return errors.Join(errs...)
}

// slotPath maps name to <archive>[/inputs]/<name-without-ext><index><ext>.
func (s *FileStore) slotPath(name string, scope Scope, index int) string {
	base := s.layout.Archive
	if scope == ScopeInputs {
		base = filepath.Join(base, string(ScopeInputs))
	}
	rel := filepath.Clean(name)
	ext := filepath.Ext(rel)
	stem := strings.TrimSuffix(rel, ext)
	return filepath.Join(base, stem+strconv.Itoa(index)+ext)
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return ioError("read", src, err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return ioError("write", dst, err)
	}
	return nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
