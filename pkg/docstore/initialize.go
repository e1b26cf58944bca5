package docstore

import (
	"errors"
	"os"
)

// Initialize creates the layout directories. Extra directories (images,
// logging) can be passed by the host application.
func Initialize(layout Layout, extra ...string) error {
	dirs := append([]string{layout.Root, layout.Inputs, layout.Archive}, extra...)
	var errs []error
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			errs = append(errs, ioError("mkdir", dir, err))
		}
	}
	return errors.Join(errs...)
}
