package build

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/wpmoo-org/uibuild/internal/logfields"
)

// RemoveIfExists deletes path. A path that does not exist is not an error.
func RemoveIfExists(path string) error {
	if _, err := os.Lstat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// CleanOutput deletes a previous output and its source map. Failures are
// logged and otherwise ignored.
func CleanOutput(output string) {
	for _, p := range []string{output, output + ".map"} {
		if err := RemoveIfExists(p); err != nil {
			slog.Debug("clean: could not remove", logfields.Path(p), logfields.Error(err))
		}
	}
}
