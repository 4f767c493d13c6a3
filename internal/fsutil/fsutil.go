// Package fsutil holds the file verification and scratch cleanup helpers
// shared by the snapshot fetcher and the metrics store.
package fsutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// ErrTooSmall indicates a file exists but is below the integrity floor.
// Together with os.ErrNotExist it signals "recompute needed", not a fault.
var ErrTooSmall = errors.New("file below minimum size")

// VerifyFile checks that path exists and meets the minimum byte size.
// Returns the file size on success.
func VerifyFile(path string, minSize int64) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, fmt.Errorf("file not found at %s: %w", path, os.ErrNotExist)
		}
		return 0, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Size() < minSize {
		return 0, fmt.Errorf("%s is %d bytes, minimum is %d: %w", path, info.Size(), minSize, ErrTooSmall)
	}

	return info.Size(), nil
}

// Cleanup removes every entry in dir. Failures are logged and never fatal;
// calling it on a missing or empty directory is a no-op.
func Cleanup(dir string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to read scratch directory during cleanup")
		}
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Failed to remove scratch file")
		}
	}
}
