package etl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ClearFolder deletes every entry under dir and keeps dir itself. Files and
// symbolic links are unlinked (link targets are never followed); directories
// are removed recursively. Deletion continues past individual failures and
// all of them are returned joined. A missing dir yields an error wrapping
// fs.ErrNotExist.
func (r *Runner) ClearFolder(dir string) error {
	logger := r.log().With("folder", dir)
	logger.Info("Starting to clear the contents of folder")

	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Error("Error while clearing folder", "error", err)
		return fmt.Errorf("clear folder %s: %w", dir, err)
	}

	var errs []error
	removed := 0
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		var rmErr error
		if entry.IsDir() {
			rmErr = os.RemoveAll(path)
		} else {
			rmErr = os.Remove(path)
		}
		if rmErr != nil {
			errs = append(errs, rmErr)
			continue
		}
		removed++
	}

	if len(errs) > 0 {
		err := errors.Join(errs...)
		logger.Error("Error while clearing folder", "removed", removed, "failed", len(errs), "error", err)
		return fmt.Errorf("clear folder %s: %w", dir, err)
	}

	logger.Info("Contents of folder have been cleared", "removed", removed)
	return nil
}
