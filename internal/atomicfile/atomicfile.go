// Package atomicfile provides durable whole-file replacement and advisory
// locking for the file-backed settings stores.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Write replaces path with data atomically via a temporary file and rename.
// The file contents and the parent directory entry are fsynced before Write
// returns, so the new contents survive a crash or power loss.
func Write(path string, data []byte, perm os.FileMode) error {
	tmp := path + ".tmp." + uuid.NewString()

	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_EXCL, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("syncing %s: %w", filepath.Base(path), err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) // best effort cleanup
		return err
	}
	return SyncDir(filepath.Dir(path))
}

// Remove deletes path and fsyncs its parent directory. A missing file is
// not an error.
func Remove(path string) error {
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return SyncDir(filepath.Dir(path))
}

// IsTemp reports whether name is a temporary file left by Write.
func IsTemp(name string) bool {
	ext := filepath.Ext(name)
	if ext == "" {
		return false
	}
	return filepath.Ext(name[:len(name)-len(ext)]) == ".tmp"
}
