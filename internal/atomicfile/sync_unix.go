//go:build unix

package atomicfile

import (
	"fmt"
	"os"
)

// SyncDir fsyncs a directory so that renames and removals inside it are durable.
func SyncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("syncing directory %s: %w", dir, err)
	}
	return nil
}
