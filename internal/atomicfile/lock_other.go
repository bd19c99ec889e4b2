//go:build !unix

package atomicfile

import (
	"fmt"
	"os"
)

// Lock creates the lock file but takes no OS lock on platforms without
// flock. Writers there rely on the atomic rename in Write.
func Lock(path string, exclusive bool) (func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock: %w", err)
	}
	return func() { f.Close() }, nil
}
