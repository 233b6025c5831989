package main

import (
	"errors"
	"fmt"
	"hash/fnv"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

var errLocked = errors.New("another imagededup run holds the lock")

// lockPath maps a scanned root to its lock file in the temp directory.
func lockPath(root string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(root))
	return filepath.Join(os.TempDir(), fmt.Sprintf("imagededup-%016x.lock", h.Sum64()))
}

// acquireLock takes the exclusive run lock for root without blocking.
func acquireLock(root string) (*flock.Flock, error) {
	lock := flock.New(lockPath(root))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("%w for %s (%s)", errLocked, root, lock.Path())
	}
	return lock, nil
}
