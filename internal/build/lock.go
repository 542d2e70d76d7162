package build

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

// BuildLock is a cross-process file lock over an index directory, so two
// builds (or a build and a watch-triggered rebuild) never interleave
// writes to the same artifacts.
type BuildLock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewBuildLock creates a lock for the given index directory. The lock
// file lives at <dir>/.build.lock.
func NewBuildLock(dir string) *BuildLock {
	path := filepath.Join(dir, ".build.lock")
	return &BuildLock{path: path, flock: flock.New(path)}
}

// TryLock attempts to acquire the lock without blocking. Returns false
// when another process holds it.
func (l *BuildLock) TryLock() (bool, error) {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return false, fmt.Errorf("create lock directory: %w", err)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return false, fmt.Errorf("acquire build lock: %w", err)
	}
	l.locked = acquired
	return acquired, nil
}

// Unlock releases the lock. Safe to call when not held.
func (l *BuildLock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("release build lock: %w", err)
	}
	return nil
}

// Path returns the lock file location.
func (l *BuildLock) Path() string { return l.path }
