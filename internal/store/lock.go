package store

import (
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/Aman-CERP/dorindex/internal/errors"
)

// LockFileName is the lock file created next to a persistent index.
const LockFileName = ".dorindex.lock"

// Lock gives one process exclusive write access to an index directory.
type Lock struct {
	path   string
	flock  *flock.Flock
	locked bool
}

// NewLock creates a lock for the index at indexPath. The lock file lives in
// the parent directory so that clearing a corrupt index keeps it.
func NewLock(indexPath string) *Lock {
	p := filepath.Join(filepath.Dir(indexPath), LockFileName)
	return &Lock{path: p, flock: flock.New(p)}
}

// TryLock acquires the lock without blocking. A lock held by another
// process fails with ErrCodeStoreLocked.
func (l *Lock) TryLock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return errors.InternalError("create lock directory", err).WithDetail("path", l.path)
	}
	acquired, err := l.flock.TryLock()
	if err != nil {
		return errors.InternalError("acquire index lock", err).WithDetail("path", l.path)
	}
	if !acquired {
		return errors.New(errors.ErrCodeStoreLocked, "index is locked by another process", nil).
			WithDetail("path", l.path).
			WithSuggestion("Wait for the other dorindex process to finish")
	}
	l.locked = true
	return nil
}

// Unlock releases the lock. Unlocking an unheld lock is a no-op.
func (l *Lock) Unlock() error {
	if !l.locked {
		return nil
	}
	l.locked = false
	if err := l.flock.Unlock(); err != nil {
		return errors.InternalError("release index lock", err).WithDetail("path", l.path)
	}
	return nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}
