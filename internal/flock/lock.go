package flock

import (
	"context"
	"fmt"
	"os"
	"time"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
)

// pollInterval is the delay between non-blocking lock attempts.
const pollInterval = 50 * time.Millisecond

// Lock is an advisory lock backed by a dedicated lock file.
// A Lock is not safe for concurrent use; create one per acquisition.
type Lock struct {
	path string
	file *os.File
}

// New returns a Lock for the given lock file path. The file is created on Acquire.
func New(path string) *Lock {
	return &Lock{path: path}
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	return l.path
}

// Acquire takes the exclusive lock, polling until timeout elapses or ctx is done.
// A timeout returns an error wrapping errors.ErrLockTimeout.
func (l *Lock) Acquire(ctx context.Context, timeout time.Duration) error {
	f, err := os.OpenFile(l.path, os.O_RDWR|os.O_CREATE, 0o600) //#nosec G304 -- lock path is built from the configured state path
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for {
		select {
		case <-ctx.Done():
			_ = f.Close()
			return ctx.Err()
		default:
		}

		if err := Exclusive(f.Fd()); err == nil {
			l.file = f
			return nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return fmt.Errorf("%w after %v: %s", hodyerrors.ErrLockTimeout, timeout, l.path)
		}

		timer := time.NewTimer(pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			_ = f.Close()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Release unlocks and closes the lock file. Releasing an unheld lock is a no-op.
func (l *Lock) Release() error {
	if l.file == nil {
		return nil
	}
	f := l.file
	l.file = nil
	if err := Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}
