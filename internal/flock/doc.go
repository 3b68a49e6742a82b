// Package flock provides cross-platform advisory file locking.
//
// Exclusive and Unlock wrap the platform primitives (flock on Unix,
// LockFileEx on Windows). Lock layers a polling acquire with timeout and
// context cancellation on top, which is what the workflow state store uses
// around every read-modify-write of the state file:
//
//	lock := flock.New(statePath + ".lock")
//	if err := lock.Acquire(ctx, 5*time.Second); err != nil {
//	    return err
//	}
//	defer func() { _ = lock.Release() }()
package flock
