//go:build unix

package flock_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hodyerrors "github.com/hodynguyen/Claude-Workflow/internal/errors"
	"github.com/hodynguyen/Claude-Workflow/internal/flock"
)

func TestLock_AcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.lock")
	lock := flock.New(path)

	require.NoError(t, lock.Acquire(context.Background(), time.Second))
	_, err := os.Stat(path)
	require.NoError(t, err, "lock file should be created")

	require.NoError(t, lock.Release())
	require.NoError(t, lock.Release(), "second release is a no-op")
}

func TestLock_TimesOutWhenHeld(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.lock")

	holder := flock.New(path)
	require.NoError(t, holder.Acquire(context.Background(), time.Second))
	defer func() { _ = holder.Release() }()

	waiter := flock.New(path)
	err := waiter.Acquire(context.Background(), 120*time.Millisecond)
	require.ErrorIs(t, err, hodyerrors.ErrLockTimeout)
}

func TestLock_ReacquireAfterRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.lock")

	first := flock.New(path)
	require.NoError(t, first.Acquire(context.Background(), time.Second))
	require.NoError(t, first.Release())

	second := flock.New(path)
	require.NoError(t, second.Acquire(context.Background(), time.Second))
	assert.NoError(t, second.Release())
}

func TestLock_RespectsCanceledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json.lock")

	holder := flock.New(path)
	require.NoError(t, holder.Acquire(context.Background(), time.Second))
	defer func() { _ = holder.Release() }()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := flock.New(path).Acquire(ctx, time.Second)
	require.ErrorIs(t, err, context.Canceled)
}
