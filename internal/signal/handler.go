// Package signal cancels a hody invocation when the user interrupts it.
//
// A canceled context aborts lock waits and confirmation prompts; the
// process then exits with the conventional 128+signal status.
package signal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// ErrInterrupted is the cancellation cause after SIGINT or SIGTERM.
var ErrInterrupted = errors.New("interrupted")

// Handler owns a context that is canceled on the first SIGINT or SIGTERM.
type Handler struct {
	ctx    context.Context //nolint:containedctx // the handler owns this context
	cancel context.CancelCauseFunc
	sigs   chan os.Signal
	done   chan struct{}

	mu       sync.Mutex
	caught   os.Signal
	once     sync.Once
	stopOnce sync.Once
}

// NewHandler starts listening for SIGINT and SIGTERM. Call Stop when the
// command returns.
func NewHandler(parent context.Context) *Handler {
	ctx, cancel := context.WithCancelCause(parent)
	h := &Handler{
		ctx:    ctx,
		cancel: cancel,
		sigs:   make(chan os.Signal, 1),
		done:   make(chan struct{}),
	}

	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)
	go h.listen()

	return h
}

// Context returns the context to run the command with.
func (h *Handler) Context() context.Context {
	return h.ctx
}

// Caught returns the first signal received, or nil.
func (h *Handler) Caught() os.Signal {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.caught
}

// ExitCode returns 128 plus the caught signal number, or 0 when no signal
// arrived.
func (h *Handler) ExitCode() int {
	sig, ok := h.Caught().(syscall.Signal)
	if !ok {
		return 0
	}
	return 128 + int(sig)
}

// Stop stops listening and cancels the context.
func (h *Handler) Stop() {
	h.stopOnce.Do(func() {
		signal.Stop(h.sigs)
		close(h.done)
		h.cancel(context.Canceled)
	})
}

// interrupt records sig and cancels the context. Only the first call counts.
func (h *Handler) interrupt(sig os.Signal) {
	h.once.Do(func() {
		h.mu.Lock()
		h.caught = sig
		h.mu.Unlock()
		h.cancel(fmt.Errorf("%w by %v", ErrInterrupted, sig))
	})
}

// listen keeps draining the channel after the first signal so repeated
// Ctrl+C presses never block delivery.
func (h *Handler) listen() {
	for {
		select {
		case <-h.ctx.Done():
			return
		case <-h.done:
			return
		case sig := <-h.sigs:
			h.interrupt(sig)
		}
	}
}
