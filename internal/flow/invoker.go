package flow

import (
	"context"
	"errors"
	"sync"

	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
)

// ErrInFlight rejects a submit while the previous one is still running.
var ErrInFlight = errors.New("flow: action already in flight")

// Invoker runs exactly one remote action at a time on behalf of a flow. It
// tracks the in-flight flag, cancels the call when the flow is disposed, and
// keeps the last failure normalized into a user-visible message. No retries,
// ever.
type Invoker struct {
	mu        sync.Mutex
	inFlight  bool
	lastError string
	cancel    context.CancelFunc
	disposed  bool
}

func NewInvoker() *Invoker {
	return &Invoker{}
}

// Do executes the action. Duplicate submits fail fast with ErrInFlight. On
// success any prior error message is cleared; on failure the normalized
// message is retained for display. If the invoker was disposed mid-call the
// outcome is swallowed: a dead flow must not surface anything.
func (iv *Invoker) Do(ctx context.Context, action func(context.Context) error) error {
	iv.mu.Lock()
	if iv.disposed {
		iv.mu.Unlock()
		return context.Canceled
	}
	if iv.inFlight {
		iv.mu.Unlock()
		return ErrInFlight
	}
	iv.inFlight = true
	actionCtx, cancel := context.WithCancel(ctx)
	iv.cancel = cancel
	iv.mu.Unlock()

	err := action(actionCtx)
	cancel()

	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.inFlight = false
	iv.cancel = nil

	if iv.disposed {
		return context.Canceled
	}
	if err != nil {
		iv.lastError = api.Normalize(err)
		return err
	}
	iv.lastError = ""
	return nil
}

func (iv *Invoker) InFlight() bool {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.inFlight
}

// LastError returns the displayable message from the most recent failure, or
// empty after a success.
func (iv *Invoker) LastError() string {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	return iv.lastError
}

// Dispose cancels any in-flight call and marks the invoker dead. Late
// resolutions after disposal are dropped.
func (iv *Invoker) Dispose() {
	iv.mu.Lock()
	defer iv.mu.Unlock()
	iv.disposed = true
	if iv.cancel != nil {
		iv.cancel()
	}
}
