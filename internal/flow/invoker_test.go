package flow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/internal/api"
	"github.com/mohamadtout/therapy-platform-sub003/internal/flow"
)

func TestInvokerRejectsDuplicateSubmit(t *testing.T) {
	iv := flow.NewInvoker()

	release := make(chan struct{})
	started := make(chan struct{})
	firstDone := make(chan error, 1)

	go func() {
		firstDone <- iv.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()

	<-started
	if err := iv.Do(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, flow.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}
	if !iv.InFlight() {
		t.Fatal("expected invoker to report in-flight")
	}

	close(release)
	if err := <-firstDone; err != nil {
		t.Fatalf("first action failed: %v", err)
	}
	if iv.InFlight() {
		t.Fatal("expected in-flight flag to clear")
	}
}

func TestInvokerNormalizesFailure(t *testing.T) {
	iv := flow.NewInvoker()

	apiErr := &api.Error{Status: 409, StatusText: "Conflict", Message: "Email already exists"}
	err := iv.Do(context.Background(), func(ctx context.Context) error { return apiErr })
	if err == nil {
		t.Fatal("expected error to propagate")
	}
	if got := iv.LastError(); got != "Email already exists" {
		t.Fatalf("expected server message verbatim, got %q", got)
	}
}

func TestInvokerSuccessClearsError(t *testing.T) {
	iv := flow.NewInvoker()

	iv.Do(context.Background(), func(ctx context.Context) error {
		return &api.Error{Transport: true, Err: errors.New("dial tcp: refused")}
	})
	if iv.LastError() == "" {
		t.Fatal("expected failure to record a message")
	}

	if err := iv.Do(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("second action failed: %v", err)
	}
	if got := iv.LastError(); got != "" {
		t.Fatalf("expected success to clear the error, got %q", got)
	}
}

func TestInvokerDisposeCancelsInFlightCall(t *testing.T) {
	iv := flow.NewInvoker()

	started := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- iv.Do(context.Background(), func(ctx context.Context) error {
			close(started)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(5 * time.Second):
				return errors.New("action was never cancelled")
			}
		})
	}()

	<-started
	iv.Dispose()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled after dispose, got %v", err)
	}

	// A disposed invoker refuses further work.
	if err := iv.Do(context.Background(), func(ctx context.Context) error { return nil }); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected disposed invoker to refuse, got %v", err)
	}
}
