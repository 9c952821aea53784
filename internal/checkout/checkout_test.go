package checkout_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/internal/checkout"
	"github.com/mohamadtout/therapy-platform-sub003/internal/draft"
	"github.com/mohamadtout/therapy-platform-sub003/internal/flow"
)

// ---------- Mocks ----------

type mockPublisher struct {
	mu       sync.Mutex
	subjects []string
}

func (m *mockPublisher) Publish(_ context.Context, subject string, _ interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subjects = append(m.subjects, subject)
	return nil
}

func (m *mockPublisher) Close() error { return nil }

func (m *mockPublisher) published() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.subjects...)
}

func newTestManager(t *testing.T, paymentDelay time.Duration) (*checkout.Manager, *draft.Store, *mockPublisher) {
	t.Helper()
	drafts := draft.NewStore(draft.NewMemoryStorage())
	publisher := &mockPublisher{}
	m := checkout.NewManager(drafts, publisher, paymentDelay)
	t.Cleanup(m.Shutdown)
	return m, drafts, publisher
}

var testSelection = checkout.Selection{
	Type:  checkout.SelectionAssessment,
	Name:  "Speech Assessment",
	Price: 120,
}

func TestCheckoutHappyPath(t *testing.T) {
	m, drafts, publisher := newTestManager(t, time.Millisecond)
	ctx := context.Background()

	session, err := m.Create("parent@example.com")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if session.Step() != checkout.StepBooking {
		t.Fatalf("expected booking step, got %q", session.Step())
	}

	if _, err := m.SubmitBooking(session.ID, testSelection); err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}
	if session.Step() != checkout.StepPayment {
		t.Fatalf("expected payment step, got %q", session.Step())
	}

	items, err := m.SubmitPayment(ctx, session.ID)
	if err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}
	if session.Step() != checkout.StepConfirmation {
		t.Fatalf("expected confirmation step, got %q", session.Step())
	}
	if len(items) != 1 || items[0].Name != testSelection.Name {
		t.Fatalf("unexpected cart after payment: %+v", items)
	}

	// The draft cart was persisted, not just returned.
	persisted := drafts.Load(ctx, "parent@example.com")
	if len(persisted) != 1 {
		t.Fatalf("expected 1 persisted item, got %d", len(persisted))
	}

	found := false
	for _, subject := range publisher.published() {
		if subject == "portal.checkout.completed" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected checkout.completed event")
	}

	if err := m.Finish(session.ID); err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if _, err := m.Get(session.ID); !errors.Is(err, checkout.ErrNotFound) {
		t.Fatal("expected finished instance to be gone")
	}
}

func TestCheckoutBacktrack(t *testing.T) {
	m, _, _ := newTestManager(t, time.Millisecond)

	session, _ := m.Create("k")
	if _, err := m.SubmitBooking(session.ID, testSelection); err != nil {
		t.Fatalf("SubmitBooking: %v", err)
	}
	if _, err := m.Back(session.ID); err != nil {
		t.Fatalf("Back: %v", err)
	}
	if session.Step() != checkout.StepBooking {
		t.Fatalf("expected booking after back, got %q", session.Step())
	}

	// The selection survives the backtrack and can be resubmitted.
	if _, err := m.SubmitBooking(session.ID, testSelection); err != nil {
		t.Fatalf("resubmit: %v", err)
	}
}

func TestCheckoutRejectsInvalidSelection(t *testing.T) {
	m, _, _ := newTestManager(t, time.Millisecond)
	session, _ := m.Create("k")

	bad := checkout.Selection{Type: "subscription", Name: "X", Price: 10}
	if _, err := m.SubmitBooking(session.ID, bad); err == nil {
		t.Fatal("expected invalid type to be rejected")
	}

	negative := checkout.Selection{Type: checkout.SelectionProgram, Name: "X", Price: -5}
	if _, err := m.SubmitBooking(session.ID, negative); err == nil {
		t.Fatal("expected negative price to be rejected")
	}

	if session.Step() != checkout.StepBooking {
		t.Fatalf("failed submit must not advance, got %q", session.Step())
	}
}

func TestCheckoutPaymentRequiresPaymentStep(t *testing.T) {
	m, _, _ := newTestManager(t, time.Millisecond)
	session, _ := m.Create("k")

	if _, err := m.SubmitPayment(context.Background(), session.ID); err == nil {
		t.Fatal("expected payment at booking step to fail")
	}
}

func TestCheckoutDuplicatePaymentRejected(t *testing.T) {
	m, _, _ := newTestManager(t, 200*time.Millisecond)
	session, _ := m.Create("k")
	m.SubmitBooking(session.ID, testSelection)

	firstDone := make(chan error, 1)
	go func() {
		_, err := m.SubmitPayment(context.Background(), session.ID)
		firstDone <- err
	}()

	// Wait for the first payment to be in flight.
	deadline := time.After(time.Second)
	for !session.InFlight() {
		select {
		case <-deadline:
			t.Fatal("first payment never started")
		case <-time.After(time.Millisecond):
		}
	}

	if _, err := m.SubmitPayment(context.Background(), session.ID); !errors.Is(err, flow.ErrInFlight) {
		t.Fatalf("expected ErrInFlight, got %v", err)
	}

	if err := <-firstDone; err != nil {
		t.Fatalf("first payment failed: %v", err)
	}
}

func TestCheckoutTerminalStep(t *testing.T) {
	m, _, _ := newTestManager(t, time.Millisecond)
	session, _ := m.Create("k")
	m.SubmitBooking(session.ID, testSelection)
	if _, err := m.SubmitPayment(context.Background(), session.ID); err != nil {
		t.Fatalf("SubmitPayment: %v", err)
	}

	// Nothing is reachable after confirmation in the same instance.
	if _, err := m.SubmitBooking(session.ID, testSelection); err == nil {
		t.Fatal("expected booking after confirmation to fail")
	}
	if _, err := m.Back(session.ID); err == nil {
		t.Fatal("expected back after confirmation to fail")
	}
}

func TestCheckoutCloseAbandonsInstance(t *testing.T) {
	m, _, _ := newTestManager(t, time.Millisecond)
	session, _ := m.Create("k")
	m.SubmitBooking(session.ID, testSelection)

	if err := m.Close(session.ID); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, err := m.Get(session.ID); !errors.Is(err, checkout.ErrNotFound) {
		t.Fatal("expected closed instance to be gone")
	}

	if err := m.Finish("missing"); !errors.Is(err, checkout.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
