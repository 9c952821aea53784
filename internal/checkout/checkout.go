package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mohamadtout/therapy-platform-sub003/internal/draft"
	"github.com/mohamadtout/therapy-platform-sub003/internal/flow"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/events"
	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
)

// The checkout dialog walks booking -> payment -> confirmation, with a back
// edge from payment to booking. Confirmation is terminal: a finished instance
// cannot be stepped again.
const (
	StepBooking      flow.Step = "booking"
	StepPayment      flow.Step = "payment"
	StepConfirmation flow.Step = "confirmation"
)

var checkoutSteps = []flow.Step{StepBooking, StepPayment, StepConfirmation}

var ErrNotFound = errors.New("checkout: unknown flow instance")

const (
	// idleTimeout is how long an untouched instance survives. Create is
	// unauthenticated, so abandoned dialogs must not pile up.
	idleTimeout = 30 * time.Minute
	// sweepInterval is how often the janitor looks for idle instances.
	sweepInterval = 5 * time.Minute
)

type SelectionType string

const (
	SelectionAssessment   SelectionType = "assessment"
	SelectionProgram      SelectionType = "program"
	SelectionConsultation SelectionType = "consultation"
)

func ParseSelectionType(s string) (SelectionType, bool) {
	switch SelectionType(s) {
	case SelectionAssessment, SelectionProgram, SelectionConsultation:
		return SelectionType(s), true
	default:
		return "", false
	}
}

// Selection is what the booking step captures.
type Selection struct {
	Type  SelectionType `json:"type"`
	Name  string        `json:"name"`
	Price float64       `json:"price"`
}

func (s *Selection) Validate() error {
	if _, ok := ParseSelectionType(string(s.Type)); !ok {
		return fmt.Errorf("invalid selection type: %s", s.Type)
	}
	if s.Name == "" {
		return errors.New("selection name is required")
	}
	if s.Price < 0 {
		return errors.New("selection price cannot be negative")
	}
	return nil
}

// Session is one live checkout instance.
type Session struct {
	ID        string
	CartKey   string
	CreatedAt time.Time

	controller *flow.Controller
	invoker    *flow.Invoker

	mu        sync.Mutex
	selection *Selection
	lastSeen  time.Time
}

func (s *Session) touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) Step() flow.Step {
	return s.controller.Current()
}

func (s *Session) InFlight() bool {
	return s.invoker.InFlight()
}

func (s *Session) LastError() string {
	return s.invoker.LastError()
}

func (s *Session) currentSelection() *Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

func (s *Session) setSelection(sel *Selection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = sel
}

// Manager owns every live checkout instance for this portal process. A
// janitor evicts instances nobody has touched for idleTimeout.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session

	drafts       *draft.Store
	publisher    events.Publisher
	paymentDelay time.Duration

	done     chan struct{}
	stopOnce sync.Once
}

func NewManager(drafts *draft.Store, publisher events.Publisher, paymentDelay time.Duration) *Manager {
	m := &Manager{
		sessions:     make(map[string]*Session),
		drafts:       drafts,
		publisher:    publisher,
		paymentDelay: paymentDelay,
		done:         make(chan struct{}),
	}
	go m.janitor()
	return m
}

// Shutdown stops the idle-instance janitor.
func (m *Manager) Shutdown() {
	m.stopOnce.Do(func() { close(m.done) })
}

func (m *Manager) janitor() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now())
		case <-m.done:
			return
		}
	}
}

// sweep abandons every instance idle for longer than idleTimeout.
func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	var idle []*Session
	for _, session := range m.sessions {
		if now.Sub(session.idleSince()) > idleTimeout {
			idle = append(idle, session)
		}
	}
	m.mu.Unlock()

	for _, session := range idle {
		logger.Warn("Evicting idle checkout instance", "flow_id", session.ID, "step", session.Step())
		m.remove(session)
	}
}

// Create opens a new checkout instance at the booking step. cartKey names the
// draft cart the instance appends to (session id or email).
func (m *Manager) Create(cartKey string) (*Session, error) {
	controller, err := flow.NewController(StepBooking, checkoutSteps, StepConfirmation)
	if err != nil {
		return nil, err
	}

	session := &Session{
		ID:         uuid.NewString(),
		CartKey:    cartKey,
		CreatedAt:  time.Now(),
		lastSeen:   time.Now(),
		controller: controller,
		invoker:    flow.NewInvoker(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session, nil
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	session.touch()
	return session, nil
}

// SubmitBooking captures the selection and advances to payment.
func (m *Manager) SubmitBooking(id string, sel Selection) (*Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	if err := session.controller.GoTo(StepPayment); err != nil {
		return nil, err
	}
	session.setSelection(&sel)
	return session, nil
}

// Back returns from payment to booking. The selection is kept so the form
// re-renders with the previous choice.
func (m *Manager) Back(id string) (*Session, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if err := session.controller.GoTo(StepBooking); err != nil {
		return nil, err
	}
	return session, nil
}

// SubmitPayment runs the simulated payment, appends the selection to the
// draft cart and advances to confirmation. A submit while the previous one
// is still resolving fails with flow.ErrInFlight.
func (m *Manager) SubmitPayment(ctx context.Context, id string) ([]draft.Item, error) {
	session, err := m.Get(id)
	if err != nil {
		return nil, err
	}
	if session.Step() != StepPayment {
		return nil, fmt.Errorf("checkout: payment not available at step %q", session.Step())
	}
	sel := session.currentSelection()
	if sel == nil {
		return nil, errors.New("checkout: no selection captured")
	}

	err = session.invoker.Do(ctx, func(ctx context.Context) error {
		// Payment capture is external; the dialog only simulates the wait.
		select {
		case <-time.After(m.paymentDelay):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})
	if err != nil {
		return nil, err
	}

	item := draft.Item{
		Type:  string(sel.Type),
		Name:  sel.Name,
		Price: sel.Price,
		Date:  time.Now(),
	}
	items, err := m.drafts.Append(ctx, session.CartKey, item)
	if err != nil {
		// The cart is advisory; a failed write must not undo the payment step.
		logger.WarnContext(ctx, "Failed to persist draft cart", "error", err, "flow_id", session.ID)
		items = append(m.drafts.Load(ctx, session.CartKey), item)
	}

	if err := session.controller.GoTo(StepConfirmation); err != nil {
		return nil, err
	}

	if err := m.publisher.Publish(ctx, events.CheckoutCompleted, events.CheckoutCompletedEvent{
		FlowID:      session.ID,
		ItemType:    item.Type,
		ItemName:    item.Name,
		Price:       item.Price,
		CompletedAt: item.Date,
	}); err != nil {
		logger.WarnContext(ctx, "Failed to publish checkout event", "error", err, "flow_id", session.ID)
	}

	return items, nil
}

// Finish closes a completed instance; the caller navigates away afterwards.
func (m *Manager) Finish(id string) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	if session.Step() != StepConfirmation {
		return fmt.Errorf("checkout: cannot finish at step %q", session.Step())
	}
	m.remove(session)
	return nil
}

// Close abandons an instance at any step, cancelling anything in flight.
func (m *Manager) Close(id string) error {
	session, err := m.Get(id)
	if err != nil {
		return err
	}
	session.controller.Reset()
	m.remove(session)
	return nil
}

func (m *Manager) remove(session *Session) {
	session.invoker.Dispose()

	m.mu.Lock()
	delete(m.sessions, session.ID)
	m.mu.Unlock()
}
