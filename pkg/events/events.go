package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mohamadtout/therapy-platform-sub003/pkg/logger"
	"github.com/nats-io/nats.go"
)

// Publisher emits portal activity events for downstream consumers (CRM sync,
// notification workers). The portal only publishes; it never subscribes.
type Publisher interface {
	Publish(ctx context.Context, subject string, data interface{}) error
	Close() error
}

type NATSPublisher struct {
	conn *nats.Conn
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	conn, err := nats.Connect(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{conn: conn}, nil
}

func (n *NATSPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	logger.DebugContext(ctx, "Publishing event", "subject", subject, "data", string(payload))

	return n.conn.Publish(subject, payload)
}

func (n *NATSPublisher) Close() error {
	n.conn.Close()
	return nil
}

// NoopPublisher is used when no NATS URL is configured.
type NoopPublisher struct{}

func (NoopPublisher) Publish(ctx context.Context, subject string, data interface{}) error {
	logger.DebugContext(ctx, "Event bus disabled, dropping event", "subject", subject)
	return nil
}

func (NoopPublisher) Close() error { return nil }

// Event subjects
const (
	CheckoutCompleted   = "portal.checkout.completed"
	ContactSubmitted    = "portal.contact.submitted"
	SubscriptionCreated = "portal.subscription.created"
	SignupConfirmed     = "portal.signup.confirmed"
)

// Event payloads
type CheckoutCompletedEvent struct {
	FlowID      string    `json:"flow_id"`
	ItemType    string    `json:"item_type"`
	ItemName    string    `json:"item_name"`
	Price       float64   `json:"price"`
	CompletedAt time.Time `json:"completed_at"`
}

type ContactSubmittedEvent struct {
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type SubscriptionCreatedEvent struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type SignupConfirmedEvent struct {
	Email       string    `json:"email"`
	Level       string    `json:"level"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}
