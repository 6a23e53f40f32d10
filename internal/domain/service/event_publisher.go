package service

import (
	"context"
	"time"
)

// Event types published by the identity and link services. The consumers
// (Telegram bot delivery, QR choreography) live behind the message broker and
// are outside this service.
const (
	EventCodeIssued       = "code_issued"
	EventConnectionOpened = "connection_opened"
	EventLinkCreated      = "link_created"
)

// DomainEvent is the payload published to the broker.
type DomainEvent struct {
	EventID    string            `json:"event_id"`
	Type       string            `json:"type"`
	UserID     string            `json:"user_id,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	RequestID  string            `json:"request_id,omitempty"`
}

// EventPublisher publishes domain events to the message broker.
// Implementations must be safe for concurrent use.
type EventPublisher interface {
	// PublishEvent publishes a single event. Failures are logged by callers
	// and never fail the originating request.
	PublishEvent(ctx context.Context, event *DomainEvent) error

	// Close releases broker resources.
	Close() error
}
