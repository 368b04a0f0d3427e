package events

import (
	"context"
	"time"
)

// Event is a fact the engine announces after it happened. The name doubles
// as the broker routing key.
type Event interface {
	GetName() string
	GetDateTime() time.Time
	GetPayload() interface{}
}

// EventDispatcher publishes events. Callers treat delivery as best effort.
type EventDispatcher interface {
	Dispatch(ctx context.Context, event Event) error
}

// DomainEvent is an immutable Event built once per occurrence.
type DomainEvent struct {
	name       string
	occurredAt time.Time
	payload    interface{}
}

func NewEvent(name string, payload interface{}, occurredAt time.Time) *DomainEvent {
	return &DomainEvent{name: name, occurredAt: occurredAt, payload: payload}
}

func (e *DomainEvent) GetName() string         { return e.name }
func (e *DomainEvent) GetDateTime() time.Time  { return e.occurredAt }
func (e *DomainEvent) GetPayload() interface{} { return e.payload }

// NopDispatcher drops every event. It stands in when no broker is configured.
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(_ context.Context, _ Event) error { return nil }
