package domain

import (
	"context"

	"saleflow/internal/core/id"
)

// Event is a lifecycle fact captured for asynchronous delivery, e.g. a
// sale order confirmation or an invoice validation.
type Event struct {
	// AggregateType names the entity kind, e.g. "sale_order"
	AggregateType string

	// AggregateID is the entity the event belongs to
	AggregateID id.ID

	// EventType names what happened, e.g. "sale_order.confirmed"
	EventType string

	// Payload is serialized alongside the event
	Payload any
}

// EventPublisher records events within the current transaction, so an
// event is only visible if the state change that produced it committed.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}
