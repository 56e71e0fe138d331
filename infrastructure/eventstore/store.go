// Package eventstore is the append-only log of every emitted domain event,
// the authoritative audit trail of the system. Events are never updated or
// deleted.
package eventstore

import (
	"context"

	"order_fulfillment/domain/event"
	"order_fulfillment/domain/shared"
)

// NotFound builds the typed not-found error for a missing event id.
func NotFound(eventID string) error {
	return shared.NewNotFoundError("event", eventID)
}

// Store is the append-only event log.
//
// Append is idempotent on EventID: re-appending the same id must not produce
// a second record. Queries order by OccurredAt - ascending for a single
// aggregate's timeline, descending for the type and global views.
type Store interface {
	Append(ctx context.Context, evt event.Event) error
	FindByID(ctx context.Context, eventID string) (event.Event, error)
	FindByAggregateID(ctx context.Context, aggregateID string) ([]event.Event, error)
	FindByEventType(ctx context.Context, eventType string) ([]event.Event, error)
	FindAll(ctx context.Context) ([]event.Event, error)
}
