package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"order_fulfillment/domain/event"
	"order_fulfillment/domain/shared"
)

// PostgresStore persists events in the event_store table. Idempotency on
// event id is pushed into the database: INSERT ... ON CONFLICT DO NOTHING
// can never produce two rows for one event id, whatever the interleaving.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a store on an open connection pool.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Append records the event, once per event id.
func (s *PostgresStore) Append(ctx context.Context, evt event.Event) error {
	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload for %s: %w", evt.EventID, err)
	}

	query := `
		INSERT INTO event_store (event_id, event_type, aggregate_id, aggregate_type, occurred_at, payload, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (event_id) DO NOTHING
	`
	_, err = s.db.ExecContext(ctx, query,
		evt.EventID, evt.EventType, evt.AggregateID, evt.AggregateType,
		evt.OccurredAt, payload, evt.Version)
	if err != nil {
		return shared.NewInfrastructureError("event store append", err)
	}
	return nil
}

// FindByID returns the event or a typed not-found error.
func (s *PostgresStore) FindByID(ctx context.Context, eventID string) (event.Event, error) {
	query := selectColumns + ` FROM event_store WHERE event_id = $1`

	evt, err := scanEvent(s.db.QueryRowContext(ctx, query, eventID))
	if errors.Is(err, sql.ErrNoRows) {
		return event.Event{}, NotFound(eventID)
	}
	if err != nil {
		return event.Event{}, shared.NewInfrastructureError("event store query", err)
	}
	return evt, nil
}

// FindByAggregateID returns the aggregate's timeline, oldest first.
func (s *PostgresStore) FindByAggregateID(ctx context.Context, aggregateID string) ([]event.Event, error) {
	query := selectColumns + ` FROM event_store WHERE aggregate_id = $1 ORDER BY occurred_at ASC`
	return s.query(ctx, query, aggregateID)
}

// FindByEventType returns all events of one type, newest first.
func (s *PostgresStore) FindByEventType(ctx context.Context, eventType string) ([]event.Event, error) {
	query := selectColumns + ` FROM event_store WHERE event_type = $1 ORDER BY occurred_at DESC`
	return s.query(ctx, query, eventType)
}

// FindAll returns every recorded event, newest first.
func (s *PostgresStore) FindAll(ctx context.Context) ([]event.Event, error) {
	query := selectColumns + ` FROM event_store ORDER BY occurred_at DESC`
	return s.query(ctx, query)
}

const selectColumns = `SELECT event_id, event_type, aggregate_id, aggregate_type, occurred_at, payload, version`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var evt event.Event
	var payload []byte
	if err := row.Scan(&evt.EventID, &evt.EventType, &evt.AggregateID,
		&evt.AggregateType, &evt.OccurredAt, &payload, &evt.Version); err != nil {
		return event.Event{}, err
	}
	if err := json.Unmarshal(payload, &evt.Payload); err != nil {
		return event.Event{}, fmt.Errorf("failed to unmarshal payload for %s: %w", evt.EventID, err)
	}
	return evt, nil
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]event.Event, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.NewInfrastructureError("event store query", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, shared.NewInfrastructureError("event store scan", err)
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewInfrastructureError("event store query", err)
	}
	return events, nil
}
