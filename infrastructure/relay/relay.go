// Package relay mirrors the append-only event store to a message broker so
// external consumers can follow the saga without reaching into the database.
// Export is strictly egress: no saga step depends on the broker, and the
// relay is disabled entirely when no broker is configured.
package relay

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"
)

// Relay polls event_store for rows past its cursor and publishes them in
// order. The cursor starts at the current head, so a restart exports only
// events appended afterwards.
type Relay struct {
	db        *sql.DB
	publisher Publisher
	interval  time.Duration
	batchSize int
	cursor    int64
}

// New creates a relay polling every interval.
func New(db *sql.DB, publisher Publisher, interval time.Duration) *Relay {
	return &Relay{
		db:        db,
		publisher: publisher,
		interval:  interval,
		batchSize: 100,
	}
}

// Start runs the poll loop until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	if err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), 0) FROM event_store`).Scan(&r.cursor); err != nil {
		return err
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	log.Printf("✅ Event relay started at position %d", r.cursor)

	for {
		select {
		case <-ticker.C:
			if err := r.exportBatch(ctx); err != nil {
				log.Printf("❌ Relay: failed to export events: %v", err)
			}
		case <-ctx.Done():
			log.Println("Event relay stopped")
			return nil
		}
	}
}

// relayedEvent is the wire shape sent to the broker.
type relayedEvent struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	AggregateID   string          `json:"aggregate_id"`
	AggregateType string          `json:"aggregate_type"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Version       int             `json:"version"`
	Payload       json.RawMessage `json:"payload"`
}

func (r *Relay) exportBatch(ctx context.Context) error {
	query := `
		SELECT position, event_id, event_type, aggregate_id, aggregate_type, occurred_at, payload, version
		FROM event_store
		WHERE position > $1
		ORDER BY position ASC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, r.cursor, r.batchSize)
	if err != nil {
		return err
	}
	defer rows.Close()

	var exported int
	for rows.Next() {
		var position int64
		var evt relayedEvent
		if err := rows.Scan(&position, &evt.EventID, &evt.EventType, &evt.AggregateID,
			&evt.AggregateType, &evt.OccurredAt, &evt.Payload, &evt.Version); err != nil {
			return err
		}

		body, err := json.Marshal(evt)
		if err != nil {
			return err
		}
		// Stop at the first publish failure so ordering survives; the next
		// tick resumes from the same cursor.
		if err := r.publisher.Publish(ctx, evt.EventType, body); err != nil {
			log.Printf("❌ Relay: failed to publish event %s: %v", evt.EventID, err)
			break
		}
		r.cursor = position
		exported++
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if exported > 0 {
		log.Printf("📤 Relay: exported %d events", exported)
	}
	return nil
}
