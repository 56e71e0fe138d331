package event

import (
	"encoding/json"
	"fmt"
	"time"

	"order_fulfillment/pkg/identifier"
)

// Event is the system-wide domain event record. Payload is a heterogeneous
// keyed mapping; the typed payload structs live in the emitting domain
// package and round-trip through JSON.
type Event struct {
	EventID       string         `json:"event_id"`
	EventType     string         `json:"event_type"`
	AggregateID   string         `json:"aggregate_id"`
	AggregateType string         `json:"aggregate_type"`
	OccurredAt    time.Time      `json:"occurred_at"`
	Version       int            `json:"version"`
	Payload       map[string]any `json:"payload"`
}

// New builds an event with a fresh id and the payload struct encoded into
// the keyed mapping.
func New(eventType, aggregateID, aggregateType string, version int, payload any) (Event, error) {
	if version < 1 {
		version = 1
	}
	encoded, err := encodePayload(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to encode %s payload: %w", eventType, err)
	}
	return Event{
		EventID:       identifier.New(),
		EventType:     eventType,
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		OccurredAt:    time.Now().UTC(),
		Version:       version,
		Payload:       encoded,
	}, nil
}

func encodePayload(payload any) (map[string]any, error) {
	if payload == nil {
		return map[string]any{}, nil
	}
	if m, ok := payload.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// DecodePayload unmarshals the event payload into a typed struct.
func DecodePayload(e Event, v any) error {
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", e.EventType, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s payload: %w", e.EventType, err)
	}
	return nil
}
