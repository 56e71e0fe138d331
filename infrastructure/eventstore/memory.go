package eventstore

import (
	"context"
	"sort"
	"sync"

	"order_fulfillment/domain/event"
)

// MemoryStore is an in-process Store used in tests and when no database is
// configured. Same idempotency and ordering semantics as the Postgres store.
type MemoryStore struct {
	mu     sync.RWMutex
	byID   map[string]event.Event
	events []event.Event
}

// NewMemoryStore creates an empty in-memory event log.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]event.Event)}
}

// Append records the event, once per event id.
func (s *MemoryStore) Append(_ context.Context, evt event.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[evt.EventID]; exists {
		return nil
	}
	s.byID[evt.EventID] = evt
	s.events = append(s.events, evt)
	return nil
}

// FindByID returns the event or a typed not-found error.
func (s *MemoryStore) FindByID(_ context.Context, eventID string) (event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	evt, ok := s.byID[eventID]
	if !ok {
		return event.Event{}, NotFound(eventID)
	}
	return evt, nil
}

// FindByAggregateID returns the aggregate's timeline, oldest first.
func (s *MemoryStore) FindByAggregateID(_ context.Context, aggregateID string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Event
	for _, evt := range s.events {
		if evt.AggregateID == aggregateID {
			out = append(out, evt)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

// FindByEventType returns all events of one type, newest first.
func (s *MemoryStore) FindByEventType(_ context.Context, eventType string) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []event.Event
	for _, evt := range s.events {
		if evt.EventType == eventType {
			out = append(out, evt)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

// FindAll returns every recorded event, newest first.
func (s *MemoryStore) FindAll(_ context.Context) ([]event.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]event.Event, len(s.events))
	copy(out, s.events)
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(events []event.Event) {
	sort.SliceStable(events, func(i, j int) bool { return events[i].OccurredAt.After(events[j].OccurredAt) })
}
