// Package eventbus is the in-process publish/subscribe fabric the saga runs
// on. It keeps the broker-style Subscribe(eventType, handler) surface but
// delivers in the publisher's process: Publish fans out to every subscriber
// concurrently and returns only after all of them settled. A handler failure
// is logged and swallowed; it never reaches the publisher or the other
// subscribers.
package eventbus

import (
	"context"
	"log"
	"sync"

	"order_fulfillment/domain/event"
)

// Handler processes one delivered event.
type Handler func(ctx context.Context, evt event.Event) error

// Bus routes events by event type. The subscription table is written at
// startup and read-only at steady state.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

// New creates an empty bus.
func New() *Bus {
	return &Bus{handlers: make(map[string][]Handler)}
}

// Subscribe registers a handler for an event type. Multiple handlers per
// type are allowed; invocation order is not guaranteed.
func (b *Bus) Subscribe(eventType string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// Publish delivers evt to every handler subscribed to its type, each on its
// own goroutine, and blocks until all have returned or failed. Subscribers
// may publish follow-up events from their handlers; those nested publishes
// are awaited within the handler, which yields per-aggregate causal order
// along the saga chain.
func (b *Bus) Publish(ctx context.Context, evt event.Event) {
	b.mu.RLock()
	subscribers := make([]Handler, len(b.handlers[evt.EventType]))
	copy(subscribers, b.handlers[evt.EventType])
	b.mu.RUnlock()

	var wg sync.WaitGroup
	for _, h := range subscribers {
		wg.Add(1)
		go func(h Handler) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					log.Printf("❌ Handler panic on %s: %v", evt.EventType, r)
				}
			}()
			if err := h(ctx, evt); err != nil {
				log.Printf("❌ Handler failed on %s (event %s): %v", evt.EventType, evt.EventID, err)
			}
		}(h)
	}
	wg.Wait()
}

// Clear removes all subscriptions. Test-only hook.
func (b *Bus) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers = make(map[string][]Handler)
}
