package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/event"
)

func testEvent(t *testing.T, eventType string) event.Event {
	t.Helper()
	evt, err := event.New(eventType, "agg-1", event.AggregateOrder, 1, nil)
	require.NoError(t, err)
	return evt
}

func TestPublishFansOutToAllSubscribers(t *testing.T) {
	bus := New()
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}

	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
	// Publish blocks until every handler returned.
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublishOnlyReachesMatchingType(t *testing.T) {
	bus := New()
	var placed, cancelled int32
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		atomic.AddInt32(&placed, 1)
		return nil
	})
	bus.Subscribe("OrderCancelled", func(ctx context.Context, evt event.Event) error {
		atomic.AddInt32(&cancelled, 1)
		return nil
	})

	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&placed))
	assert.Equal(t, int32(0), atomic.LoadInt32(&cancelled))
}

func TestPublishWithNoSubscribers(t *testing.T) {
	bus := New()
	// Must not block or panic.
	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
}

func TestHandlerErrorDoesNotStopOthers(t *testing.T) {
	bus := New()
	var succeeded int32
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		return errors.New("boom")
	})
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		atomic.AddInt32(&succeeded, 1)
		return nil
	})

	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&succeeded))
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	bus := New()
	var succeeded int32
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		panic("handler exploded")
	})
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		atomic.AddInt32(&succeeded, 1)
		return nil
	})

	// Must not propagate the panic.
	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
	assert.Equal(t, int32(1), atomic.LoadInt32(&succeeded))
}

func TestNestedPublishIsAwaited(t *testing.T) {
	bus := New()
	var order []string
	var mu sync.Mutex

	bus.Subscribe("First", func(ctx context.Context, evt event.Event) error {
		bus.Publish(ctx, testEvent(t, "Second"))
		mu.Lock()
		order = append(order, "first done")
		mu.Unlock()
		return nil
	})
	bus.Subscribe("Second", func(ctx context.Context, evt event.Event) error {
		mu.Lock()
		order = append(order, "second done")
		mu.Unlock()
		return nil
	})

	bus.Publish(context.Background(), testEvent(t, "First"))
	assert.Equal(t, []string{"second done", "first done"}, order)
}

func TestClear(t *testing.T) {
	bus := New()
	var calls int32
	bus.Subscribe("OrderPlaced", func(ctx context.Context, evt event.Event) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	bus.Clear()
	bus.Publish(context.Background(), testEvent(t, "OrderPlaced"))
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}
