package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/event"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventbus"
	"order_fulfillment/infrastructure/memory"
)

func testAddress(t *testing.T) shared.Address {
	t.Helper()
	a, err := shared.NewAddress("1 Main St", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	return a
}

func TestPlaceOrderPublishesOrderPlaced(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	orders := memory.NewOrderRepository()
	collector := collectEvents(bus, event.TypeOrderPlaced)

	svc := NewOrderService(orders, bus)
	items := []order.Item{{SKU: "SKU-1", Quantity: 2, UnitPrice: shared.MustMoney(3.50, "USD")}}
	placed, err := svc.PlaceOrder(ctx, "cust-1", items, testAddress(t))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, placed.Status)

	events := collector.byType(event.TypeOrderPlaced)
	require.Len(t, events, 1)
	assert.Equal(t, placed.ID, events[0].AggregateID)
	assert.Equal(t, "cust-1", events[0].Payload["customer_id"])

	stored, err := svc.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, placed.ID, stored.ID)
}

func TestPlaceOrderInvalidInputPublishesNothing(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	collector := collectEvents(bus, event.TypeOrderPlaced)

	svc := NewOrderService(memory.NewOrderRepository(), bus)
	_, err := svc.PlaceOrder(ctx, "", nil, testAddress(t))
	assert.True(t, shared.IsValidation(err))
	assert.Empty(t, collector.byType(event.TypeOrderPlaced))
}

func TestGetOrderNotFound(t *testing.T) {
	svc := NewOrderService(memory.NewOrderRepository(), eventbus.New())
	_, err := svc.GetOrder(context.Background(), "missing")
	assert.True(t, shared.IsNotFound(err))
}

func TestListOrdersFilters(t *testing.T) {
	ctx := context.Background()
	svc := NewOrderService(memory.NewOrderRepository(), eventbus.New())
	items := []order.Item{{SKU: "SKU-1", Quantity: 1, UnitPrice: shared.MustMoney(1, "USD")}}

	_, err := svc.PlaceOrder(ctx, "cust-1", items, testAddress(t))
	require.NoError(t, err)
	_, err = svc.PlaceOrder(ctx, "cust-2", items, testAddress(t))
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, order.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.ListOrders(ctx, order.Filter{CustomerID: "cust-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "cust-1", mine[0].CustomerID)
}

func TestCancelOrderPublishesOrderCancelled(t *testing.T) {
	ctx := context.Background()
	bus := eventbus.New()
	collector := collectEvents(bus, event.TypeOrderCancelled)

	svc := NewOrderService(memory.NewOrderRepository(), bus)
	items := []order.Item{{SKU: "SKU-1", Quantity: 1, UnitPrice: shared.MustMoney(1, "USD")}}
	placed, err := svc.PlaceOrder(ctx, "cust-1", items, testAddress(t))
	require.NoError(t, err)

	cancelled, err := svc.CancelOrder(ctx, placed.ID, "")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)
	assert.Equal(t, order.DefaultCancellationReason, cancelled.CancellationReason)

	events := collector.byType(event.TypeOrderCancelled)
	require.Len(t, events, 1)
	assert.Equal(t, order.DefaultCancellationReason, events[0].Payload["reason"])

	// A second cancel is refused and publishes nothing further.
	_, err = svc.CancelOrder(ctx, placed.ID, "again")
	assert.True(t, shared.IsBusinessRuleViolation(err))
	assert.Len(t, collector.byType(event.TypeOrderCancelled), 1)
}
