package saga

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/application/services"
	"order_fulfillment/domain/event"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventbus"
	"order_fulfillment/infrastructure/eventstore"
	"order_fulfillment/infrastructure/memory"
)

// approvingGateway accepts every charge.
type approvingGateway struct{}

func (approvingGateway) Process(context.Context, shared.Money, payment.Method) (payment.Result, error) {
	return payment.Result{Success: true, TransactionID: "txn-test"}, nil
}

// decliningGateway declines every charge.
type decliningGateway struct{}

func (decliningGateway) Process(context.Context, shared.Money, payment.Method) (payment.Result, error) {
	return payment.Result{Success: false, Reason: "card declined"}, nil
}

// gatedGateway blocks every charge until the gate channel is closed. Used to
// hold the saga at the payment step.
type gatedGateway struct {
	gate   chan struct{}
	result payment.Result
}

func (g *gatedGateway) Process(ctx context.Context, _ shared.Money, _ payment.Method) (payment.Result, error) {
	select {
	case <-g.gate:
		return g.result, nil
	case <-ctx.Done():
		return payment.Result{}, ctx.Err()
	}
}

type fixture struct {
	bus          *eventbus.Bus
	store        eventstore.Store
	products     *memory.ProductRepository
	reservations *memory.ReservationRepository
	orders       *memory.OrderRepository
	payments     *memory.PaymentRepository
	shipments    *memory.ShipmentRepository
	orderSvc     *services.OrderService
	productSvc   *services.ProductService
}

func newFixture(gw payment.Gateway) *fixture {
	bus := eventbus.New()
	store := eventstore.NewMemoryStore()
	products := memory.NewProductRepository()
	reservations := memory.NewReservationRepository()
	orders := memory.NewOrderRepository()
	payments := memory.NewPaymentRepository()
	shipments := memory.NewShipmentRepository()

	orderSvc := services.NewOrderService(orders, bus)
	productSvc := services.NewProductService(products)
	reserveSvc := services.NewReserveStockService(products, reservations, bus)
	releaseSvc := services.NewReleaseStockService(products, reservations, bus)
	paymentSvc := services.NewProcessPaymentService(payments, gw, bus)
	shipmentSvc := services.NewCreateShipmentService(shipments, bus)

	New(bus, store, orderSvc, reserveSvc, releaseSvc, paymentSvc, shipmentSvc).Register()

	return &fixture{
		bus:          bus,
		store:        store,
		products:     products,
		reservations: reservations,
		orders:       orders,
		payments:     payments,
		shipments:    shipments,
		orderSvc:     orderSvc,
		productSvc:   productSvc,
	}
}

func (f *fixture) seedProduct(t *testing.T, sku string, stock int) {
	t.Helper()
	_, err := f.productSvc.CreateProduct(context.Background(), sku, sku+" product", stock)
	require.NoError(t, err)
}

func (f *fixture) placeOrder(t *testing.T, customerID string, items ...order.Item) *order.Order {
	t.Helper()
	address, err := shared.NewAddress("1 Main St", "Springfield", "IL", "62701", "US")
	require.NoError(t, err)
	o, err := f.orderSvc.PlaceOrder(context.Background(), customerID, items, address)
	require.NoError(t, err)
	return o
}

func (f *fixture) timelineTypes(t *testing.T, orderID string) []string {
	t.Helper()
	events, err := f.store.FindByAggregateID(context.Background(), orderID)
	require.NoError(t, err)
	types := make([]string, 0, len(events))
	for _, evt := range events {
		types = append(types, evt.EventType)
	}
	return types
}

func item(sku string, quantity int, price float64) order.Item {
	return order.Item{SKU: sku, Quantity: quantity, UnitPrice: shared.MustMoney(price, "USD")}
}

func TestHappyPathThroughShipped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(approvingGateway{})
	f.seedProduct(t, "SKU-1", 10)

	placed := f.placeOrder(t, "cust-1", item("SKU-1", 5, 9.99))
	// The snapshot returned to the caller is the order as accepted.
	assert.Equal(t, order.StatusPending, placed.Status)

	final, err := f.orderSvc.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, final.Status)
	assert.NotEmpty(t, final.PaymentID)
	assert.NotEmpty(t, final.ShipmentID)

	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 5, p.ReservedQuantity)
	assert.Equal(t, 5, p.AvailableStock())

	pay, err := f.payments.FindByOrderID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatusSucceeded, pay.Status)

	ship, err := f.shipments.FindByOrderID(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, ship.ID, final.ShipmentID)

	assert.Equal(t, []string{
		event.TypeOrderPlaced,
		event.TypeInventoryReserved,
		event.TypeOrderConfirmed,
		event.TypePaymentProcessed,
		event.TypeOrderPaid,
		event.TypeShipmentCreated,
		event.TypeOrderShipped,
	}, f.timelineTypes(t, placed.ID))
}

func TestInsufficientStockRejectsOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(approvingGateway{})
	f.seedProduct(t, "SKU-1", 3)

	placed := f.placeOrder(t, "cust-1", item("SKU-1", 5, 9.99))

	final, err := f.orderSvc.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusRejected, final.Status)
	assert.Contains(t, final.RejectionReason, "insufficient stock")

	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 0, p.ReservedQuantity)

	_, err = f.payments.FindByOrderID(ctx, placed.ID)
	assert.True(t, shared.IsNotFound(err))

	assert.Equal(t, []string{
		event.TypeOrderPlaced,
		event.TypeInventoryReservationFailed,
		event.TypeOrderRejected,
	}, f.timelineTypes(t, placed.ID))
}

func TestPaymentFailureReleasesStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(decliningGateway{})
	f.seedProduct(t, "SKU-1", 10)

	placed := f.placeOrder(t, "cust-1", item("SKU-1", 4, 9.99))

	final, err := f.orderSvc.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaymentFailed, final.Status)

	// Compensation returned the stock.
	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 0, p.ReservedQuantity)
	assert.Equal(t, 10, p.AvailableStock())

	held, _ := f.reservations.FindUnreleasedByOrderID(ctx, placed.ID)
	assert.Empty(t, held)

	_, err = f.shipments.FindByOrderID(ctx, placed.ID)
	assert.True(t, shared.IsNotFound(err))

	assert.Equal(t, []string{
		event.TypeOrderPlaced,
		event.TypeInventoryReserved,
		event.TypeOrderConfirmed,
		event.TypePaymentFailed,
		event.TypeOrderPaymentFailed,
		event.TypeInventoryReleased,
	}, f.timelineTypes(t, placed.ID))
}

func TestConcurrentOrdersCompeteForStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture(approvingGateway{})
	f.seedProduct(t, "SKU-1", 50)

	// Two orders of 30 against stock 50: exactly one can ship.
	var wg sync.WaitGroup
	orderIDs := make([]string, 2)
	for i := range orderIDs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			placed := f.placeOrder(t, "cust-1", item("SKU-1", 30, 1.00))
			orderIDs[i] = placed.ID
		}(i)
	}
	wg.Wait()

	var shipped, rejected int
	for _, id := range orderIDs {
		o, err := f.orderSvc.GetOrder(ctx, id)
		require.NoError(t, err)
		switch o.Status {
		case order.StatusShipped:
			shipped++
		case order.StatusRejected:
			rejected++
		default:
			t.Fatalf("unexpected final status %s for order %s", o.Status, id)
		}
	}
	assert.Equal(t, 1, shipped)
	assert.Equal(t, 1, rejected)

	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 30, p.ReservedQuantity)
	assert.Equal(t, 20, p.AvailableStock())
}

func TestCancelDuringPaymentReleasesStock(t *testing.T) {
	ctx := context.Background()
	gw := &gatedGateway{gate: make(chan struct{}), result: payment.Result{Success: true, TransactionID: "txn-late"}}
	f := newFixture(gw)
	f.seedProduct(t, "SKU-1", 10)

	// PlaceOrder blocks inside the saga at the gateway; run it aside.
	done := make(chan *order.Order, 1)
	go func() {
		done <- f.placeOrder(t, "cust-1", item("SKU-1", 5, 9.99))
	}()

	// Wait for the saga to reach CONFIRMED with the stock held.
	var orderID string
	require.Eventually(t, func() bool {
		orders, err := f.orderSvc.ListOrders(ctx, order.Filter{Status: order.StatusConfirmed})
		if err != nil || len(orders) != 1 {
			return false
		}
		orderID = orders[0].ID
		return true
	}, 5*time.Second, 10*time.Millisecond)

	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	require.Equal(t, 5, p.ReservedQuantity)

	cancelled, err := f.orderSvc.CancelOrder(ctx, orderID, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, cancelled.Status)

	p, _ = f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 0, p.ReservedQuantity)
	assert.Equal(t, 10, p.AvailableStock())

	// Let the late payment settle; it cannot resurrect the cancelled order.
	close(gw.gate)
	<-done

	final, err := f.orderSvc.GetOrder(ctx, orderID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusCancelled, final.Status)

	_, err = f.shipments.FindByOrderID(ctx, orderID)
	assert.True(t, shared.IsNotFound(err))
}

func TestCancelShippedOrderIsRefused(t *testing.T) {
	ctx := context.Background()
	f := newFixture(approvingGateway{})
	f.seedProduct(t, "SKU-1", 10)

	placed := f.placeOrder(t, "cust-1", item("SKU-1", 2, 5.00))

	_, err := f.orderSvc.CancelOrder(ctx, placed.ID, "too late")
	assert.True(t, shared.IsBusinessRuleViolation(err))

	final, err := f.orderSvc.GetOrder(ctx, placed.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, final.Status)

	// The reservation survives the refused cancel.
	p, _ := f.products.FindBySKU(ctx, "SKU-1")
	assert.Equal(t, 2, p.ReservedQuantity)
}

func TestEveryEventIsRecordedExactlyOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(approvingGateway{})
	f.seedProduct(t, "SKU-1", 10)

	placed := f.placeOrder(t, "cust-1", item("SKU-1", 1, 2.50))

	timeline, err := f.store.FindByAggregateID(ctx, placed.ID)
	require.NoError(t, err)
	seen := make(map[string]bool, len(timeline))
	for _, evt := range timeline {
		assert.False(t, seen[evt.EventID], "event %s recorded twice", evt.EventID)
		seen[evt.EventID] = true
		assert.Equal(t, placed.ID, evt.AggregateID)
	}
	require.Len(t, timeline, 7)
}
