// Package saga wires the fulfillment choreography: each domain reacts to the
// previous domain's event, with no central coordinator. The full subscription
// table lives in Register, so the whole flow is readable in one place.
package saga

import (
	"context"
	"log"

	"order_fulfillment/application/services"
	"order_fulfillment/domain/event"
	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/order"
	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
	"order_fulfillment/domain/shipment"
	"order_fulfillment/infrastructure/eventbus"
	"order_fulfillment/infrastructure/eventstore"
)

// Choreography owns the saga's subscription table.
type Choreography struct {
	bus       *eventbus.Bus
	store     eventstore.Store
	orders    *services.OrderService
	reserve   *services.ReserveStockService
	release   *services.ReleaseStockService
	payments  *services.ProcessPaymentService
	shipments *services.CreateShipmentService
}

// New assembles the choreography over the shared bus.
func New(
	bus *eventbus.Bus,
	store eventstore.Store,
	orders *services.OrderService,
	reserve *services.ReserveStockService,
	release *services.ReleaseStockService,
	payments *services.ProcessPaymentService,
	shipments *services.CreateShipmentService,
) *Choreography {
	return &Choreography{
		bus:       bus,
		store:     store,
		orders:    orders,
		reserve:   reserve,
		release:   release,
		payments:  payments,
		shipments: shipments,
	}
}

// Register installs every subscription. Call exactly once at startup.
//
// Happy path:
//
//	OrderPlaced        -> reserve stock
//	InventoryReserved  -> confirm order
//	OrderConfirmed     -> process payment
//	PaymentProcessed   -> mark order paid
//	OrderPaid          -> create shipment
//	ShipmentCreated    -> mark order shipped
//
// Failure and compensation:
//
//	InventoryReservationFailed -> reject order
//	PaymentFailed              -> mark order payment failed
//	OrderPaymentFailed         -> release stock
//	OrderCancelled             -> release stock
func (c *Choreography) Register() {
	// Every event type is recorded in the append-only store before any
	// business reaction sees it.
	for _, eventType := range event.AllTypes() {
		c.bus.Subscribe(eventType, c.record)
	}

	c.bus.Subscribe(event.TypeOrderPlaced, c.onOrderPlaced)
	c.bus.Subscribe(event.TypeInventoryReserved, c.onInventoryReserved)
	c.bus.Subscribe(event.TypeInventoryReservationFailed, c.onInventoryReservationFailed)
	c.bus.Subscribe(event.TypeOrderConfirmed, c.onOrderConfirmed)
	c.bus.Subscribe(event.TypePaymentProcessed, c.onPaymentProcessed)
	c.bus.Subscribe(event.TypePaymentFailed, c.onPaymentFailed)
	c.bus.Subscribe(event.TypeOrderPaid, c.onOrderPaid)
	c.bus.Subscribe(event.TypeShipmentCreated, c.onShipmentCreated)
	c.bus.Subscribe(event.TypeOrderPaymentFailed, c.onOrderPaymentFailed)
	c.bus.Subscribe(event.TypeOrderCancelled, c.onOrderCancelled)

	log.Println("✅ Saga choreography registered")
}

// record appends the event to the audit log. Append is idempotent on event
// id, so a redelivered event never duplicates a record.
func (c *Choreography) record(ctx context.Context, evt event.Event) error {
	return c.store.Append(ctx, evt)
}

func (c *Choreography) onOrderPlaced(ctx context.Context, evt event.Event) error {
	var p order.OrderPlacedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	items := make([]inventory.RequestedItem, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, inventory.RequestedItem{SKU: item.SKU, Quantity: item.Quantity})
	}
	return c.reserve.Reserve(ctx, p.OrderID, items)
}

func (c *Choreography) onInventoryReserved(ctx context.Context, evt event.Event) error {
	var p inventory.InventoryReservedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.orders.ConfirmOrder(ctx, p.OrderID)
}

func (c *Choreography) onInventoryReservationFailed(ctx context.Context, evt event.Event) error {
	var p inventory.InventoryReservationFailedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.orders.RejectOrder(ctx, p.OrderID, p.Reason)
}

func (c *Choreography) onOrderConfirmed(ctx context.Context, evt event.Event) error {
	var p order.OrderConfirmedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	amount, err := shared.NewMoney(p.TotalAmount, p.Currency)
	if err != nil {
		return err
	}
	return c.payments.Process(ctx, p.OrderID, amount)
}

func (c *Choreography) onPaymentProcessed(ctx context.Context, evt event.Event) error {
	var p payment.PaymentProcessedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.orders.MarkOrderPaid(ctx, p.OrderID, p.PaymentID)
}

func (c *Choreography) onPaymentFailed(ctx context.Context, evt event.Event) error {
	var p payment.PaymentFailedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.orders.MarkOrderPaymentFailed(ctx, p.OrderID, p.Reason)
}

func (c *Choreography) onOrderPaid(ctx context.Context, evt event.Event) error {
	var p order.OrderPaidPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.shipments.Create(ctx, p.OrderID, p.ShippingAddress)
}

func (c *Choreography) onShipmentCreated(ctx context.Context, evt event.Event) error {
	var p shipment.ShipmentCreatedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.orders.MarkOrderShipped(ctx, p.OrderID, p.ShipmentID)
}

func (c *Choreography) onOrderPaymentFailed(ctx context.Context, evt event.Event) error {
	var p order.OrderPaymentFailedPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.release.Release(ctx, p.OrderID)
}

func (c *Choreography) onOrderCancelled(ctx context.Context, evt event.Event) error {
	var p order.OrderCancelledPayload
	if err := event.DecodePayload(evt, &p); err != nil {
		return err
	}
	return c.release.Release(ctx, p.OrderID)
}
