package services

import (
	"context"
	"log"

	"order_fulfillment/domain/event"
	"order_fulfillment/domain/order"
)

// Saga-driven order transitions. Each one advances the order state machine
// under the version check and publishes the resulting order event. A
// transition refused by the state machine (the order moved on, e.g. was
// cancelled mid-saga) surfaces as a business rule error to the caller.

// ConfirmOrder moves PENDING -> CONFIRMED and publishes OrderConfirmed.
// Invoked on InventoryReserved.
func (s *OrderService) ConfirmOrder(ctx context.Context, orderID string) error {
	return s.transition(ctx, orderID, "confirmed",
		func(o *order.Order) error { return o.Confirm() },
		func(o *order.Order) (event.Event, error) { return order.NewOrderConfirmed(o) },
	)
}

// RejectOrder moves PENDING -> REJECTED and publishes OrderRejected.
// Invoked on InventoryReservationFailed.
func (s *OrderService) RejectOrder(ctx context.Context, orderID, reason string) error {
	return s.transition(ctx, orderID, "rejected",
		func(o *order.Order) error { return o.Reject(reason) },
		func(o *order.Order) (event.Event, error) { return order.NewOrderRejected(o) },
	)
}

// MarkOrderPaid moves CONFIRMED -> PAID and publishes OrderPaid.
// Invoked on PaymentProcessed.
func (s *OrderService) MarkOrderPaid(ctx context.Context, orderID, paymentID string) error {
	return s.transition(ctx, orderID, "paid",
		func(o *order.Order) error { return o.MarkAsPaid(paymentID) },
		func(o *order.Order) (event.Event, error) { return order.NewOrderPaid(o) },
	)
}

// MarkOrderPaymentFailed moves CONFIRMED -> PAYMENT_FAILED and publishes
// OrderPaymentFailed. Invoked on PaymentFailed.
func (s *OrderService) MarkOrderPaymentFailed(ctx context.Context, orderID, reason string) error {
	return s.transition(ctx, orderID, "payment-failed",
		func(o *order.Order) error { return o.MarkPaymentFailed(reason) },
		func(o *order.Order) (event.Event, error) { return order.NewOrderPaymentFailed(o, reason) },
	)
}

// MarkOrderShipped moves PAID -> SHIPPED and publishes OrderShipped.
// Invoked on ShipmentCreated.
func (s *OrderService) MarkOrderShipped(ctx context.Context, orderID, shipmentID string) error {
	return s.transition(ctx, orderID, "shipped",
		func(o *order.Order) error { return o.MarkAsShipped(shipmentID) },
		func(o *order.Order) (event.Event, error) { return order.NewOrderShipped(o) },
	)
}

func (s *OrderService) transition(
	ctx context.Context,
	orderID, name string,
	mutate func(*order.Order) error,
	emit func(*order.Order) (event.Event, error),
) error {
	var updated *order.Order
	err := withVersionRetry(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if err := mutate(o); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		updated = o
		return nil
	})
	if err != nil {
		return err
	}

	evt, err := emit(updated)
	if err != nil {
		return err
	}
	log.Printf("✅ Order %s: %s", orderID, name)
	s.bus.Publish(ctx, evt)
	return nil
}
