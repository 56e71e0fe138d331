package services

import (
	"context"
	"log"

	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventbus"
)

// OrderService exposes the synchronous order operations of the public
// surface. Everything past placement happens through the saga listeners.
type OrderService struct {
	orders order.Repository
	bus    *eventbus.Bus
}

// NewOrderService wires the service.
func NewOrderService(orders order.Repository, bus *eventbus.Bus) *OrderService {
	return &OrderService{orders: orders, bus: bus}
}

// PlaceOrder validates and persists a new order, then kicks off the saga by
// publishing OrderPlaced. The returned snapshot is the order as accepted,
// before any listener has advanced it; callers observe progress via GetOrder.
func (s *OrderService) PlaceOrder(ctx context.Context, customerID string, items []order.Item, address shared.Address) (*order.Order, error) {
	o, err := order.NewOrder(customerID, items, address)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	evt, err := order.NewOrderPlaced(o)
	if err != nil {
		return nil, err
	}

	snapshot := *o
	snapshot.Items = append([]order.Item(nil), o.Items...)

	log.Printf("✅ Order placed: %s (customer %s, total %s)", o.ID, o.CustomerID, o.TotalAmount)
	s.bus.Publish(ctx, evt)
	return &snapshot, nil
}

// GetOrder returns the current state of one order.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return s.orders.FindByID(ctx, id)
}

// ListOrders returns orders matching the filter, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	return s.orders.List(ctx, f)
}

// CancelOrder cancels an order still in a cancellable state and publishes
// OrderCancelled so held stock gets released.
func (s *OrderService) CancelOrder(ctx context.Context, id, reason string) (*order.Order, error) {
	var cancelled *order.Order
	err := withVersionRetry(ctx, func(ctx context.Context) error {
		o, err := s.orders.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := o.Cancel(reason); err != nil {
			return err
		}
		if err := s.orders.Update(ctx, o); err != nil {
			return err
		}
		cancelled = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	evt, err := order.NewOrderCancelled(cancelled)
	if err != nil {
		return nil, err
	}
	log.Printf("🔙 Order cancelled: %s (%s)", cancelled.ID, cancelled.CancellationReason)
	s.bus.Publish(ctx, evt)
	return cancelled, nil
}
