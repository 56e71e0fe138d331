package services

import (
	"context"
	"log"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/infrastructure/eventbus"
)

// ReleaseStockService is the compensation side of reservation: it returns an
// order's reserved stock to the ledger. Invoked on OrderCancelled and
// OrderPaymentFailed.
type ReleaseStockService struct {
	products     inventory.ProductRepository
	reservations inventory.ReservationRepository
	bus          *eventbus.Bus
}

// NewReleaseStockService wires the service.
func NewReleaseStockService(
	products inventory.ProductRepository,
	reservations inventory.ReservationRepository,
	bus *eventbus.Bus,
) *ReleaseStockService {
	return &ReleaseStockService{products: products, reservations: reservations, bus: bus}
}

// Release frees every unreleased reservation held for the order. Safe to
// invoke more than once: an order with nothing outstanding is a no-op and
// emits nothing. InventoryReleased is emitted only when at least one
// reservation was actually freed.
func (s *ReleaseStockService) Release(ctx context.Context, orderID string) error {
	held, err := s.reservations.FindUnreleasedByOrderID(ctx, orderID)
	if err != nil {
		return err
	}
	if len(held) == 0 {
		log.Printf("📨 No reservations to release for order %s", orderID)
		return nil
	}

	var released []inventory.ReservedLine
	for _, res := range held {
		if err := s.releaseReservation(ctx, res); err != nil {
			log.Printf("❌ Failed to release reservation %s (%d x %s): %v",
				res.ID, res.Quantity, res.SKU, err)
			continue
		}
		released = append(released, inventory.ReservedLine{
			ReservationID: res.ID,
			SKU:           res.SKU,
			Quantity:      res.Quantity,
		})
	}

	if len(released) == 0 {
		return nil
	}

	evt, err := inventory.NewInventoryReleased(orderID, released)
	if err != nil {
		return err
	}
	log.Printf("🔙 Released %d reservations for order %s", len(released), orderID)
	s.bus.Publish(ctx, evt)
	return nil
}

// releaseReservation returns one reservation's quantity to the ledger, then
// closes the reservation row. The ledger update runs under the version check.
func (s *ReleaseStockService) releaseReservation(ctx context.Context, res *inventory.StockReservation) error {
	err := withVersionRetry(ctx, func(ctx context.Context) error {
		p, err := s.products.FindBySKU(ctx, res.SKU)
		if err != nil {
			return err
		}
		if err := p.ReleaseStock(res.Quantity); err != nil {
			return err
		}
		return s.products.Update(ctx, p)
	})
	if err != nil {
		return err
	}
	if err := res.Release(); err != nil {
		return err
	}
	return s.reservations.Update(ctx, res)
}
