package services

import (
	"context"
	"fmt"
	"log"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventbus"
)

// ReserveStockService claims stock for every line of a placed order,
// all-or-nothing at the order scope. Invoked on OrderPlaced.
type ReserveStockService struct {
	products     inventory.ProductRepository
	reservations inventory.ReservationRepository
	bus          *eventbus.Bus
}

// NewReserveStockService wires the service.
func NewReserveStockService(
	products inventory.ProductRepository,
	reservations inventory.ReservationRepository,
	bus *eventbus.Bus,
) *ReserveStockService {
	return &ReserveStockService{products: products, reservations: reservations, bus: bus}
}

// Reserve prechecks every line first and mutates nothing unless all lines
// pass. The precheck is advisory only: each mutation then runs under the
// ledger's version check and re-verifies availability, so a concurrent
// reserver losing the race gets a reservation failure, never an
// over-reserved ledger.
func (s *ReserveStockService) Reserve(ctx context.Context, orderID string, items []inventory.RequestedItem) error {
	log.Printf("📨 Reserving stock for order %s (%d lines)", orderID, len(items))

	if len(items) == 0 {
		return s.fail(ctx, orderID, "no items to reserve", items)
	}

	// Pre-check pass: item order preserved as given.
	for i := range items {
		normalized, err := inventory.NormalizeSKU(items[i].SKU)
		if err != nil {
			return s.fail(ctx, orderID, fmt.Sprintf("invalid sku %q", items[i].SKU), items)
		}
		items[i].SKU = normalized

		p, err := s.products.FindBySKU(ctx, normalized)
		if err != nil {
			if shared.IsNotFound(err) {
				return s.fail(ctx, orderID, "product not found: "+normalized, items)
			}
			return err
		}
		if !p.CanReserve(items[i].Quantity) {
			return s.fail(ctx, orderID, fmt.Sprintf(
				"insufficient stock for %s: requested %d, available %d",
				normalized, items[i].Quantity, p.AvailableStock()), items)
		}
	}

	// Mutate pass: one reservation row per line.
	var claimed []*inventory.StockReservation
	for _, item := range items {
		if err := s.reserveLine(ctx, item); err != nil {
			s.rollback(ctx, orderID, claimed)
			if shared.IsBusinessRuleViolation(err) {
				return s.fail(ctx, orderID, err.Error(), items)
			}
			return err
		}

		res, err := inventory.NewStockReservation(orderID, item.SKU, item.Quantity)
		if err == nil {
			err = s.reservations.Save(ctx, res)
		}
		if err != nil {
			s.releaseProduct(ctx, item.SKU, item.Quantity)
			s.rollback(ctx, orderID, claimed)
			return err
		}
		claimed = append(claimed, res)
	}

	lines := make([]inventory.ReservedLine, 0, len(claimed))
	for _, res := range claimed {
		lines = append(lines, inventory.ReservedLine{
			ReservationID: res.ID,
			SKU:           res.SKU,
			Quantity:      res.Quantity,
		})
	}
	evt, err := inventory.NewInventoryReserved(orderID, lines)
	if err != nil {
		return err
	}
	log.Printf("✅ Stock reserved for order %s", orderID)
	s.bus.Publish(ctx, evt)
	return nil
}

// reserveLine claims one line under the version check, re-verifying
// availability on every attempt.
func (s *ReserveStockService) reserveLine(ctx context.Context, item inventory.RequestedItem) error {
	return withVersionRetry(ctx, func(ctx context.Context) error {
		p, err := s.products.FindBySKU(ctx, item.SKU)
		if err != nil {
			return err
		}
		if err := p.ReserveStock(item.Quantity); err != nil {
			return err
		}
		return s.products.Update(ctx, p)
	})
}

// releaseProduct undoes one ledger claim.
func (s *ReserveStockService) releaseProduct(ctx context.Context, sku string, quantity int) {
	err := withVersionRetry(ctx, func(ctx context.Context) error {
		p, err := s.products.FindBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if err := p.ReleaseStock(quantity); err != nil {
			return err
		}
		return s.products.Update(ctx, p)
	})
	if err != nil {
		log.Printf("❌ Failed to roll back %d x %s: %v", quantity, sku, err)
	}
}

// rollback undoes already-claimed lines when a later line loses its race:
// the ledger claim is released and the reservation row closed, so no
// phantom reservation survives a partial failure.
func (s *ReserveStockService) rollback(ctx context.Context, orderID string, claimed []*inventory.StockReservation) {
	if len(claimed) > 0 {
		log.Printf("🔙 Rolling back %d reserved lines for order %s", len(claimed), orderID)
	}
	for _, res := range claimed {
		s.releaseProduct(ctx, res.SKU, res.Quantity)
		if err := res.Release(); err == nil {
			if err := s.reservations.Update(ctx, res); err != nil {
				log.Printf("❌ Failed to close reservation %s: %v", res.ID, err)
			}
		}
	}
}

// fail emits InventoryReservationFailed without mutating anything.
func (s *ReserveStockService) fail(ctx context.Context, orderID, reason string, items []inventory.RequestedItem) error {
	log.Printf("🔙 Reservation failed for order %s: %s", orderID, reason)
	evt, err := inventory.NewInventoryReservationFailed(orderID, reason, items)
	if err != nil {
		return err
	}
	s.bus.Publish(ctx, evt)
	return nil
}
