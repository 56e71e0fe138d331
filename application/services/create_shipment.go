package services

import (
	"context"
	"log"

	"order_fulfillment/domain/shared"
	"order_fulfillment/domain/shipment"
	"order_fulfillment/infrastructure/eventbus"
)

// CreateShipmentService opens a shipment for a paid order. Invoked on
// OrderPaid.
type CreateShipmentService struct {
	shipments shipment.Repository
	bus       *eventbus.Bus
}

// NewCreateShipmentService wires the service.
func NewCreateShipmentService(shipments shipment.Repository, bus *eventbus.Bus) *CreateShipmentService {
	return &CreateShipmentService{shipments: shipments, bus: bus}
}

// Create records a shipment and emits ShipmentCreated. A duplicate
// invocation for an order that already has a shipment is a no-op.
func (s *CreateShipmentService) Create(ctx context.Context, orderID string, address shared.Address) error {
	if existing, err := s.shipments.FindByOrderID(ctx, orderID); err == nil {
		log.Printf("📨 Shipment for order %s already exists (%s), skipping", orderID, existing.TrackingNumber)
		return nil
	} else if !shared.IsNotFound(err) {
		return err
	}

	sh, err := shipment.NewShipment(orderID, address)
	if err != nil {
		return err
	}
	if err := s.shipments.Save(ctx, sh); err != nil {
		return err
	}

	evt, err := shipment.NewShipmentCreated(sh)
	if err != nil {
		return err
	}
	log.Printf("✅ Shipment %s created for order %s (tracking %s)", sh.ID, orderID, sh.TrackingNumber)
	s.bus.Publish(ctx, evt)
	return nil
}

// GetShipment returns the shipment for an order, if any.
func (s *CreateShipmentService) GetShipment(ctx context.Context, orderID string) (*shipment.Shipment, error) {
	return s.shipments.FindByOrderID(ctx, orderID)
}
