package memory

import (
	"context"
	"sync"

	"order_fulfillment/domain/shared"
	"order_fulfillment/domain/shipment"
)

// ShipmentRepository is the in-memory shipment store.
type ShipmentRepository struct {
	mu      sync.Mutex
	byID    map[string]shipment.Shipment
	byOrder map[string]string // order id -> shipment id
}

// NewShipmentRepository creates an empty repository.
func NewShipmentRepository() *ShipmentRepository {
	return &ShipmentRepository{
		byID:    make(map[string]shipment.Shipment),
		byOrder: make(map[string]string),
	}
}

// Save inserts a new shipment.
func (r *ShipmentRepository) Save(_ context.Context, s *shipment.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[s.ID]; exists {
		return shared.NewBusinessRuleError("shipment already exists: " + s.ID)
	}
	r.byID[s.ID] = *s
	r.byOrder[s.OrderID] = s.ID
	return nil
}

// FindByID returns a copy of the shipment or a typed not-found error.
func (r *ShipmentRepository) FindByID(_ context.Context, id string) (*shipment.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("shipment", id)
	}
	return &s, nil
}

// FindByOrderID returns the shipment for an order.
func (r *ShipmentRepository) FindByOrderID(_ context.Context, orderID string) (*shipment.Shipment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, shared.NewNotFoundError("shipment for order", orderID)
	}
	s := r.byID[id]
	return &s, nil
}

// Update writes the shipment back iff the stored version still matches.
func (r *ShipmentRepository) Update(_ context.Context, s *shipment.Shipment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[s.ID]
	if !ok {
		return shared.NewNotFoundError("shipment", s.ID)
	}
	if stored.Version != s.Version {
		return shared.ErrConcurrentModification
	}
	s.Version++
	r.byID[s.ID] = *s
	return nil
}
