package memory

import (
	"context"
	"sync"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/shared"
)

// ReservationRepository is the in-memory stock reservation store.
type ReservationRepository struct {
	mu   sync.Mutex
	byID map[string]inventory.StockReservation
	ids  []string // insertion order
}

// NewReservationRepository creates an empty repository.
func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{byID: make(map[string]inventory.StockReservation)}
}

// Save inserts a new reservation.
func (r *ReservationRepository) Save(_ context.Context, res *inventory.StockReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[res.ID]; exists {
		return shared.NewBusinessRuleError("reservation already exists: " + res.ID)
	}
	r.byID[res.ID] = *res
	r.ids = append(r.ids, res.ID)
	return nil
}

// FindUnreleasedByOrderID returns copies of the order's live reservations in
// creation order.
func (r *ReservationRepository) FindUnreleasedByOrderID(_ context.Context, orderID string) ([]*inventory.StockReservation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*inventory.StockReservation
	for _, id := range r.ids {
		res := r.byID[id]
		if res.OrderID == orderID && !res.Released {
			copied := res
			out = append(out, &copied)
		}
	}
	return out, nil
}

// Update writes a reservation back (release flag is the only mutable field).
func (r *ReservationRepository) Update(_ context.Context, res *inventory.StockReservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[res.ID]; !ok {
		return shared.NewNotFoundError("reservation", res.ID)
	}
	r.byID[res.ID] = *res
	return nil
}
