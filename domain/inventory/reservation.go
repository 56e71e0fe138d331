package inventory

import (
	"time"

	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// StockReservation is a recorded claim on part of a product's stock, tied to
// one order. A reservation may be released (terminal) but never modified in
// place. Keyed by order id so compensating handlers can find it after the
// order has moved on.
type StockReservation struct {
	ID        string
	OrderID   string
	SKU       string
	Quantity  int
	CreatedAt time.Time
	ExpiresAt *time.Time
	Released  bool
}

// NewStockReservation records a claim of quantity units of sku for orderID.
func NewStockReservation(orderID, sku string, quantity int) (*StockReservation, error) {
	if orderID == "" {
		return nil, shared.NewValidationError("order_id", "is required")
	}
	if quantity <= 0 {
		return nil, shared.NewValidationError("quantity", "must be positive")
	}
	normalized, err := NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	return &StockReservation{
		ID:        identifier.New(),
		OrderID:   orderID,
		SKU:       normalized,
		Quantity:  quantity,
		CreatedAt: time.Now().UTC(),
		Released:  false,
	}, nil
}

// IsExpired reports whether the reservation carries an expiry in the past.
// No sweeper consumes this yet; the field exists so one can be added without
// a schema change.
func (r *StockReservation) IsExpired() bool {
	return r.ExpiresAt != nil && r.ExpiresAt.Before(time.Now().UTC())
}

// Release marks the reservation released. Releasing twice is a violation;
// idempotence lives one level up, in the unreleased-reservations query.
func (r *StockReservation) Release() error {
	if r.Released {
		return shared.NewBusinessRuleError("reservation already released: " + r.ID)
	}
	r.Released = true
	return nil
}
