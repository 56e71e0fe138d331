package inventory

import "context"

// ProductRepository persists the stock ledger. Update performs an optimistic
// compare-and-set on Product.Version: it succeeds only when the stored row
// still carries the version the aggregate was loaded at, returning
// shared.ErrConcurrentModification otherwise. That CAS, not the domain
// pre-check, is what keeps reserved <= stock under concurrent reservers.
type ProductRepository interface {
	Save(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	Update(ctx context.Context, p *Product) error
}

// ReservationRepository persists stock reservations.
type ReservationRepository interface {
	Save(ctx context.Context, r *StockReservation) error
	FindUnreleasedByOrderID(ctx context.Context, orderID string) ([]*StockReservation, error)
	Update(ctx context.Context, r *StockReservation) error
}
