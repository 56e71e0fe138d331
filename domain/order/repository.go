package order

import "context"

// Filter narrows List results. Zero values mean "any".
type Filter struct {
	CustomerID string
	Status     Status
}

// Repository persists orders. Update is an optimistic compare-and-set on
// Order.Version (shared.ErrConcurrentModification on conflict). List returns
// most-recent first.
type Repository interface {
	Save(ctx context.Context, o *Order) error
	FindByID(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]*Order, error)
	Update(ctx context.Context, o *Order) error
}
