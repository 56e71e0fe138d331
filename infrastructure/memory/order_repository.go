package memory

import (
	"context"
	"sort"
	"sync"

	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
)

// OrderRepository is the in-memory order store.
type OrderRepository struct {
	mu   sync.Mutex
	byID map[string]order.Order
}

// NewOrderRepository creates an empty repository.
func NewOrderRepository() *OrderRepository {
	return &OrderRepository{byID: make(map[string]order.Order)}
}

// Save inserts a new order.
func (r *OrderRepository) Save(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[o.ID]; exists {
		return shared.NewBusinessRuleError("order already exists: " + o.ID)
	}
	r.byID[o.ID] = cloneOrder(*o)
	return nil
}

// FindByID returns a copy of the order or a typed not-found error.
func (r *OrderRepository) FindByID(_ context.Context, id string) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("order", id)
	}
	copied := cloneOrder(o)
	return &copied, nil
}

// List returns matching orders, most recent first.
func (r *OrderRepository) List(_ context.Context, f order.Filter) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.byID {
		if f.CustomerID != "" && o.CustomerID != f.CustomerID {
			continue
		}
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		copied := cloneOrder(o)
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Update writes the order back iff the stored version still matches.
func (r *OrderRepository) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[o.ID]
	if !ok {
		return shared.NewNotFoundError("order", o.ID)
	}
	if stored.Version != o.Version {
		return shared.ErrConcurrentModification
	}
	o.Version++
	r.byID[o.ID] = cloneOrder(*o)
	return nil
}

// cloneOrder deep-copies the items slice so callers never alias stored state.
func cloneOrder(o order.Order) order.Order {
	items := make([]order.Item, len(o.Items))
	copy(items, o.Items)
	o.Items = items
	return o
}
