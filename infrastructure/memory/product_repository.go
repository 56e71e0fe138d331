// Package memory provides mutex-guarded in-memory repositories with the
// same optimistic-version semantics as the Postgres implementations. They
// back the test suites and the no-database development mode.
package memory

import (
	"context"
	"sync"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/shared"
)

// ProductRepository is the in-memory stock ledger store.
type ProductRepository struct {
	mu    sync.Mutex
	bySKU map[string]inventory.Product
	byID  map[string]string // id -> sku
}

// NewProductRepository creates an empty repository.
func NewProductRepository() *ProductRepository {
	return &ProductRepository{
		bySKU: make(map[string]inventory.Product),
		byID:  make(map[string]string),
	}
}

// Save inserts a new product. The SKU must be unique.
func (r *ProductRepository) Save(_ context.Context, p *inventory.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySKU[p.SKU]; exists {
		return shared.NewBusinessRuleError("product already exists: " + p.SKU)
	}
	r.bySKU[p.SKU] = *p
	r.byID[p.ID] = p.SKU
	return nil
}

// FindByID returns a copy of the product or a typed not-found error.
func (r *ProductRepository) FindByID(_ context.Context, id string) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sku, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("product", id)
	}
	p := r.bySKU[sku]
	return &p, nil
}

// FindBySKU returns a copy of the product or a typed not-found error.
func (r *ProductRepository) FindBySKU(_ context.Context, sku string) (*inventory.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.bySKU[sku]
	if !ok {
		return nil, shared.NewNotFoundError("product", sku)
	}
	return &p, nil
}

// Update writes the product back iff the stored version still matches the
// version the caller loaded. On success the version advances.
func (r *ProductRepository) Update(_ context.Context, p *inventory.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.bySKU[p.SKU]
	if !ok {
		return shared.NewNotFoundError("product", p.SKU)
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrentModification
	}
	p.Version++
	r.bySKU[p.SKU] = *p
	return nil
}
