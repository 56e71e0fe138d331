package memory

import (
	"context"
	"sync"

	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
)

// PaymentRepository is the in-memory payment store.
type PaymentRepository struct {
	mu      sync.Mutex
	byID    map[string]payment.Payment
	byOrder map[string]string // order id -> payment id
}

// NewPaymentRepository creates an empty repository.
func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{
		byID:    make(map[string]payment.Payment),
		byOrder: make(map[string]string),
	}
}

// Save inserts a new payment.
func (r *PaymentRepository) Save(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[p.ID]; exists {
		return shared.NewBusinessRuleError("payment already exists: " + p.ID)
	}
	r.byID[p.ID] = *p
	r.byOrder[p.OrderID] = p.ID
	return nil
}

// FindByID returns a copy of the payment or a typed not-found error.
func (r *PaymentRepository) FindByID(_ context.Context, id string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, shared.NewNotFoundError("payment", id)
	}
	return &p, nil
}

// FindByOrderID returns the payment for an order.
func (r *PaymentRepository) FindByOrderID(_ context.Context, orderID string) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byOrder[orderID]
	if !ok {
		return nil, shared.NewNotFoundError("payment for order", orderID)
	}
	p := r.byID[id]
	return &p, nil
}

// Update writes the payment back iff the stored version still matches.
func (r *PaymentRepository) Update(_ context.Context, p *payment.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.byID[p.ID]
	if !ok {
		return shared.NewNotFoundError("payment", p.ID)
	}
	if stored.Version != p.Version {
		return shared.ErrConcurrentModification
	}
	p.Version++
	r.byID[p.ID] = *p
	return nil
}
