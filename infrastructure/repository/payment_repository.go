package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
)

// PaymentRepository persists payments in the payments table. The method is a
// JSON column, the amount a numeric plus currency pair.
type PaymentRepository struct {
	db *sql.DB
}

// NewPaymentRepository creates a repository on an open connection pool.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Save inserts a new payment.
func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	method, err := json.Marshal(p.Method)
	if err != nil {
		return shared.NewInfrastructureError("payment marshal", err)
	}
	query := `
		INSERT INTO payments (id, order_id, amount, currency, payment_method, status,
		                      transaction_id, failure_reason, processing_attempts,
		                      version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OrderID, p.Amount.Amount.String(), p.Amount.Currency, method, p.Status,
		nullable(p.TransactionID), nullable(p.FailureReason), p.ProcessingAttempts,
		p.Version, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return shared.NewInfrastructureError("payment insert", err)
	}
	return nil
}

// FindByID loads one payment.
func (r *PaymentRepository) FindByID(ctx context.Context, id string) (*payment.Payment, error) {
	return r.findWhere(ctx, "id = $1", id)
}

// FindByOrderID loads the payment for an order.
func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*payment.Payment, error) {
	return r.findWhere(ctx, "order_id = $1", orderID)
}

func (r *PaymentRepository) findWhere(ctx context.Context, where, key string) (*payment.Payment, error) {
	query := `
		SELECT id, order_id, amount, currency, payment_method, status,
		       transaction_id, failure_reason, processing_attempts,
		       version, created_at, updated_at
		FROM payments WHERE ` + where

	var p payment.Payment
	var amount, currency string
	var method []byte
	var transactionID, failureReason sql.NullString
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&p.ID, &p.OrderID, &amount, &currency, &method, &p.Status,
		&transactionID, &failureReason, &p.ProcessingAttempts,
		&p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewNotFoundError("payment", key)
	}
	if err != nil {
		return nil, shared.NewInfrastructureError("payment query", err)
	}

	parsed, err := decimal.NewFromString(amount)
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount for payment %s: %w", p.ID, err)
	}
	p.Amount = shared.Money{Amount: parsed, Currency: currency}
	if err := json.Unmarshal(method, &p.Method); err != nil {
		return nil, fmt.Errorf("failed to unmarshal method for payment %s: %w", p.ID, err)
	}
	p.TransactionID = transactionID.String
	p.FailureReason = failureReason.String
	return &p, nil
}

// Update writes the payment back iff the row still carries the loaded
// version.
func (r *PaymentRepository) Update(ctx context.Context, p *payment.Payment) error {
	query := `
		UPDATE payments
		SET status = $1, transaction_id = $2, failure_reason = $3, processing_attempts = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Status, nullable(p.TransactionID), nullable(p.FailureReason), p.ProcessingAttempts,
		p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return shared.NewInfrastructureError("payment update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return shared.NewInfrastructureError("payment update", err)
	}
	if affected == 0 {
		return shared.ErrConcurrentModification
	}
	p.Version++
	return nil
}
