package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"order_fulfillment/domain/order"
	"order_fulfillment/domain/shared"
)

// OrderRepository persists orders in the orders table. Items and the
// shipping address are JSON columns mapped by hand.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository creates a repository on an open connection pool.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// orderRow is the explicit row shape for the orders table.
type orderRow struct {
	items              []byte
	address            []byte
	totalAmount        []byte
	paymentID          sql.NullString
	shipmentID         sql.NullString
	cancellationReason sql.NullString
	rejectionReason    sql.NullString
}

// Save inserts a new order.
func (r *OrderRepository) Save(ctx context.Context, o *order.Order) error {
	items, address, total, err := marshalOrder(o)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO orders (id, customer_id, items, total_amount, shipping_address, status,
		                    payment_id, shipment_id, cancellation_reason, rejection_reason,
		                    version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = r.db.ExecContext(ctx, query,
		o.ID, o.CustomerID, items, total, address, o.Status,
		nullable(o.PaymentID), nullable(o.ShipmentID),
		nullable(o.CancellationReason), nullable(o.RejectionReason),
		o.Version, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return shared.NewInfrastructureError("order insert", err)
	}
	return nil
}

// FindByID loads one order.
func (r *OrderRepository) FindByID(ctx context.Context, id string) (*order.Order, error) {
	query := selectOrderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewNotFoundError("order", id)
	}
	if err != nil {
		return nil, shared.NewInfrastructureError("order query", err)
	}
	return o, nil
}

// List returns matching orders, most recent first.
func (r *OrderRepository) List(ctx context.Context, f order.Filter) ([]*order.Order, error) {
	query := selectOrderColumns + ` FROM orders WHERE 1=1`
	var args []any
	if f.CustomerID != "" {
		args = append(args, f.CustomerID)
		query += fmt.Sprintf(" AND customer_id = $%d", len(args))
	}
	if f.Status != "" {
		args = append(args, f.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, shared.NewInfrastructureError("order query", err)
	}
	defer rows.Close()

	var out []*order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, shared.NewInfrastructureError("order scan", err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewInfrastructureError("order query", err)
	}
	return out, nil
}

// Update writes the order back iff the row still carries the loaded version.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	items, address, total, err := marshalOrder(o)
	if err != nil {
		return err
	}
	query := `
		UPDATE orders
		SET items = $1, total_amount = $2, shipping_address = $3, status = $4,
		    payment_id = $5, shipment_id = $6, cancellation_reason = $7, rejection_reason = $8,
		    version = version + 1, updated_at = $9
		WHERE id = $10 AND version = $11
	`
	result, err := r.db.ExecContext(ctx, query,
		items, total, address, o.Status,
		nullable(o.PaymentID), nullable(o.ShipmentID),
		nullable(o.CancellationReason), nullable(o.RejectionReason),
		o.UpdatedAt, o.ID, o.Version)
	if err != nil {
		return shared.NewInfrastructureError("order update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return shared.NewInfrastructureError("order update", err)
	}
	if affected == 0 {
		return shared.ErrConcurrentModification
	}
	o.Version++
	return nil
}

const selectOrderColumns = `
	SELECT id, customer_id, items, total_amount, shipping_address, status,
	       payment_id, shipment_id, cancellation_reason, rejection_reason,
	       version, created_at, updated_at`

func marshalOrder(o *order.Order) (items, address, total []byte, err error) {
	if items, err = json.Marshal(o.Items); err != nil {
		return nil, nil, nil, shared.NewInfrastructureError("order marshal", err)
	}
	if address, err = json.Marshal(o.ShippingAddress); err != nil {
		return nil, nil, nil, shared.NewInfrastructureError("order marshal", err)
	}
	if total, err = json.Marshal(o.TotalAmount); err != nil {
		return nil, nil, nil, shared.NewInfrastructureError("order marshal", err)
	}
	return items, address, total, nil
}

func scanOrder(row rowScanner) (*order.Order, error) {
	var o order.Order
	var raw orderRow
	err := row.Scan(&o.ID, &o.CustomerID, &raw.items, &raw.totalAmount, &raw.address, &o.Status,
		&raw.paymentID, &raw.shipmentID, &raw.cancellationReason, &raw.rejectionReason,
		&o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw.items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to unmarshal items for order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(raw.totalAmount, &o.TotalAmount); err != nil {
		return nil, fmt.Errorf("failed to unmarshal total for order %s: %w", o.ID, err)
	}
	if err := json.Unmarshal(raw.address, &o.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address for order %s: %w", o.ID, err)
	}
	o.PaymentID = raw.paymentID.String
	o.ShipmentID = raw.shipmentID.String
	o.CancellationReason = raw.cancellationReason.String
	o.RejectionReason = raw.rejectionReason.String
	return &o, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
