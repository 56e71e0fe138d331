package repository

import (
	"context"
	"database/sql"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/shared"
)

// ReservationRepository persists stock reservations. Rows are append-mostly:
// the only update ever made is flipping released to true.
type ReservationRepository struct {
	db *sql.DB
}

// NewReservationRepository creates a repository on an open connection pool.
func NewReservationRepository(db *sql.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Save inserts a new reservation.
func (r *ReservationRepository) Save(ctx context.Context, res *inventory.StockReservation) error {
	query := `
		INSERT INTO stock_reservations (id, order_id, sku, quantity, created_at, expires_at, released)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, query,
		res.ID, res.OrderID, res.SKU, res.Quantity, res.CreatedAt, res.ExpiresAt, res.Released)
	if err != nil {
		return shared.NewInfrastructureError("reservation insert", err)
	}
	return nil
}

// FindUnreleasedByOrderID returns the order's live reservations in creation
// order. An empty result is how a second compensation run becomes a no-op.
func (r *ReservationRepository) FindUnreleasedByOrderID(ctx context.Context, orderID string) ([]*inventory.StockReservation, error) {
	query := `
		SELECT id, order_id, sku, quantity, created_at, expires_at, released
		FROM stock_reservations
		WHERE order_id = $1 AND released = false
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, shared.NewInfrastructureError("reservation query", err)
	}
	defer rows.Close()

	var out []*inventory.StockReservation
	for rows.Next() {
		var res inventory.StockReservation
		var expiresAt sql.NullTime
		if err := rows.Scan(&res.ID, &res.OrderID, &res.SKU, &res.Quantity, &res.CreatedAt, &expiresAt, &res.Released); err != nil {
			return nil, shared.NewInfrastructureError("reservation scan", err)
		}
		if expiresAt.Valid {
			t := expiresAt.Time
			res.ExpiresAt = &t
		}
		out = append(out, &res)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.NewInfrastructureError("reservation query", err)
	}
	return out, nil
}

// Update writes the released flag back.
func (r *ReservationRepository) Update(ctx context.Context, res *inventory.StockReservation) error {
	query := `UPDATE stock_reservations SET released = $1 WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, res.Released, res.ID)
	if err != nil {
		return shared.NewInfrastructureError("reservation update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return shared.NewInfrastructureError("reservation update", err)
	}
	if affected == 0 {
		return shared.NewNotFoundError("reservation", res.ID)
	}
	return nil
}
