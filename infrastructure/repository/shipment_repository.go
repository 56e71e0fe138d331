package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"order_fulfillment/domain/shared"
	"order_fulfillment/domain/shipment"
)

// ShipmentRepository persists shipments in the shipments table.
type ShipmentRepository struct {
	db *sql.DB
}

// NewShipmentRepository creates a repository on an open connection pool.
func NewShipmentRepository(db *sql.DB) *ShipmentRepository {
	return &ShipmentRepository{db: db}
}

// Save inserts a new shipment.
func (r *ShipmentRepository) Save(ctx context.Context, s *shipment.Shipment) error {
	address, err := json.Marshal(s.ShippingAddress)
	if err != nil {
		return shared.NewInfrastructureError("shipment marshal", err)
	}
	query := `
		INSERT INTO shipments (id, order_id, tracking_number, shipping_address, status,
		                       dispatched_at, delivered_at, estimated_delivery_date,
		                       version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		s.ID, s.OrderID, s.TrackingNumber, address, s.Status,
		s.DispatchedAt, s.DeliveredAt, s.EstimatedDeliveryDate,
		s.Version, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return shared.NewInfrastructureError("shipment insert", err)
	}
	return nil
}

// FindByID loads one shipment.
func (r *ShipmentRepository) FindByID(ctx context.Context, id string) (*shipment.Shipment, error) {
	return r.findWhere(ctx, "id = $1", id)
}

// FindByOrderID loads the shipment for an order.
func (r *ShipmentRepository) FindByOrderID(ctx context.Context, orderID string) (*shipment.Shipment, error) {
	return r.findWhere(ctx, "order_id = $1", orderID)
}

func (r *ShipmentRepository) findWhere(ctx context.Context, where, key string) (*shipment.Shipment, error) {
	query := `
		SELECT id, order_id, tracking_number, shipping_address, status,
		       dispatched_at, delivered_at, estimated_delivery_date,
		       version, created_at, updated_at
		FROM shipments WHERE ` + where

	var s shipment.Shipment
	var address []byte
	var dispatchedAt, deliveredAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&s.ID, &s.OrderID, &s.TrackingNumber, &address, &s.Status,
		&dispatchedAt, &deliveredAt, &s.EstimatedDeliveryDate,
		&s.Version, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewNotFoundError("shipment", key)
	}
	if err != nil {
		return nil, shared.NewInfrastructureError("shipment query", err)
	}

	if err := json.Unmarshal(address, &s.ShippingAddress); err != nil {
		return nil, fmt.Errorf("failed to unmarshal address for shipment %s: %w", s.ID, err)
	}
	if dispatchedAt.Valid {
		t := dispatchedAt.Time
		s.DispatchedAt = &t
	}
	if deliveredAt.Valid {
		t := deliveredAt.Time
		s.DeliveredAt = &t
	}
	return &s, nil
}

// Update writes the shipment back iff the row still carries the loaded
// version.
func (r *ShipmentRepository) Update(ctx context.Context, s *shipment.Shipment) error {
	query := `
		UPDATE shipments
		SET status = $1, dispatched_at = $2, delivered_at = $3,
		    version = version + 1, updated_at = $4
		WHERE id = $5 AND version = $6
	`
	result, err := r.db.ExecContext(ctx, query,
		s.Status, s.DispatchedAt, s.DeliveredAt, s.UpdatedAt, s.ID, s.Version)
	if err != nil {
		return shared.NewInfrastructureError("shipment update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return shared.NewInfrastructureError("shipment update", err)
	}
	if affected == 0 {
		return shared.ErrConcurrentModification
	}
	s.Version++
	return nil
}
