// Package repository contains the Postgres-backed aggregate repositories.
// Mapping between aggregates and rows is explicit (no reflection); writes
// use an optimistic version check so concurrent check+mutate sequences
// serialize per row.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"order_fulfillment/domain/inventory"
	"order_fulfillment/domain/shared"
)

// ProductRepository persists the stock ledger in the products table.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository creates a repository on an open connection pool.
func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Save inserts a new product. A duplicate SKU surfaces as a business rule
// violation.
func (r *ProductRepository) Save(ctx context.Context, p *inventory.Product) error {
	query := `
		INSERT INTO products (id, sku, name, stock_quantity, reserved_quantity, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.SKU, p.Name, p.StockQuantity, p.ReservedQuantity, p.Status, p.Version, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return shared.NewBusinessRuleError("product already exists: " + p.SKU)
		}
		return shared.NewInfrastructureError("product insert", err)
	}
	return nil
}

// FindByID loads a product by id.
func (r *ProductRepository) FindByID(ctx context.Context, id string) (*inventory.Product, error) {
	return r.findWhere(ctx, "id = $1", id)
}

// FindBySKU loads a product by its unique SKU.
func (r *ProductRepository) FindBySKU(ctx context.Context, sku string) (*inventory.Product, error) {
	return r.findWhere(ctx, "sku = $1", sku)
}

func (r *ProductRepository) findWhere(ctx context.Context, where, key string) (*inventory.Product, error) {
	query := `
		SELECT id, sku, name, stock_quantity, reserved_quantity, status, version, created_at, updated_at
		FROM products WHERE ` + where

	var p inventory.Product
	err := r.db.QueryRowContext(ctx, query, key).Scan(
		&p.ID, &p.SKU, &p.Name, &p.StockQuantity, &p.ReservedQuantity, &p.Status, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, shared.NewNotFoundError("product", key)
	}
	if err != nil {
		return nil, shared.NewInfrastructureError("product query", err)
	}
	// Re-check the ledger invariant on reconstitution.
	if p.ReservedQuantity < 0 || p.ReservedQuantity > p.StockQuantity {
		return nil, shared.NewInfrastructureError("product load",
			errors.New("corrupt stock ledger for "+p.SKU))
	}
	return &p, nil
}

// Update writes the product back iff the row still carries the version the
// aggregate was loaded at. Zero rows affected means a concurrent writer won;
// the caller reloads and retries.
func (r *ProductRepository) Update(ctx context.Context, p *inventory.Product) error {
	query := `
		UPDATE products
		SET name = $1, stock_quantity = $2, reserved_quantity = $3, status = $4,
		    version = version + 1, updated_at = $5
		WHERE id = $6 AND version = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		p.Name, p.StockQuantity, p.ReservedQuantity, p.Status, p.UpdatedAt, p.ID, p.Version)
	if err != nil {
		return shared.NewInfrastructureError("product update", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return shared.NewInfrastructureError("product update", err)
	}
	if affected == 0 {
		return shared.ErrConcurrentModification
	}
	p.Version++
	return nil
}

// isUniqueViolation checks for the PostgreSQL unique_violation error class.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}
