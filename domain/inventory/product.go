package inventory

import (
	"fmt"
	"strings"
	"time"

	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// ProductStatus represents the lifecycle status of a product.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "ACTIVE"
	ProductStatusInactive ProductStatus = "INACTIVE"
)

// Product is the inventory aggregate: a stock ledger for one SKU.
//
// Invariants, always true after any successful operation:
//   - StockQuantity >= ReservedQuantity >= 0
//   - AvailableStock() >= 0
//   - ReservedQuantity only changes via ReserveStock/ReleaseStock
type Product struct {
	ID               string
	SKU              string
	Name             string
	StockQuantity    int
	ReservedQuantity int
	Status           ProductStatus
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewProduct validates and normalizes the SKU (trimmed, upper-cased,
// 1-50 chars) and starts the ledger ACTIVE with nothing reserved.
func NewProduct(sku, name string, stockQuantity int) (*Product, error) {
	normalized, err := NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewValidationError("name", "is required")
	}
	if stockQuantity < 0 {
		return nil, shared.NewValidationError("stock_quantity", "must not be negative")
	}
	now := time.Now().UTC()
	return &Product{
		ID:               identifier.New(),
		SKU:              normalized,
		Name:             strings.TrimSpace(name),
		StockQuantity:    stockQuantity,
		ReservedQuantity: 0,
		Status:           ProductStatusActive,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// NormalizeSKU trims and upper-cases a SKU and enforces the 1-50 length rule.
func NormalizeSKU(sku string) (string, error) {
	normalized := strings.ToUpper(strings.TrimSpace(sku))
	if len(normalized) < 1 || len(normalized) > 50 {
		return "", shared.NewValidationError("sku", "must be 1-50 characters")
	}
	return normalized, nil
}

// AvailableStock is the derived quantity open for new reservations.
func (p *Product) AvailableStock() int {
	return p.StockQuantity - p.ReservedQuantity
}

// CanReserve reports whether quantity units can be claimed right now. This
// pre-check is an optimization only; the persistence layer's version check
// is what guarantees the ledger under concurrent reservers.
func (p *Product) CanReserve(quantity int) bool {
	return p.Status == ProductStatusActive && quantity > 0 && p.AvailableStock() >= quantity
}

// ReserveStock claims quantity units of available stock.
func (p *Product) ReserveStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "must be positive")
	}
	if !p.CanReserve(quantity) {
		return shared.NewBusinessRuleError(fmt.Sprintf(
			"cannot reserve %d units of %s: %d available, status %s",
			quantity, p.SKU, p.AvailableStock(), p.Status))
	}
	p.ReservedQuantity += quantity
	p.touch()
	return nil
}

// ReleaseStock returns previously reserved units to the available pool.
func (p *Product) ReleaseStock(quantity int) error {
	if quantity <= 0 {
		return shared.NewValidationError("quantity", "must be positive")
	}
	if quantity > p.ReservedQuantity {
		return shared.NewBusinessRuleError(fmt.Sprintf(
			"cannot release %d units of %s: only %d reserved",
			quantity, p.SKU, p.ReservedQuantity))
	}
	p.ReservedQuantity -= quantity
	p.touch()
	return nil
}

// AdjustStock sets the total stock quantity. It may not drop below what is
// currently reserved.
func (p *Product) AdjustStock(newQuantity int) error {
	if newQuantity < 0 {
		return shared.NewValidationError("stock_quantity", "must not be negative")
	}
	if newQuantity < p.ReservedQuantity {
		return shared.NewBusinessRuleError(fmt.Sprintf(
			"cannot adjust stock of %s to %d: %d units reserved",
			p.SKU, newQuantity, p.ReservedQuantity))
	}
	p.StockQuantity = newQuantity
	p.touch()
	return nil
}

// Activate re-enables reservations.
func (p *Product) Activate() {
	p.Status = ProductStatusActive
	p.touch()
}

// Deactivate refuses new reservations. Existing reservations stay in place.
func (p *Product) Deactivate() {
	p.Status = ProductStatusInactive
	p.touch()
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
