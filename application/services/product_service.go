package services

import (
	"context"
	"log"

	"order_fulfillment/domain/inventory"
)

// ProductService exposes the synchronous product operations of the public
// surface.
type ProductService struct {
	products inventory.ProductRepository
}

// NewProductService wires the service.
func NewProductService(products inventory.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

// CreateProduct registers a new SKU with its initial stock.
func (s *ProductService) CreateProduct(ctx context.Context, sku, name string, stockQuantity int) (*inventory.Product, error) {
	p, err := inventory.NewProduct(sku, name, stockQuantity)
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		return nil, err
	}
	log.Printf("✅ Product created: %s (stock %d)", p.SKU, p.StockQuantity)
	return p, nil
}

// GetProduct returns the current ledger state for a SKU.
func (s *ProductService) GetProduct(ctx context.Context, sku string) (*inventory.Product, error) {
	normalized, err := inventory.NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}
	return s.products.FindBySKU(ctx, normalized)
}

// AdjustProductStock sets the total stock quantity, never below what is
// reserved. Runs under the ledger's version check so it serializes against
// concurrent reservations.
func (s *ProductService) AdjustProductStock(ctx context.Context, sku string, newQuantity int) (*inventory.Product, error) {
	normalized, err := inventory.NormalizeSKU(sku)
	if err != nil {
		return nil, err
	}

	var updated *inventory.Product
	err = withVersionRetry(ctx, func(ctx context.Context) error {
		p, err := s.products.FindBySKU(ctx, normalized)
		if err != nil {
			return err
		}
		if err := p.AdjustStock(newQuantity); err != nil {
			return err
		}
		if err := s.products.Update(ctx, p); err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Stock adjusted: %s -> %d", updated.SKU, updated.StockQuantity)
	return updated, nil
}
