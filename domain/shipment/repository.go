package shipment

import "context"

// Repository persists shipments. Update is an optimistic compare-and-set on
// Shipment.Version.
type Repository interface {
	Save(ctx context.Context, s *Shipment) error
	FindByID(ctx context.Context, id string) (*Shipment, error)
	FindByOrderID(ctx context.Context, orderID string) (*Shipment, error)
	Update(ctx context.Context, s *Shipment) error
}
