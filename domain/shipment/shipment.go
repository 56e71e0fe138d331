package shipment

import (
	"math/rand"
	"time"

	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// Status represents the shipment state machine position.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Shipment is the shipment aggregate. The core saga only needs creation;
// Dispatch and MarkAsDelivered complete the lifecycle for carrier callbacks.
type Shipment struct {
	ID                    string
	OrderID               string
	TrackingNumber        string
	ShippingAddress       shared.Address
	Status                Status
	DispatchedAt          *time.Time
	DeliveredAt           *time.Time
	EstimatedDeliveryDate time.Time
	Version               int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// NewShipment generates a tracking number and estimates delivery at
// now + 3..6 days.
func NewShipment(orderID string, address shared.Address) (*Shipment, error) {
	if orderID == "" {
		return nil, shared.NewValidationError("order_id", "is required")
	}
	now := time.Now().UTC()
	return &Shipment{
		ID:                    identifier.New(),
		OrderID:               orderID,
		TrackingNumber:        identifier.TrackingNumber(),
		ShippingAddress:       address,
		Status:                StatusPending,
		EstimatedDeliveryDate: now.AddDate(0, 0, 3+rand.Intn(4)),
		Version:               1,
		CreatedAt:             now,
		UpdatedAt:             now,
	}, nil
}

// Dispatch moves PENDING -> IN_TRANSIT.
func (s *Shipment) Dispatch() error {
	if s.Status != StatusPending {
		return shared.NewTransitionError("shipment", string(s.Status), "dispatch")
	}
	now := time.Now().UTC()
	s.Status = StatusInTransit
	s.DispatchedAt = &now
	s.touch()
	return nil
}

// MarkAsDelivered moves IN_TRANSIT -> DELIVERED.
func (s *Shipment) MarkAsDelivered() error {
	if s.Status != StatusInTransit {
		return shared.NewTransitionError("shipment", string(s.Status), "mark as delivered")
	}
	now := time.Now().UTC()
	s.Status = StatusDelivered
	s.DeliveredAt = &now
	s.touch()
	return nil
}

func (s *Shipment) touch() {
	s.UpdatedAt = time.Now().UTC()
}
