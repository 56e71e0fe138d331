package shipment

import (
	"order_fulfillment/domain/event"
	"order_fulfillment/domain/shared"
)

// ShipmentCreatedPayload - a shipment exists for a paid order.
type ShipmentCreatedPayload struct {
	ShipmentID      string         `json:"shipment_id"`
	OrderID         string         `json:"order_id"`
	TrackingNumber  string         `json:"tracking_number"`
	ShippingAddress shared.Address `json:"shipping_address"`
}

// NewShipmentCreated builds the creation event, keyed by order id like the
// rest of the saga timeline.
func NewShipmentCreated(s *Shipment) (event.Event, error) {
	return event.New(event.TypeShipmentCreated, s.OrderID, event.AggregateShipment, s.Version, ShipmentCreatedPayload{
		ShipmentID:      s.ID,
		OrderID:         s.OrderID,
		TrackingNumber:  s.TrackingNumber,
		ShippingAddress: s.ShippingAddress,
	})
}
