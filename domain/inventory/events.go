package inventory

import "order_fulfillment/domain/event"

// RequestedItem is one order line as seen by the reservation service.
type RequestedItem struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// ReservedLine is one persisted reservation, echoed in events so
// compensating handlers and auditors see exactly what was claimed.
type ReservedLine struct {
	ReservationID string `json:"reservation_id"`
	SKU           string `json:"sku"`
	Quantity      int    `json:"quantity"`
}

// InventoryReservedPayload - all lines of an order were reserved.
type InventoryReservedPayload struct {
	OrderID      string         `json:"order_id"`
	Reservations []ReservedLine `json:"reservations"`
}

// InventoryReservationFailedPayload - at least one line could not be
// reserved; nothing was mutated.
type InventoryReservationFailedPayload struct {
	OrderID        string          `json:"order_id"`
	Reason         string          `json:"reason"`
	RequestedItems []RequestedItem `json:"requested_items"`
}

// InventoryReleasedPayload - previously reserved stock was returned.
type InventoryReleasedPayload struct {
	OrderID      string         `json:"order_id"`
	Reservations []ReservedLine `json:"reservations"`
}

// NewInventoryReserved builds the success event for an order's reservation.
func NewInventoryReserved(orderID string, lines []ReservedLine) (event.Event, error) {
	return event.New(event.TypeInventoryReserved, orderID, event.AggregateInventory, 1,
		InventoryReservedPayload{OrderID: orderID, Reservations: lines})
}

// NewInventoryReservationFailed builds the abort event.
func NewInventoryReservationFailed(orderID, reason string, requested []RequestedItem) (event.Event, error) {
	return event.New(event.TypeInventoryReservationFailed, orderID, event.AggregateInventory, 1,
		InventoryReservationFailedPayload{OrderID: orderID, Reason: reason, RequestedItems: requested})
}

// NewInventoryReleased builds the compensation event.
func NewInventoryReleased(orderID string, lines []ReservedLine) (event.Event, error) {
	return event.New(event.TypeInventoryReleased, orderID, event.AggregateInventory, 1,
		InventoryReleasedPayload{OrderID: orderID, Reservations: lines})
}
