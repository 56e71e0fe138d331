package event

// Saga event types. Every order-scoped event carries the order id as its
// aggregate id, so the event store query by aggregate returns the full saga
// timeline for one order.
const (
	TypeOrderPlaced                = "OrderPlaced"
	TypeInventoryReserved          = "InventoryReserved"
	TypeInventoryReservationFailed = "InventoryReservationFailed"
	TypeOrderConfirmed             = "OrderConfirmed"
	TypeOrderRejected              = "OrderRejected"
	TypePaymentProcessed           = "PaymentProcessed"
	TypePaymentFailed              = "PaymentFailed"
	TypeOrderPaid                  = "OrderPaid"
	TypeOrderPaymentFailed         = "OrderPaymentFailed"
	TypeShipmentCreated            = "ShipmentCreated"
	TypeOrderShipped               = "OrderShipped"
	TypeOrderCancelled             = "OrderCancelled"
	TypeInventoryReleased          = "InventoryReleased"
)

// Aggregate type labels used on emitted events.
const (
	AggregateOrder     = "Order"
	AggregateInventory = "Inventory"
	AggregatePayment   = "Payment"
	AggregateShipment  = "Shipment"
)

// AllTypes lists every saga event type, in causal order of the happy path
// followed by the failure and compensation events.
func AllTypes() []string {
	return []string{
		TypeOrderPlaced,
		TypeInventoryReserved,
		TypeInventoryReservationFailed,
		TypeOrderConfirmed,
		TypeOrderRejected,
		TypePaymentProcessed,
		TypePaymentFailed,
		TypeOrderPaid,
		TypeOrderPaymentFailed,
		TypeShipmentCreated,
		TypeOrderShipped,
		TypeOrderCancelled,
		TypeInventoryReleased,
	}
}
