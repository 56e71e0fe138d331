package order

import (
	"github.com/shopspring/decimal"

	"order_fulfillment/domain/event"
	"order_fulfillment/domain/shared"
)

// PlacedItem is an order line as carried in the OrderPlaced payload.
type PlacedItem struct {
	SKU       string          `json:"sku"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Currency  string          `json:"currency"`
}

// OrderPlacedPayload starts the saga.
type OrderPlacedPayload struct {
	OrderID         string          `json:"order_id"`
	CustomerID      string          `json:"customer_id"`
	Items           []PlacedItem    `json:"items"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	Currency        string          `json:"currency"`
	ShippingAddress shared.Address  `json:"shipping_address"`
}

// OrderConfirmedPayload carries the total so the payment listener never has
// to read the order aggregate.
type OrderConfirmedPayload struct {
	OrderID     string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Currency    string          `json:"currency"`
}

// OrderRejectedPayload closes a saga that never reserved stock.
type OrderRejectedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// OrderPaidPayload carries the shipping address so the shipment listener
// never has to read the order aggregate.
type OrderPaidPayload struct {
	OrderID         string         `json:"order_id"`
	PaymentID       string         `json:"payment_id"`
	ShippingAddress shared.Address `json:"shipping_address"`
}

// OrderPaymentFailedPayload triggers stock release compensation.
type OrderPaymentFailedPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// OrderShippedPayload closes the happy path.
type OrderShippedPayload struct {
	OrderID    string `json:"order_id"`
	ShipmentID string `json:"shipment_id"`
}

// OrderCancelledPayload triggers stock release compensation.
type OrderCancelledPayload struct {
	OrderID string `json:"order_id"`
	Reason  string `json:"reason"`
}

// NewOrderPlaced builds the saga-starting event from the freshly placed order.
func NewOrderPlaced(o *Order) (event.Event, error) {
	items := make([]PlacedItem, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, PlacedItem{
			SKU:       item.SKU,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.Amount,
			Currency:  item.UnitPrice.Currency,
		})
	}
	return event.New(event.TypeOrderPlaced, o.ID, event.AggregateOrder, o.Version, OrderPlacedPayload{
		OrderID:         o.ID,
		CustomerID:      o.CustomerID,
		Items:           items,
		TotalAmount:     o.TotalAmount.Amount,
		Currency:        o.TotalAmount.Currency,
		ShippingAddress: o.ShippingAddress,
	})
}

// NewOrderConfirmed builds the event emitted after Confirm.
func NewOrderConfirmed(o *Order) (event.Event, error) {
	return event.New(event.TypeOrderConfirmed, o.ID, event.AggregateOrder, o.Version, OrderConfirmedPayload{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		TotalAmount: o.TotalAmount.Amount,
		Currency:    o.TotalAmount.Currency,
	})
}

// NewOrderRejected builds the event emitted after Reject.
func NewOrderRejected(o *Order) (event.Event, error) {
	return event.New(event.TypeOrderRejected, o.ID, event.AggregateOrder, o.Version, OrderRejectedPayload{
		OrderID: o.ID,
		Reason:  o.RejectionReason,
	})
}

// NewOrderPaid builds the event emitted after MarkAsPaid.
func NewOrderPaid(o *Order) (event.Event, error) {
	return event.New(event.TypeOrderPaid, o.ID, event.AggregateOrder, o.Version, OrderPaidPayload{
		OrderID:         o.ID,
		PaymentID:       o.PaymentID,
		ShippingAddress: o.ShippingAddress,
	})
}

// NewOrderPaymentFailed builds the event emitted after MarkPaymentFailed.
func NewOrderPaymentFailed(o *Order, reason string) (event.Event, error) {
	return event.New(event.TypeOrderPaymentFailed, o.ID, event.AggregateOrder, o.Version, OrderPaymentFailedPayload{
		OrderID: o.ID,
		Reason:  reason,
	})
}

// NewOrderShipped builds the event emitted after MarkAsShipped.
func NewOrderShipped(o *Order) (event.Event, error) {
	return event.New(event.TypeOrderShipped, o.ID, event.AggregateOrder, o.Version, OrderShippedPayload{
		OrderID:    o.ID,
		ShipmentID: o.ShipmentID,
	})
}

// NewOrderCancelled builds the event emitted after Cancel.
func NewOrderCancelled(o *Order) (event.Event, error) {
	return event.New(event.TypeOrderCancelled, o.ID, event.AggregateOrder, o.Version, OrderCancelledPayload{
		OrderID: o.ID,
		Reason:  o.CancellationReason,
	})
}
