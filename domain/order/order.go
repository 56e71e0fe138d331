package order

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// Status represents the order state machine position.
type Status string

const (
	StatusPending       Status = "PENDING"
	StatusConfirmed     Status = "CONFIRMED"
	StatusRejected      Status = "REJECTED"
	StatusPaid          Status = "PAID"
	StatusPaymentFailed Status = "PAYMENT_FAILED"
	StatusShipped       Status = "SHIPPED"
	StatusCancelled     Status = "CANCELLED"
)

// DefaultCancellationReason is used when a customer cancels without one.
const DefaultCancellationReason = "cancelled by customer"

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusRejected, StatusPaymentFailed, StatusShipped, StatusCancelled:
		return true
	}
	return false
}

// Item is one order line. TotalPrice is quantity x unit price in the item's
// currency.
type Item struct {
	SKU       string       `json:"sku"`
	Quantity  int          `json:"quantity"`
	UnitPrice shared.Money `json:"unit_price"`
}

// TotalPrice computes the line total.
func (i Item) TotalPrice() shared.Money {
	total, _ := i.UnitPrice.Multiply(decimal.NewFromInt(int64(i.Quantity)))
	return total
}

// Order is the order aggregate.
type Order struct {
	ID                 string
	CustomerID         string
	Items              []Item
	ShippingAddress    shared.Address
	TotalAmount        shared.Money
	Status             Status
	PaymentID          string
	ShipmentID         string
	CancellationReason string
	RejectionReason    string
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewOrder validates the inputs, computes the total and starts in PENDING.
func NewOrder(customerID string, items []Item, shippingAddress shared.Address) (*Order, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return nil, shared.NewValidationError("customer_id", "is required")
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("items", "must not be empty")
	}
	for _, item := range items {
		if strings.TrimSpace(item.SKU) == "" {
			return nil, shared.NewValidationError("items.sku", "is required")
		}
		if item.Quantity < 1 {
			return nil, shared.NewValidationError("items.quantity", "must be at least 1")
		}
	}
	total, err := calculateTotal(items)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &Order{
		ID:              identifier.New(),
		CustomerID:      customerID,
		Items:           items,
		ShippingAddress: shippingAddress,
		TotalAmount:     total,
		Status:          StatusPending,
		Version:         1,
		CreatedAt:       now,
		UpdatedAt:       now,
	}, nil
}

// calculateTotal sums the line totals. All lines must share one currency.
func calculateTotal(items []Item) (shared.Money, error) {
	total := items[0].TotalPrice()
	for _, item := range items[1:] {
		sum, err := total.Add(item.TotalPrice())
		if err != nil {
			return shared.Money{}, shared.NewValidationError("items", "all items must share one currency")
		}
		total = sum
	}
	return total, nil
}

// Confirm moves PENDING -> CONFIRMED; invoked when inventory was reserved.
func (o *Order) Confirm() error {
	if o.Status != StatusPending {
		return shared.NewTransitionError("order", string(o.Status), "confirm")
	}
	o.Status = StatusConfirmed
	o.touch()
	return nil
}

// Reject moves PENDING -> REJECTED; invoked when reservation failed.
func (o *Order) Reject(reason string) error {
	if o.Status != StatusPending {
		return shared.NewTransitionError("order", string(o.Status), "reject")
	}
	o.Status = StatusRejected
	o.RejectionReason = reason
	o.touch()
	return nil
}

// MarkAsPaid moves CONFIRMED -> PAID and records the payment.
func (o *Order) MarkAsPaid(paymentID string) error {
	if o.Status != StatusConfirmed {
		return shared.NewTransitionError("order", string(o.Status), "mark as paid")
	}
	o.Status = StatusPaid
	o.PaymentID = paymentID
	o.touch()
	return nil
}

// MarkPaymentFailed moves CONFIRMED -> PAYMENT_FAILED.
func (o *Order) MarkPaymentFailed(reason string) error {
	if o.Status != StatusConfirmed {
		return shared.NewTransitionError("order", string(o.Status), "mark payment failed")
	}
	o.Status = StatusPaymentFailed
	o.RejectionReason = reason
	o.touch()
	return nil
}

// MarkAsShipped moves PAID -> SHIPPED and records the shipment.
func (o *Order) MarkAsShipped(shipmentID string) error {
	if o.Status != StatusPaid {
		return shared.NewTransitionError("order", string(o.Status), "mark as shipped")
	}
	o.Status = StatusShipped
	o.ShipmentID = shipmentID
	o.touch()
	return nil
}

// Cancel moves PENDING/CONFIRMED/PAID -> CANCELLED. Terminal states,
// including SHIPPED, refuse.
func (o *Order) Cancel(reason string) error {
	switch o.Status {
	case StatusPending, StatusConfirmed, StatusPaid:
	default:
		return shared.NewTransitionError("order", string(o.Status), "cancel")
	}
	if strings.TrimSpace(reason) == "" {
		reason = DefaultCancellationReason
	}
	o.Status = StatusCancelled
	o.CancellationReason = reason
	o.touch()
	return nil
}

func (o *Order) touch() {
	o.UpdatedAt = time.Now().UTC()
}
