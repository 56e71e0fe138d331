package payment

import (
	"github.com/shopspring/decimal"

	"order_fulfillment/domain/event"
)

// PaymentProcessedPayload - the gateway accepted the charge.
type PaymentProcessedPayload struct {
	PaymentID     string          `json:"payment_id"`
	OrderID       string          `json:"order_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Method        Method          `json:"method"`
	TransactionID string          `json:"transaction_id"`
}

// PaymentFailedPayload - the gateway declined or was unreachable.
type PaymentFailedPayload struct {
	PaymentID string `json:"payment_id"`
	OrderID   string `json:"order_id"`
	Reason    string `json:"reason"`
}

// NewPaymentProcessed builds the success event. The order id is the
// aggregate id so the saga timeline stays queryable per order.
func NewPaymentProcessed(p *Payment) (event.Event, error) {
	return event.New(event.TypePaymentProcessed, p.OrderID, event.AggregatePayment, p.Version, PaymentProcessedPayload{
		PaymentID:     p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount.Amount,
		Currency:      p.Amount.Currency,
		Method:        p.Method,
		TransactionID: p.TransactionID,
	})
}

// NewPaymentFailed builds the failure event.
func NewPaymentFailed(p *Payment) (event.Event, error) {
	return event.New(event.TypePaymentFailed, p.OrderID, event.AggregatePayment, p.Version, PaymentFailedPayload{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Reason:    p.FailureReason,
	})
}
