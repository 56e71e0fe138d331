package payment

import (
	"time"

	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// Status represents the payment state machine position.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSucceeded  Status = "SUCCEEDED"
	StatusFailed     Status = "FAILED"
)

// MaxRetryAttempts bounds how many times a failed payment may be retried.
const MaxRetryAttempts = 3

// Method describes how a payment is made. Stored as JSON alongside the
// payment row.
type Method struct {
	Type     string `json:"type"`
	LastFour string `json:"last_four,omitempty"`
}

// Payment is the payment aggregate:
// PENDING -> PROCESSING -> (SUCCEEDED | FAILED), FAILED -> PENDING via Retry
// while attempts remain.
type Payment struct {
	ID                 string
	OrderID            string
	Amount             shared.Money
	Method             Method
	Status             Status
	TransactionID      string
	FailureReason      string
	ProcessingAttempts int
	Version            int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewPayment starts a payment in PENDING.
func NewPayment(orderID string, amount shared.Money, method Method) (*Payment, error) {
	if orderID == "" {
		return nil, shared.NewValidationError("order_id", "is required")
	}
	if method.Type == "" {
		return nil, shared.NewValidationError("payment_method.type", "is required")
	}
	now := time.Now().UTC()
	return &Payment{
		ID:        identifier.New(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    StatusPending,
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// StartProcessing moves PENDING -> PROCESSING and counts the attempt.
func (p *Payment) StartProcessing() error {
	if p.Status != StatusPending {
		return shared.NewTransitionError("payment", string(p.Status), "start processing")
	}
	p.Status = StatusProcessing
	p.ProcessingAttempts++
	p.touch()
	return nil
}

// MarkAsSucceeded moves PROCESSING -> SUCCEEDED with the gateway reference.
func (p *Payment) MarkAsSucceeded(transactionID string) error {
	if p.Status != StatusProcessing {
		return shared.NewTransitionError("payment", string(p.Status), "mark as succeeded")
	}
	p.Status = StatusSucceeded
	p.TransactionID = transactionID
	p.touch()
	return nil
}

// MarkAsFailed moves PROCESSING -> FAILED with the gateway's reason.
func (p *Payment) MarkAsFailed(reason string) error {
	if p.Status != StatusProcessing {
		return shared.NewTransitionError("payment", string(p.Status), "mark as failed")
	}
	p.Status = StatusFailed
	p.FailureReason = reason
	p.touch()
	return nil
}

// Retry moves FAILED -> PENDING while attempts remain.
func (p *Payment) Retry() error {
	if p.Status != StatusFailed {
		return shared.NewTransitionError("payment", string(p.Status), "retry")
	}
	if p.ProcessingAttempts >= MaxRetryAttempts {
		return shared.NewBusinessRuleError("payment retry limit reached")
	}
	p.Status = StatusPending
	p.FailureReason = ""
	p.touch()
	return nil
}

func (p *Payment) touch() {
	p.UpdatedAt = time.Now().UTC()
}
