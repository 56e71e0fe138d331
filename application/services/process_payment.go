package services

import (
	"context"
	"log"

	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
	"order_fulfillment/infrastructure/eventbus"
)

// defaultMethod stands in until orders carry a payment method of their own.
var defaultMethod = payment.Method{Type: "CARD", LastFour: "4242"}

// ProcessPaymentService charges a confirmed order through the gateway.
// Invoked on OrderConfirmed.
type ProcessPaymentService struct {
	payments payment.Repository
	gateway  payment.Gateway
	bus      *eventbus.Bus
}

// NewProcessPaymentService wires the service.
func NewProcessPaymentService(payments payment.Repository, gateway payment.Gateway, bus *eventbus.Bus) *ProcessPaymentService {
	return &ProcessPaymentService{payments: payments, gateway: gateway, bus: bus}
}

// Process charges the order's total and emits PaymentProcessed or
// PaymentFailed. A duplicate invocation for an order that already holds a
// payment is a no-op, so replayed events cannot double-charge.
func (s *ProcessPaymentService) Process(ctx context.Context, orderID string, amount shared.Money) error {
	if existing, err := s.payments.FindByOrderID(ctx, orderID); err == nil {
		log.Printf("📨 Payment for order %s already exists (%s), skipping", orderID, existing.Status)
		return nil
	} else if !shared.IsNotFound(err) {
		return err
	}

	p, err := payment.NewPayment(orderID, amount, defaultMethod)
	if err != nil {
		return err
	}
	if err := p.StartProcessing(); err != nil {
		return err
	}
	if err := s.payments.Save(ctx, p); err != nil {
		return err
	}

	log.Printf("📨 Charging %s for order %s", amount, orderID)

	result, gwErr := s.gateway.Process(ctx, p.Amount, p.Method)

	if gwErr != nil {
		return s.settleFailure(ctx, p, "gateway unreachable: "+gwErr.Error())
	}
	if !result.Success {
		return s.settleFailure(ctx, p, result.Reason)
	}

	if err := p.MarkAsSucceeded(result.TransactionID); err != nil {
		return err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}

	evt, err := payment.NewPaymentProcessed(p)
	if err != nil {
		return err
	}
	log.Printf("✅ Payment %s succeeded for order %s (txn %s)", p.ID, orderID, p.TransactionID)
	s.bus.Publish(ctx, evt)
	return nil
}

func (s *ProcessPaymentService) settleFailure(ctx context.Context, p *payment.Payment, reason string) error {
	if err := p.MarkAsFailed(reason); err != nil {
		return err
	}
	if err := s.payments.Update(ctx, p); err != nil {
		return err
	}

	evt, err := payment.NewPaymentFailed(p)
	if err != nil {
		return err
	}
	log.Printf("❌ Payment %s failed for order %s: %s", p.ID, p.OrderID, reason)
	s.bus.Publish(ctx, evt)
	return nil
}

// GetPayment returns the payment for an order, if any.
func (s *ProcessPaymentService) GetPayment(ctx context.Context, orderID string) (*payment.Payment, error) {
	return s.payments.FindByOrderID(ctx, orderID)
}
