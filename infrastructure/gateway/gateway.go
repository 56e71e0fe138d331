// Package gateway holds the reference PaymentGateway implementation: it
// approves charges with a configurable probability after a fixed delay.
// Tests inject deterministic gateways instead.
package gateway

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"order_fulfillment/domain/payment"
	"order_fulfillment/domain/shared"
	"order_fulfillment/pkg/identifier"
)

// StochasticGateway simulates an external payment provider.
type StochasticGateway struct {
	successRate float64
	delay       time.Duration

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a gateway that succeeds with probability successRate (clamped
// to [0,1]) after delay.
func New(successRate float64, delay time.Duration) *StochasticGateway {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &StochasticGateway{
		successRate: successRate,
		delay:       delay,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Process simulates one charge attempt.
func (g *StochasticGateway) Process(ctx context.Context, amount shared.Money, _ payment.Method) (payment.Result, error) {
	select {
	case <-time.After(g.delay):
	case <-ctx.Done():
		return payment.Result{}, ctx.Err()
	}

	g.mu.Lock()
	roll := g.rng.Float64()
	g.mu.Unlock()

	if roll < g.successRate {
		return payment.Result{Success: true, TransactionID: "txn-" + identifier.New()}, nil
	}
	return payment.Result{Success: false, Reason: "payment declined by provider"}, nil
}
