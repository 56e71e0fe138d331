package payment

import (
	"context"

	"order_fulfillment/domain/shared"
)

// Result is the gateway's verdict on one charge attempt. A declined charge
// is a Result with Success=false, not a Go error; errors are reserved for
// infrastructure failures reaching the gateway at all.
type Result struct {
	Success       bool
	TransactionID string
	Reason        string
}

// Gateway is the external payment capability. The reference implementation
// succeeds with configurable probability after a fixed delay; tests inject
// deterministic variants.
type Gateway interface {
	Process(ctx context.Context, amount shared.Money, method Method) (Result, error)
}
