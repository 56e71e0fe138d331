package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/shared"
)

func testAddress() shared.Address {
	a, _ := shared.NewAddress("1 Main St", "Springfield", "IL", "62701", "US")
	return a
}

func testItems() []Item {
	return []Item{
		{SKU: "SKU-1", Quantity: 2, UnitPrice: shared.MustMoney(10, "USD")},
		{SKU: "SKU-2", Quantity: 1, UnitPrice: shared.MustMoney(5.50, "USD")},
	}
}

func TestNewOrder(t *testing.T) {
	o, err := NewOrder("cust-1", testItems(), testAddress())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.True(t, o.TotalAmount.Equals(shared.MustMoney(25.50, "USD")))
	assert.Equal(t, 1, o.Version)
}

func TestNewOrderValidation(t *testing.T) {
	_, err := NewOrder("  ", testItems(), testAddress())
	assert.True(t, shared.IsValidation(err))

	_, err = NewOrder("cust-1", nil, testAddress())
	assert.True(t, shared.IsValidation(err))

	_, err = NewOrder("cust-1", []Item{{SKU: "SKU-1", Quantity: 0, UnitPrice: shared.MustMoney(1, "USD")}}, testAddress())
	assert.True(t, shared.IsValidation(err))

	mixed := []Item{
		{SKU: "SKU-1", Quantity: 1, UnitPrice: shared.MustMoney(1, "USD")},
		{SKU: "SKU-2", Quantity: 1, UnitPrice: shared.MustMoney(1, "EUR")},
	}
	_, err = NewOrder("cust-1", mixed, testAddress())
	assert.True(t, shared.IsValidation(err))
}

func TestHappyPathTransitions(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())

	require.NoError(t, o.Confirm())
	assert.Equal(t, StatusConfirmed, o.Status)

	require.NoError(t, o.MarkAsPaid("pay-1"))
	assert.Equal(t, StatusPaid, o.Status)
	assert.Equal(t, "pay-1", o.PaymentID)

	require.NoError(t, o.MarkAsShipped("ship-1"))
	assert.Equal(t, StatusShipped, o.Status)
	assert.Equal(t, "ship-1", o.ShipmentID)
	assert.True(t, o.Status.IsTerminal())
}

func TestReject(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())

	require.NoError(t, o.Reject("insufficient stock"))
	assert.Equal(t, StatusRejected, o.Status)
	assert.Equal(t, "insufficient stock", o.RejectionReason)
	assert.True(t, o.Status.IsTerminal())

	// Rejected is terminal.
	assert.True(t, shared.IsBusinessRuleViolation(o.Confirm()))
}

func TestMarkPaymentFailed(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())
	require.NoError(t, o.Confirm())

	require.NoError(t, o.MarkPaymentFailed("declined"))
	assert.Equal(t, StatusPaymentFailed, o.Status)
	assert.True(t, o.Status.IsTerminal())

	assert.True(t, shared.IsBusinessRuleViolation(o.MarkAsPaid("pay-1")))
}

func TestIllegalTransitions(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())

	// Cannot pay or ship straight from PENDING.
	assert.True(t, shared.IsBusinessRuleViolation(o.MarkAsPaid("pay-1")))
	assert.True(t, shared.IsBusinessRuleViolation(o.MarkAsShipped("ship-1")))
	assert.True(t, shared.IsBusinessRuleViolation(o.MarkPaymentFailed("declined")))

	require.NoError(t, o.Confirm())
	assert.True(t, shared.IsBusinessRuleViolation(o.Confirm()))
	assert.True(t, shared.IsBusinessRuleViolation(o.Reject("late")))
}

func TestCancel(t *testing.T) {
	for _, advance := range []func(o *Order){
		func(o *Order) {}, // PENDING
		func(o *Order) { o.Confirm() },
		func(o *Order) { o.Confirm(); o.MarkAsPaid("pay-1") },
	} {
		o, _ := NewOrder("cust-1", testItems(), testAddress())
		advance(o)
		require.NoError(t, o.Cancel("changed my mind"))
		assert.Equal(t, StatusCancelled, o.Status)
		assert.Equal(t, "changed my mind", o.CancellationReason)
	}
}

func TestCancelDefaultReason(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())
	require.NoError(t, o.Cancel("  "))
	assert.Equal(t, DefaultCancellationReason, o.CancellationReason)
}

func TestCancelShippedOrderFails(t *testing.T) {
	o, _ := NewOrder("cust-1", testItems(), testAddress())
	o.Confirm()
	o.MarkAsPaid("pay-1")
	o.MarkAsShipped("ship-1")

	err := o.Cancel("too late")
	assert.True(t, shared.IsBusinessRuleViolation(err))
	assert.Equal(t, StatusShipped, o.Status)
}

func TestCancelTerminalStatesFail(t *testing.T) {
	rejected, _ := NewOrder("cust-1", testItems(), testAddress())
	rejected.Reject("no stock")
	assert.True(t, shared.IsBusinessRuleViolation(rejected.Cancel("x")))

	cancelled, _ := NewOrder("cust-1", testItems(), testAddress())
	cancelled.Cancel("first")
	assert.True(t, shared.IsBusinessRuleViolation(cancelled.Cancel("second")))
}

func TestItemTotalPrice(t *testing.T) {
	item := Item{SKU: "SKU-1", Quantity: 3, UnitPrice: shared.MustMoney(2.50, "USD")}
	assert.True(t, item.TotalPrice().Equals(shared.MustMoney(7.50, "USD")))
}
