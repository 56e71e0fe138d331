package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/shared"
)

func testMethod() Method {
	return Method{Type: "CARD", LastFour: "4242"}
}

func TestNewPayment(t *testing.T) {
	p, err := NewPayment("order-1", shared.MustMoney(25.50, "USD"), testMethod())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, p.Status)
	assert.Equal(t, 0, p.ProcessingAttempts)

	_, err = NewPayment("", shared.MustMoney(1, "USD"), testMethod())
	assert.True(t, shared.IsValidation(err))

	_, err = NewPayment("order-1", shared.MustMoney(1, "USD"), Method{})
	assert.True(t, shared.IsValidation(err))
}

func TestPaymentSuccess(t *testing.T) {
	p, _ := NewPayment("order-1", shared.MustMoney(10, "USD"), testMethod())

	require.NoError(t, p.StartProcessing())
	assert.Equal(t, StatusProcessing, p.Status)
	assert.Equal(t, 1, p.ProcessingAttempts)

	require.NoError(t, p.MarkAsSucceeded("txn-1"))
	assert.Equal(t, StatusSucceeded, p.Status)
	assert.Equal(t, "txn-1", p.TransactionID)

	// Succeeded is terminal.
	assert.True(t, shared.IsBusinessRuleViolation(p.StartProcessing()))
	assert.True(t, shared.IsBusinessRuleViolation(p.Retry()))
}

func TestPaymentFailure(t *testing.T) {
	p, _ := NewPayment("order-1", shared.MustMoney(10, "USD"), testMethod())
	require.NoError(t, p.StartProcessing())

	require.NoError(t, p.MarkAsFailed("declined"))
	assert.Equal(t, StatusFailed, p.Status)
	assert.Equal(t, "declined", p.FailureReason)
}

func TestPaymentIllegalTransitions(t *testing.T) {
	p, _ := NewPayment("order-1", shared.MustMoney(10, "USD"), testMethod())

	// Not processing yet.
	assert.True(t, shared.IsBusinessRuleViolation(p.MarkAsSucceeded("txn-1")))
	assert.True(t, shared.IsBusinessRuleViolation(p.MarkAsFailed("declined")))
	assert.True(t, shared.IsBusinessRuleViolation(p.Retry()))
}

func TestPaymentRetryBounds(t *testing.T) {
	p, _ := NewPayment("order-1", shared.MustMoney(10, "USD"), testMethod())

	for attempt := 1; attempt <= MaxRetryAttempts; attempt++ {
		require.NoError(t, p.StartProcessing())
		require.NoError(t, p.MarkAsFailed("declined"))
		assert.Equal(t, attempt, p.ProcessingAttempts)

		err := p.Retry()
		if attempt < MaxRetryAttempts {
			require.NoError(t, err)
			assert.Equal(t, StatusPending, p.Status)
			assert.Empty(t, p.FailureReason)
		} else {
			assert.True(t, shared.IsBusinessRuleViolation(err))
			assert.Equal(t, StatusFailed, p.Status)
		}
	}
}
