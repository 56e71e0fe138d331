package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/shared"
)

func TestNewStockReservation(t *testing.T) {
	res, err := NewStockReservation("order-1", "sku-1", 3)
	require.NoError(t, err)
	assert.NotEmpty(t, res.ID)
	assert.Equal(t, "order-1", res.OrderID)
	assert.Equal(t, "SKU-1", res.SKU)
	assert.Equal(t, 3, res.Quantity)
	assert.False(t, res.Released)

	_, err = NewStockReservation("", "sku-1", 3)
	assert.True(t, shared.IsValidation(err))

	_, err = NewStockReservation("order-1", "sku-1", 0)
	assert.True(t, shared.IsValidation(err))
}

func TestReservationRelease(t *testing.T) {
	res, _ := NewStockReservation("order-1", "sku-1", 3)

	require.NoError(t, res.Release())
	assert.True(t, res.Released)

	err := res.Release()
	assert.True(t, shared.IsBusinessRuleViolation(err))
}

func TestReservationIsExpired(t *testing.T) {
	res, _ := NewStockReservation("order-1", "sku-1", 3)
	assert.False(t, res.IsExpired())

	past := time.Now().UTC().Add(-time.Minute)
	res.ExpiresAt = &past
	assert.True(t, res.IsExpired())

	future := time.Now().UTC().Add(time.Minute)
	res.ExpiresAt = &future
	assert.False(t, res.IsExpired())
}
