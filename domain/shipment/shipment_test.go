package shipment

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"order_fulfillment/domain/shared"
)

func testAddress() shared.Address {
	a, _ := shared.NewAddress("1 Main St", "Springfield", "IL", "62701", "US")
	return a
}

func TestNewShipment(t *testing.T) {
	s, err := NewShipment("order-1", testAddress())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, s.Status)
	assert.True(t, strings.HasPrefix(s.TrackingNumber, "TRK-"))

	// Estimated delivery falls in the 3..6 day window.
	now := time.Now().UTC()
	assert.True(t, s.EstimatedDeliveryDate.After(now.AddDate(0, 0, 2)))
	assert.True(t, s.EstimatedDeliveryDate.Before(now.AddDate(0, 0, 7)))

	_, err = NewShipment("", testAddress())
	assert.True(t, shared.IsValidation(err))
}

func TestShipmentLifecycle(t *testing.T) {
	s, _ := NewShipment("order-1", testAddress())

	// Cannot deliver before dispatch.
	assert.True(t, shared.IsBusinessRuleViolation(s.MarkAsDelivered()))

	require.NoError(t, s.Dispatch())
	assert.Equal(t, StatusInTransit, s.Status)
	require.NotNil(t, s.DispatchedAt)

	assert.True(t, shared.IsBusinessRuleViolation(s.Dispatch()))

	require.NoError(t, s.MarkAsDelivered())
	assert.Equal(t, StatusDelivered, s.Status)
	require.NotNil(t, s.DeliveredAt)
}
