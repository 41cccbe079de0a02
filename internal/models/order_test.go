package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"AWAITING_PAYMENT", "PROCESSING", "DONE"} {
		parsed, err := ParseOrderStatus(s)
		require.NoError(t, err)
		assert.Equal(t, s, string(parsed))
	}

	_, err := ParseOrderStatus("paid")
	assert.Error(t, err)

	_, err = ParseOrderStatus("")
	assert.Error(t, err)
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusAwaitingPayment.CanTransition(OrderStatusProcessing))
	assert.True(t, OrderStatusProcessing.CanTransition(OrderStatusDone))

	// Linear lifecycle: no skips, no back-transitions, DONE terminal.
	assert.False(t, OrderStatusAwaitingPayment.CanTransition(OrderStatusDone))
	assert.False(t, OrderStatusProcessing.CanTransition(OrderStatusAwaitingPayment))
	assert.False(t, OrderStatusDone.CanTransition(OrderStatusProcessing))
	assert.False(t, OrderStatusDone.CanTransition(OrderStatusAwaitingPayment))
	assert.False(t, OrderStatusDone.CanTransition(OrderStatusDone))
}
