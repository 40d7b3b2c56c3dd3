package enum

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusJSON(t *testing.T) {
	data, err := json.Marshal(OrderStatusRefunded)
	require.NoError(t, err)
	assert.Equal(t, `"refunded"`, string(data))

	var s OrderStatus
	require.NoError(t, json.Unmarshal([]byte(`"completed"`), &s))
	assert.Equal(t, OrderStatusCompleted, s)

	require.NoError(t, json.Unmarshal([]byte(`2`), &s))
	assert.Equal(t, OrderStatusCancelled, s)

	assert.Error(t, json.Unmarshal([]byte(`"shipped"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`9`), &s))
}

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCompleted))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusCompleted.CanTransitionTo(OrderStatusRefunded))
	assert.False(t, OrderStatusCompleted.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusCompleted))
	assert.False(t, OrderStatusRefunded.CanTransitionTo(OrderStatusPending))
}

func TestPaymentMethod(t *testing.T) {
	m, ok := ParsePaymentMethod("bank_transfer")
	require.True(t, ok)
	assert.Equal(t, PaymentMethodBankTransfer, m)
	assert.False(t, m.RequiresCredentials())
	assert.True(t, PaymentMethodMpesa.RequiresCredentials())

	_, ok = ParsePaymentMethod("cheque")
	assert.False(t, ok)
	assert.Len(t, PaymentMethods(), 6)
}

func TestScan(t *testing.T) {
	var s CampaignStatus
	require.NoError(t, s.Scan(int64(1)))
	assert.Equal(t, CampaignStatusActive, s)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, CampaignStatusDraft, s)

	v, err := EventTypeClick.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, "draft", CampaignStatus(42).String())
}
