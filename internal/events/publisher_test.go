package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	raw, err := Encode(TypePaymentSettled, 7, map[string]interface{}{"deposit_id": "d-1", "amount": 5000})
	require.NoError(t, err)

	var env struct {
		Type      string                 `json:"type"`
		CreatorID uint                   `json:"creator_id"`
		Data      map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(raw, &env))
	assert.Equal(t, TypePaymentSettled, env.Type)
	assert.Equal(t, uint(7), env.CreatorID)
	assert.Equal(t, "d-1", env.Data["deposit_id"])
}

func TestNewKafkaPublisher_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaPublisher(nil, "supportly.payments")
	assert.Error(t, err)

	p, err := NewKafkaPublisher([]string{"localhost:9092"}, "supportly.payments")
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}

func TestLogPublisher(t *testing.T) {
	var p Publisher = LogPublisher{}
	assert.NoError(t, p.Publish(context.Background(), TypeWithdrawalUpdated, 1, nil))
}
