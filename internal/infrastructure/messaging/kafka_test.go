package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &recordingWriter{}
	p := &KafkaPublisher{writer: w}

	tenantID := uuid.New()
	customerID := uuid.New()
	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), event.LoyaltyEvent{
		ID:         uuid.New(),
		Type:       event.PointsEarned,
		TenantID:   tenantID,
		CustomerID: &customerID,
		Points:     120,
		Balance:    450,
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, tenantID.String(), string(msg.Key))
	assert.Equal(t, at, msg.Time)
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "points.earned", string(msg.Headers[0].Value))

	var decoded event.LoyaltyEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, int64(120), decoded.Points)
	assert.Equal(t, customerID, *decoded.CustomerID)
}

func TestKafkaPublisher_Errors(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker down")}
	p := &KafkaPublisher{writer: w}

	assert.NoError(t, p.Publish(context.Background()))

	err := p.Publish(context.Background(), event.LoyaltyEvent{Type: event.PointsAdjusted})
	assert.ErrorContains(t, err, "broker down")
}

func TestLogPublisher(t *testing.T) {
	assert.NoError(t, LogPublisher{}.Publish(context.Background(), event.LoyaltyEvent{Type: event.EventClaimed}))
}
