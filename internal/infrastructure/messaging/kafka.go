package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sangkips/storefront-admin/internal/domain/event"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes loyalty events to a kafka topic keyed by tenant, so
// events of one tenant stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaWriter builds a writer for the given brokers and topic
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
		BatchTimeout:           50 * time.Millisecond,
	}
}

// NewKafkaPublisher creates a publisher over a kafka writer
func NewKafkaPublisher(writer *kafka.Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: writer}
}

func (p *KafkaPublisher) Publish(ctx context.Context, events ...event.LoyaltyEvent) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(events))
	for _, e := range events {
		msg, err := toMessage(e)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write failed: %w", err)
	}
	return nil
}

// Close flushes pending messages
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func toMessage(e event.LoyaltyEvent) (kafka.Message, error) {
	value, err := json.Marshal(e)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal event failed: %w", err)
	}
	return kafka.Message{
		Key:   []byte(e.TenantID.String()),
		Value: value,
		Time:  e.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(e.Type)},
		},
	}, nil
}

// LogPublisher only logs events. It is used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, events ...event.LoyaltyEvent) error {
	for _, e := range events {
		log.Debug().
			Str("type", string(e.Type)).
			Str("tenant_id", e.TenantID.String()).
			Int64("points", e.Points).
			Msg("loyalty event")
	}
	return nil
}
