package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"
)

// Event types consumed by the external email/SMS service.
const (
	TypePaymentSettled    = "payment.settled"
	TypePaymentFailed     = "payment.failed"
	TypeWithdrawalUpdated = "withdrawal.updated"
	TypeWishlistExpired   = "wishlist.expired"
)

type Envelope struct {
	Type       string      `json:"type"`
	CreatorID  uint        `json:"creator_id"`
	OccurredAt time.Time   `json:"occurred_at"`
	Data       interface{} `json:"data"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, creatorID uint, data interface{}) error
	Close() error
}

type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
}

func NewKafkaPublisher(brokers []string, topic string) (*KafkaPublisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka publisher requires at least one broker")
	}
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			RequiredAcks: kafka.RequireAll,
			Balancer:     &kafka.Hash{},
		},
		topic: topic,
	}, nil
}

// Publish keys messages by creator so one creator's events stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, eventType string, creatorID uint, data interface{}) error {
	payload, err := Encode(eventType, creatorID, data)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic:   p.topic,
		Key:     []byte(fmt.Sprintf("creator-%d", creatorID)),
		Value:   payload,
		Time:    time.Now().UTC(),
		Headers: []kafka.Header{{Key: "event_type", Value: []byte(eventType)}},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func Encode(eventType string, creatorID uint, data interface{}) ([]byte, error) {
	return json.Marshal(Envelope{Type: eventType, CreatorID: creatorID, OccurredAt: time.Now().UTC(), Data: data})
}

// LogPublisher writes events to the log; used when no brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, eventType string, creatorID uint, data interface{}) error {
	payload, err := Encode(eventType, creatorID, data)
	if err != nil {
		return err
	}
	log.Printf("[EVENT] %s", payload)
	return nil
}

func (LogPublisher) Close() error { return nil }
