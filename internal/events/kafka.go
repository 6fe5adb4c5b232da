// Package events publishes committed sales and purchases to Kafka so that
// downstream consumers (reorder planning, accounting sync) can follow the
// stock ledger without polling the database.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"pharmacy-erp/internal/core"

	"github.com/segmentio/kafka-go"
)

const publishTimeout = 5 * time.Second

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one message per committed order. Messages are keyed
// by tenant so a tenant's orders stay on one partition, in commit order.
type KafkaPublisher struct {
	writer messageWriter
}

var _ core.Publisher = (*KafkaPublisher)(nil)

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
	}
	log.Printf("kafka publisher configured for %v (topic %s)", brokers, topic)
	return &KafkaPublisher{writer: w}
}

// NewPublisher returns a Kafka publisher when brokers are configured and a
// no-op publisher otherwise.
func NewPublisher(brokers []string, topic string) core.Publisher {
	if len(brokers) == 0 {
		return core.NopPublisher{}
	}
	return NewKafkaPublisher(brokers, topic)
}

// PublishOrder sends ev. The order is already committed, so the write uses a
// context detached from the caller's cancellation with its own timeout.
func (p *KafkaPublisher) PublishOrder(ctx context.Context, ev core.OrderEvent) error {
	msg, err := encode(ev)
	if err != nil {
		return err
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.writer.WriteMessages(wctx, msg); err != nil {
		return fmt.Errorf("failed to write %s event for %s: %w", ev.Type, ev.OrderID, err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func encode(ev core.OrderEvent) (kafka.Message, error) {
	value, err := json.Marshal(ev)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("failed to encode %s event: %w", ev.Type, err)
	}
	return kafka.Message{
		Key:   []byte(ev.TenantID),
		Value: value,
		Time:  ev.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "order-id", Value: []byte(ev.OrderID)},
		},
	}, nil
}
