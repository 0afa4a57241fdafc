package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	interfaces "github.com/sheikh-saqib/captable-simulator/internal/interfaces"
)

type Publisher struct {
	writer *kafka.Writer
}

// NewPublisher writes to brokers. The topic is chosen per message, so one
// publisher serves every event type.
func NewPublisher(brokers []string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.LeastBytes{},
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Publisher) Publish(ctx context.Context, topic string, event any) error {
	msg, err := newMessage(topic, event)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// keyed events are partitioned by their key so one simulation's events stay
// ordered
type keyed interface {
	EventKey() string
}

func newMessage(topic string, event any) (kafka.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("encode %T: %w", event, err)
	}
	msg := kafka.Message{
		Topic: topic,
		Value: data,
	}
	if k, ok := event.(keyed); ok {
		msg.Key = []byte(k.EventKey())
	}
	return msg, nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
