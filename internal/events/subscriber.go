package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Handler processes one decoded event. Returning an error nacks the message.
type Handler func(ctx context.Context, event *Event) error

type SubscriberConfig struct {
	KafkaBrokers  []string
	ConsumerGroup string
	Logger        *slog.Logger
}

// NewKafkaSubscriber creates a consumer-group subscriber for the event topic.
func NewKafkaSubscriber(config SubscriberConfig) (message.Subscriber, error) {
	sub, err := kafka.NewSubscriber(kafka.SubscriberConfig{
		Brokers:               config.KafkaBrokers,
		Unmarshaler:           kafka.DefaultMarshaler{},
		OverwriteSaramaConfig: kafka.DefaultSaramaSubscriberConfig(),
		ConsumerGroup:         config.ConsumerGroup,
	}, watermill.NewSlogLogger(config.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka subscriber: %w", err)
	}
	return sub, nil
}

// Consumer reads events from a topic and passes them to a Handler.
type Consumer struct {
	subscriber message.Subscriber
	topic      string
	logger     *slog.Logger
}

func NewConsumer(subscriber message.Subscriber, topic string, logger *slog.Logger) *Consumer {
	return &Consumer{subscriber: subscriber, topic: topic, logger: logger}
}

// Run blocks until ctx is done or the subscription closes. Messages that
// cannot be decoded are acked and dropped.
func (c *Consumer) Run(ctx context.Context, handle Handler) error {
	messages, err := c.subscriber.Subscribe(ctx, c.topic)
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", c.topic, err)
	}

	for msg := range messages {
		event, err := DecodeEvent(msg.Payload)
		if err != nil {
			c.logger.Warn("Dropping malformed event", "message_uuid", msg.UUID, "error", err)
			msg.Ack()
			continue
		}
		if err := handle(msg.Context(), event); err != nil {
			c.logger.Error("Event handler failed", "event_id", event.ID, "event_type", event.Type, "error", err)
			msg.Nack()
			continue
		}
		msg.Ack()
	}
	return ctx.Err()
}

// DecodeEvent parses an envelope and decodes Data into the struct that
// matches its type. Unknown types keep the raw JSON.
func DecodeEvent(payload []byte) (*Event, error) {
	var env struct {
		Event
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if env.ID == "" || env.Type == "" {
		return nil, fmt.Errorf("event is missing id or type")
	}

	event := env.Event
	switch event.Type {
	case EventSessionStarted:
		var data SessionStartedEvent
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", event.Type, err)
		}
		event.Data = data
	case EventScreeningCompleted:
		var data ScreeningCompletedEvent
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, fmt.Errorf("failed to decode %s data: %w", event.Type, err)
		}
		event.Data = data
	default:
		event.Data = env.Data
	}
	return &event, nil
}
