package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Handler processes one decoded event.
type Handler func(ctx context.Context, event LedgerEvent) error

type EventConsumer struct {
	client   pulsar.Client
	consumer pulsar.Consumer
}

// NewEventConsumer initializes the Pulsar client and consumer.
func NewEventConsumer(pulsarURL, topic, subscription string) (*EventConsumer, error) {
	client, err := pulsar.NewClient(pulsar.ClientOptions{URL: pulsarURL})
	if err != nil {
		return nil, fmt.Errorf("could not create Pulsar client: %w", err)
	}

	consumer, err := client.Subscribe(pulsar.ConsumerOptions{
		Topic:            topic,
		SubscriptionName: subscription,
		Type:             pulsar.Shared,
		DLQ: &pulsar.DLQPolicy{
			MaxDeliveries:   3,
			DeadLetterTopic: topic + "-dlq",
		},
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("could not create Pulsar consumer: %w", err)
	}

	return &EventConsumer{client: client, consumer: consumer}, nil
}

// ReceiveMessage retrieves a message from Pulsar.
func (c *EventConsumer) ReceiveMessage(ctx context.Context) (pulsar.Message, error) {
	msg, err := c.consumer.Receive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to receive message: %w", err)
	}
	return msg, nil
}

// Run feeds every received event to handler until ctx is cancelled. Messages
// are acked when handled and nacked otherwise. Undecodable messages are acked
// and dropped since redelivery cannot fix them.
func (c *EventConsumer) Run(ctx context.Context, handler Handler) error {
	logger := zerolog.Ctx(ctx)

	for {
		msg, err := c.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return err
		}

		event, err := DecodeEvent(msg.Payload())
		if err != nil {
			logger.Error().Err(err).Str("message_id", msg.ID().String()).Msg("dropping malformed event")
			c.Ack(msg)
			continue
		}

		if err := handler(ctx, event); err != nil {
			logger.Error().Err(err).Str("event_id", event.ID).Str("type", event.Type).Msg("failed to handle event")
			c.Nack(msg)
			continue
		}
		c.Ack(msg)
	}
}

// Ack acknowledges a message.
func (c *EventConsumer) Ack(msg pulsar.Message) {
	if err := c.consumer.Ack(msg); err != nil {
		log.Warn().Err(err).Msg("failed to ack message")
	}
}

// Nack negatively acknowledges a message.
func (c *EventConsumer) Nack(msg pulsar.Message) {
	c.consumer.Nack(msg)
}

// Close cleans up the Pulsar consumer and client.
func (c *EventConsumer) Close() {
	c.consumer.Close()
	c.client.Close()
}
