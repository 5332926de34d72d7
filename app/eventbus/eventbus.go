package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/Black-And-White-Club/tournament-results/app/observability/attr"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// Publisher is what services need from the bus.
type Publisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// EventBus publishes JSON domain events through a watermill publisher.
type EventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

var _ Publisher = (*EventBus)(nil)

// NewEventBus connects to NATS when natsURL is set and otherwise keeps events in process.
func NewEventBus(ctx context.Context, natsURL string, logger *slog.Logger) (*EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	if natsURL == "" {
		logger.InfoContext(ctx, "NATS URL not configured, using in-process event bus")
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermillLogger)
		return &EventBus{publisher: ch, subscriber: ch, logger: logger}, nil
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:       natsURL,
			Marshaler: &nats.NATSMarshaler{},
			NatsOptions: []nc.Option{
				nc.RetryOnFailedConnect(true),
				nc.Name("tournament-results"),
			},
		},
		watermillLogger,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", attr.Error(err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	return &EventBus{publisher: publisher, logger: logger}, nil
}

// NewInProcess returns a bus backed by a gochannel pub/sub, mostly for tests.
func NewInProcess(logger *slog.Logger) *EventBus {
	ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return &EventBus{publisher: ch, subscriber: ch, logger: logger}
}

// Publish marshals payload to JSON and publishes it on topic.
func (eb *EventBus) Publish(ctx context.Context, topic string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set("topic", topic)
	msg.SetContext(ctx)

	eb.logger.DebugContext(ctx, "Publishing message",
		slog.String("topic", topic),
		slog.String("message_id", msg.UUID),
	)

	if err := eb.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe is only available on the in-process bus.
func (eb *EventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	if eb.subscriber == nil {
		return nil, fmt.Errorf("subscribe is not supported on this bus")
	}
	return eb.subscriber.Subscribe(ctx, topic)
}

// Close closes the publisher (and subscriber when separate).
func (eb *EventBus) Close() error {
	if err := eb.publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publisher: %w", err)
	}
	return nil
}
