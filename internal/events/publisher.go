package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-kafka/v2/pkg/kafka"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// EventPublisher delivers domain events. Publish failures are reported but
// never roll back the operation that raised the event.
type EventPublisher interface {
	Publish(ctx context.Context, event *Event) error
	Close() error
}

// WatermillEventPublisher sends events as JSON messages on a single topic
type WatermillEventPublisher struct {
	publisher message.Publisher
	topic     string
	logger    *slog.Logger
}

type PublisherConfig struct {
	KafkaBrokers []string
	TopicName    string
	Logger       *slog.Logger
}

func NewWatermillEventPublisher(publisher message.Publisher, topic string, logger *slog.Logger) *WatermillEventPublisher {
	return &WatermillEventPublisher{publisher: publisher, topic: topic, logger: logger}
}

func NewKafkaEventPublisher(cfg PublisherConfig) (*WatermillEventPublisher, error) {
	publisher, err := kafka.NewPublisher(kafka.PublisherConfig{
		Brokers:   cfg.KafkaBrokers,
		Marshaler: kafka.DefaultMarshaler{},
	}, watermill.NewSlogLogger(cfg.Logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka publisher: %w", err)
	}
	return NewWatermillEventPublisher(publisher, cfg.TopicName, cfg.Logger), nil
}

// NewGoChannelEventPublisher publishes to an in-process watermill channel.
// Messages without a subscriber are dropped.
func NewGoChannelEventPublisher(topic string, logger *slog.Logger) *WatermillEventPublisher {
	pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 64}, watermill.NewSlogLogger(logger))
	return NewWatermillEventPublisher(pubSub, topic, logger)
}

func (p *WatermillEventPublisher) Publish(ctx context.Context, event *Event) error {
	msg, err := toMessage(event)
	if err != nil {
		return err
	}
	msg.SetContext(ctx)

	log := p.logger.With("event_id", event.ID, "event_type", event.Type)
	if err := p.publisher.Publish(p.topic, msg); err != nil {
		log.Error("Failed to publish event", "error", err)
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}
	log.Debug("Published event", "topic", p.topic)
	return nil
}

func (p *WatermillEventPublisher) Close() error {
	return p.publisher.Close()
}

// toMessage encodes event as the payload and copies its envelope into metadata
func toMessage(event *Event) (*message.Message, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s event: %w", event.Type, err)
	}
	msg := message.NewMessage(event.ID, payload)
	for key, value := range map[string]string{
		"event_type": string(event.Type),
		"source":     event.Source,
		"version":    event.Version,
		"timestamp":  event.Timestamp.Format(time.RFC3339),
	} {
		msg.Metadata.Set(key, value)
	}
	return msg, nil
}

// MockEventPublisher records events in memory. It backs disabled publishing
// and tests.
type MockEventPublisher struct {
	mu        sync.Mutex
	published []Event
	logger    *slog.Logger
}

func NewMockEventPublisher(logger *slog.Logger) *MockEventPublisher {
	return &MockEventPublisher{logger: logger}
}

func (m *MockEventPublisher) Publish(_ context.Context, event *Event) error {
	m.mu.Lock()
	m.published = append(m.published, *event)
	m.mu.Unlock()

	m.logger.Debug("Recorded event", "event_id", event.ID, "event_type", event.Type)
	return nil
}

func (m *MockEventPublisher) Close() error { return nil }

// GetPublishedEvents returns a copy of the recorded events, oldest first
func (m *MockEventPublisher) GetPublishedEvents() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.published...)
}

func (m *MockEventPublisher) ClearEvents() {
	m.mu.Lock()
	m.published = nil
	m.mu.Unlock()
}
