package config

import (
	"log/slog"
	"strings"

	"github.com/Vivek-Bhagat/TalentFlow-sub000/internal/events"
)

// EventConfig selects where assessment and response events go.
// Publisher is one of kafka, gochannel or mock.
type EventConfig struct {
	Enabled      bool
	Publisher    string
	KafkaBrokers string
	Topic        string
}

// GetKafkaBrokers splits the comma separated broker list, dropping blanks
func (c *EventConfig) GetKafkaBrokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// CreateEventPublisher builds the configured publisher. Disabled or unknown
// publishers fall back to the in-memory mock so callers never get nil.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled")
		return events.NewMockEventPublisher(logger), nil
	}

	logger = logger.With("publisher", c.Publisher, "topic", c.Topic)
	switch c.Publisher {
	case "kafka":
		logger.Info("Connecting event publisher", "brokers", c.KafkaBrokers)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.Topic,
			Logger:       logger,
		})
	case "gochannel":
		logger.Info("Publishing events in process")
		return events.NewGoChannelEventPublisher(c.Topic, logger), nil
	case "mock":
		return events.NewMockEventPublisher(logger), nil
	}

	logger.Warn("Unknown event publisher, events stay in memory")
	return events.NewMockEventPublisher(logger), nil
}
