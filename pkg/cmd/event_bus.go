package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/contentools/reaper/pkg/channels/kafka"
	"github.com/contentools/reaper/pkg/eventbus"
)

// NewEventBus creates the operation event bus. With no brokers
// configured events are discarded.
func NewEventBus(brokers string, logger *slog.Logger) (eventbus.EventBus, error) {
	if brokers == "" {
		logger.Info("No kafka brokers configured, operation events disabled")

		return eventbus.NewNopEventBus(), nil
	}

	pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), brokers, "reaper")
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka pub/sub: %w", err)
	}

	return eventbus.NewWatermillEventBus(pub, sub), nil
}
