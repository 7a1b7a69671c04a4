package eventbus

import (
	"context"

	"github.com/contentools/reaper/pkg/events"
	"github.com/google/uuid"
)

// NopEventBus discards everything. Used when no brokers are configured;
// the deletion workflow behaves identically with or without a bus.
type NopEventBus struct{}

func NewNopEventBus() *NopEventBus {
	return &NopEventBus{}
}

func (eb *NopEventBus) Publish(_ context.Context, _ string, _ Event) error {
	return nil
}

func (eb *NopEventBus) Handle(_ events.EventType, _ EventHandler) error {
	return nil
}

func (eb *NopEventBus) Subscribe(_ context.Context) error {
	return nil
}

func (eb *NopEventBus) Close() error {
	return nil
}

func (eb *NopEventBus) GenerateID() string {
	return uuid.New().String()
}
