// Package eventbus provides the publish side of operation lifecycle
// events. Publishing is best effort: a bus failure must never fail the
// deletion workflow itself.
package eventbus

import (
	"context"

	"github.com/contentools/reaper/pkg/events"
)

type Event interface {
	GetType() events.EventType
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventHandler func(ctx context.Context, event any) error

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
