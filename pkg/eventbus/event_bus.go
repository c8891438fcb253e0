// Package eventbus provides event-driven communication infrastructure for
// onboarding orchestration.
package eventbus

import (
	"context"

	"github.com/aegisflow/aegis/pkg/events"
)

type Event interface {
	GetType() events.EventType
	GetClientID() string
}

type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

type EventSubscriber interface {
	Handle(eventType events.EventType, handler EventHandler) error
	Subscribe(ctx context.Context) error
}

type EventHandler func(ctx context.Context, event interface{}) error

type EventBus interface {
	EventPublisher
	EventSubscriber
	Close() error
	GenerateID() string
}
