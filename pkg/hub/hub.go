// Package hub fans out onboarding events to every connected observer of a
// client. Delivery is best-effort: a slow observer loses events rather than
// blocking the engine, and there is no replay; late joiners catch up through
// the status query.
package hub

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aegisflow/aegis/pkg/eventbus"
	"github.com/aegisflow/aegis/pkg/events"
)

// DefaultBufferSize is the per-subscription event buffer. Once it is full,
// further events for that subscription are dropped.
const DefaultBufferSize = 64

// Subscription is one observer's handle on a client's event stream.
type Subscription struct {
	id       uint64
	clientID string
	ch       chan events.Envelope

	closeOnce sync.Once
}

// Events returns the channel on which envelopes are delivered. The channel is
// closed when the subscription is cancelled.
func (s *Subscription) Events() <-chan events.Envelope {
	return s.ch
}

// ClientID returns the client this subscription observes.
func (s *Subscription) ClientID() string {
	return s.clientID
}

// Hub routes events from the event bus to in-process subscribers, keyed by
// client id. The subscriber set is guarded against concurrent
// subscribe/unsubscribe/publish.
type Hub struct {
	logger *slog.Logger

	mu          sync.RWMutex
	subscribers map[string]map[uint64]*Subscription
	nextID      uint64
	bufferSize  int

	dropped atomic.Uint64
}

// NewHub creates a hub and registers its handlers on the event bus. Subscribe
// on the bus must be called afterwards by the owner of the bus lifecycle.
func NewHub(logger *slog.Logger, bus eventbus.EventBus) (*Hub, error) {
	h := &Hub{
		logger:      logger.With("module", "hub"),
		subscribers: make(map[string]map[uint64]*Subscription),
		bufferSize:  DefaultBufferSize,
	}

	for _, eventType := range []events.EventType{
		events.StepUpdateEvent,
		events.ApprovalRequestEvent,
		events.OnboardingCompleteEvent,
		events.ErrorEvent,
	} {
		err := bus.Handle(eventType, h.handleEvent)
		if err != nil {
			return nil, fmt.Errorf("failed to register hub handler for %s: %w", eventType, err)
		}
	}

	return h, nil
}

// Subscribe registers an observer for the given client. Events published
// before the subscription existed are not delivered.
func (h *Hub) Subscribe(clientID string) *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++

	sub := &Subscription{
		id:       h.nextID,
		clientID: clientID,
		ch:       make(chan events.Envelope, h.bufferSize),
	}

	if h.subscribers[clientID] == nil {
		h.subscribers[clientID] = make(map[uint64]*Subscription)
	}

	h.subscribers[clientID][sub.id] = sub

	h.logger.Debug("Observer subscribed", "client_id", clientID, "subscribers", len(h.subscribers[clientID]))

	return sub
}

// Unsubscribe removes an observer and closes its channel. Safe to call more
// than once and after the underlying connection already dropped.
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	h.mu.Lock()

	if subs, ok := h.subscribers[sub.clientID]; ok {
		delete(subs, sub.id)

		if len(subs) == 0 {
			delete(h.subscribers, sub.clientID)
		}
	}

	h.mu.Unlock()

	sub.closeOnce.Do(func() {
		close(sub.ch)
	})
}

// SubscriberCount returns the number of observers for a client.
func (h *Hub) SubscriberCount(clientID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[clientID])
}

// DroppedEvents returns how many events have been discarded for slow
// observers since the hub started.
func (h *Hub) DroppedEvents() uint64 {
	return h.dropped.Load()
}

// handleEvent dispatches one decoded bus event to every current subscriber of
// its client.
func (h *Hub) handleEvent(_ context.Context, event interface{}) error {
	envelope, ok := toEnvelope(event)
	if !ok {
		h.logger.Warn("Ignoring event of unknown shape", "event", fmt.Sprintf("%T", event))

		return nil
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers[envelope.ClientID] {
		select {
		case sub.ch <- envelope:
		default:
			// Observer is not keeping up; it will reconcile via the status query.
			h.dropped.Add(1)
			h.logger.Warn("Dropping event for slow observer",
				"client_id", envelope.ClientID, "event_type", envelope.Type)
		}
	}

	return nil
}

func toEnvelope(event interface{}) (events.Envelope, bool) {
	switch e := event.(type) {
	case *events.StepUpdate:
		return e.Envelope(), true
	case *events.ApprovalRequest:
		return e.Envelope(), true
	case *events.OnboardingComplete:
		return e.Envelope(), true
	case *events.Error:
		return e.Envelope(), true
	default:
		return events.Envelope{}, false
	}
}
