package eventbus_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisflow/aegis/pkg/channels/gochannel"
	"github.com/aegisflow/aegis/pkg/eventbus"
	"github.com/aegisflow/aegis/pkg/events"
)

func setupBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	return eventbus.NewWatermillEventBus(pub, sub)
}

func TestWatermillEventBus_PublishAndHandle(t *testing.T) {
	t.Parallel()

	bus := setupBus(t)

	received := make(chan interface{}, 1)

	require.NoError(t, bus.Handle(events.StepUpdateEvent, func(_ context.Context, event interface{}) error {
		received <- event

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, bus.Subscribe(ctx))

	sent := events.StepUpdate{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.StepUpdateEvent,
			ClientID:  "c1",
			Timestamp: time.Now().UTC(),
		},
		StepID:             "draft_contract",
		StepStatus:         "completed",
		ProgressPercentage: 25,
	}

	require.NoError(t, bus.Publish(ctx, "c1", sent))

	select {
	case event := <-received:
		update, ok := event.(*events.StepUpdate)
		require.True(t, ok)
		assert.Equal(t, "c1", update.ClientID)
		assert.Equal(t, "draft_contract", update.StepID)
		assert.Equal(t, 25, update.ProgressPercentage)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestWatermillEventBus_UnhandledTypesAreAcked(t *testing.T) {
	t.Parallel()

	bus := setupBus(t)

	received := make(chan interface{}, 2)

	// Only error events are handled; others should pass through silently.
	require.NoError(t, bus.Handle(events.ErrorEvent, func(_ context.Context, event interface{}) error {
		received <- event

		return nil
	}))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, bus.Subscribe(ctx))

	base := events.BaseEvent{
		ID:        bus.GenerateID(),
		ClientID:  "c1",
		Timestamp: time.Now().UTC(),
	}

	require.NoError(t, bus.Publish(ctx, "c1", events.StepUpdate{BaseEvent: base, StepID: "s1"}))
	require.NoError(t, bus.Publish(ctx, "c1", events.Error{BaseEvent: base, Message: "boom"}))

	select {
	case event := <-received:
		errEvent, ok := event.(*events.Error)
		require.True(t, ok)
		assert.Equal(t, "boom", errEvent.Message)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for error event")
	}

	assert.Empty(t, received)
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := setupBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}
