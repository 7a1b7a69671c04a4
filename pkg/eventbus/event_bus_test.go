package eventbus_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/contentools/reaper/pkg/channels/gochannel"
	"github.com/contentools/reaper/pkg/eventbus"
	"github.com/contentools/reaper/pkg/events"
	"github.com/contentools/reaper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBus(t *testing.T) *eventbus.WatermillEventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateTestChannel(watermill.NewSlogLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		_ = bus.Close()
	})

	return bus
}

func TestPublishAndSubscribeRoundTrip(t *testing.T) {
	bus := newTestBus(t)

	received := make(chan *events.OperationFound, 1)

	err := bus.Handle(events.OperationFoundEvent, func(_ context.Context, event any) error {
		found, ok := event.(*events.OperationFound)
		require.True(t, ok)

		received <- found

		return nil
	})
	require.NoError(t, err)

	require.NoError(t, bus.Subscribe(t.Context()))

	published := events.OperationFound{
		BaseEvent: events.BaseEvent{
			ID:         bus.GenerateID(),
			Type:       events.OperationFoundEvent,
			Timestamp:  time.Now().UTC(),
			ActingUser: "admin",
		},
		Criteria: models.OperationSettings{ContentType: "article", Taxonomy: "category"},
		Found:    12,
	}

	require.NoError(t, bus.Publish(t.Context(), "admin", published))

	select {
	case found := <-received:
		assert.Equal(t, published.ID, found.ID)
		assert.Equal(t, 12, found.Found)
		assert.Equal(t, "article", found.Criteria.ContentType)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event delivery")
	}
}

func TestEventsWithoutHandlerAreAcked(t *testing.T) {
	bus := newTestBus(t)

	require.NoError(t, bus.Subscribe(t.Context()))

	event := events.BatchProcessed{
		BaseEvent: events.BaseEvent{
			ID:        bus.GenerateID(),
			Type:      events.BatchProcessedEvent,
			Timestamp: time.Now().UTC(),
		},
		Attempted: 5,
		Deleted:   5,
	}

	// Publishing with no handler registered must not block or error.
	require.NoError(t, bus.Publish(t.Context(), "admin", event))
}

func TestNopEventBusDiscardsEverything(t *testing.T) {
	bus := eventbus.NewNopEventBus()

	require.NoError(t, bus.Publish(t.Context(), "admin", events.TermsCleaned{}))
	require.NoError(t, bus.Subscribe(t.Context()))
	require.NoError(t, bus.Close())
	assert.NotEmpty(t, bus.GenerateID())
}
