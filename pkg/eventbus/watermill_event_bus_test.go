package eventbus_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/operion-studio/pkg/channels/gochannel"
	"github.com/dukex/operion-studio/pkg/eventbus"
	"github.com/dukex/operion-studio/pkg/events"
	"github.com/dukex/operion-studio/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatermillEventBus_PublishSubscribe(t *testing.T) {
	t.Parallel()

	pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(slog.Default()))
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)
	t.Cleanup(func() { _ = bus.Close() })

	received := make(chan *events.ExecutionFinished, 1)

	require.NoError(t, bus.Handle(events.ExecutionFinishedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.ExecutionFinished)

		return nil
	}))
	require.NoError(t, bus.Subscribe(t.Context()))

	// Events without a handler are acknowledged and skipped.
	require.NoError(t, bus.Publish(t.Context(), "42", events.ExecutionSubmitted{
		BaseEvent:   events.NewBaseEvent(events.ExecutionSubmittedEvent, 42),
		ExecutionID: 7,
	}))
	require.NoError(t, bus.Publish(t.Context(), "42", events.ExecutionFinished{
		BaseEvent:   events.NewBaseEvent(events.ExecutionFinishedEvent, 42),
		ExecutionID: 7,
		Status:      models.ExecutionStatusCompleted,
	}))

	select {
	case event := <-received:
		assert.Equal(t, int64(7), event.ExecutionID)
		assert.Equal(t, int64(42), event.WorkflowID)
		assert.Equal(t, models.ExecutionStatusCompleted, event.Status)
	case <-time.After(2 * time.Second):
		t.Fatal("event not delivered")
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()

	assert.NoError(t, eventbus.Discard.Publish(t.Context(), "k", events.WorkflowDeleted{}))
}
