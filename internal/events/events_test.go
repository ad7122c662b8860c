package events

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestBus(t *testing.T) EventBus {
	t.Helper()
	bus := NewEventBus(DefaultEventBusConfig(), zap.NewNop())
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestPublishDeliversToSubscriber(t *testing.T) {
	bus := newTestBus(t)

	var got []string
	handler := NewEventHandlerFunc("recorder", func(ctx context.Context, event Event) error {
		got = append(got, event.GetEventType())
		return nil
	})
	require.NoError(t, bus.Subscribe(TypePointsGranted, handler))

	err := bus.Publish(context.Background(), NewPointsGrantedEvent(1, 10, 10, "bonus"))
	require.NoError(t, err)
	assert.Equal(t, []string{TypePointsGranted}, got)
}

func TestPublishSkipsOtherEventTypes(t *testing.T) {
	bus := newTestBus(t)

	called := false
	handler := NewEventHandlerFunc("recorder", func(ctx context.Context, event Event) error {
		called = true
		return nil
	})
	require.NoError(t, bus.Subscribe(TypeUserDeleted, handler))

	require.NoError(t, bus.Publish(context.Background(), NewUserCreatedEvent(1, "ada@example.com", "Ada")))
	assert.False(t, called)
}

func TestPatternSubscriptionMatchesPrefix(t *testing.T) {
	bus := newTestBus(t)

	var got []string
	handler := NewEventHandlerFunc("recorder", func(ctx context.Context, event Event) error {
		got = append(got, event.GetEventType())
		return nil
	})
	require.NoError(t, bus.SubscribePattern("points.*", handler))

	require.NoError(t, bus.Publish(context.Background(), NewPointsGrantedEvent(1, 10, 10, "")))
	require.NoError(t, bus.Publish(context.Background(), NewPointsDeductedEvent(1, -5, 5, "")))
	require.NoError(t, bus.Publish(context.Background(), NewBadgeClearedEvent(1)))

	assert.Equal(t, []string{TypePointsGranted, TypePointsDeducted}, got)
}

func TestHandlerPanicDoesNotPropagate(t *testing.T) {
	bus := newTestBus(t)

	handler := NewEventHandlerFunc("angry", func(ctx context.Context, event Event) error {
		panic("boom")
	})
	require.NoError(t, bus.Subscribe(TypeUserCreated, handler))

	err := bus.Publish(context.Background(), NewUserCreatedEvent(1, "ada@example.com", "Ada"))
	assert.Error(t, err)
}

func TestHandlerErrorSurfacesFromPublish(t *testing.T) {
	bus := newTestBus(t)

	handler := NewEventHandlerFunc("failing", func(ctx context.Context, event Event) error {
		return fmt.Errorf("downstream unavailable")
	})
	require.NoError(t, bus.Subscribe(TypeUserCreated, handler))

	err := bus.Publish(context.Background(), NewUserCreatedEvent(1, "ada@example.com", "Ada"))
	assert.Error(t, err)
}

func TestGenerateEventIDIsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := GenerateEventID()
		assert.Contains(t, id, "evt_")
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestMatchesPattern(t *testing.T) {
	assert.True(t, matchesPattern("points.granted", "points.*"))
	assert.True(t, matchesPattern("anything", "*"))
	assert.False(t, matchesPattern("badge.assigned", "points.*"))
	assert.True(t, matchesPattern("quest.completed", "quest.completed"))
}
