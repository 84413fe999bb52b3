package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatcherRunsEveryHandler(t *testing.T) {
	d := NewInMemoryDispatcher()
	var calls []string
	d.Subscribe(EventCheckinAdmitted, func(ctx context.Context, e Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventCheckinAdmitted, func(ctx context.Context, e Event) error {
		calls = append(calls, "second")
		return nil
	})
	d.Subscribe(EventCheckinRejected, func(ctx context.Context, e Event) error {
		calls = append(calls, "other")
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventCheckinAdmitted, "event-123", "reg-1", Actor{}, time.Now(), nil))
	assert.ErrorContains(t, err, "boom")
	assert.Equal(t, []string{"first", "second"}, calls)
}

func TestDispatcherRecoversHandlerPanic(t *testing.T) {
	d := NewInMemoryDispatcher()
	delivered := 0
	d.Subscribe(EventCheckinRejected, func(ctx context.Context, e Event) error {
		panic("nil station")
	})
	SubscribeAll(d, func(ctx context.Context, e Event) error {
		delivered++
		return nil
	}, EventCheckinRejected, EventCheckinAdmitted)

	err := d.Publish(context.Background(), Event{Type: EventCheckinRejected})
	assert.ErrorContains(t, err, "checkin_rejected handler panicked: nil station")
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventCheckinAdmitted}))
	assert.Equal(t, 2, delivered)
}

func TestDispatcherNoHandlers(t *testing.T) {
	d := NewInMemoryDispatcher()
	require.NoError(t, d.Publish(context.Background(), Event{Type: EventTokenIssued}))
}

func TestNewEvent(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 0, time.FixedZone("CET", 3600))
	e := NewEvent(EventTokenIssued, "event-123", "reg-1", Actor{Station: "gate-a"}, at, nil)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, time.UTC, e.Timestamp.Location())
	assert.True(t, e.Timestamp.Equal(at))
}
