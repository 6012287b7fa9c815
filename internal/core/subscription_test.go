package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recvEvent[T any](t *testing.T, sub *Subscription[T]) Event[T] {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "stream closed unexpectedly")
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a push")
		return Event[T]{}
	}
}

func recvClosed[T any](t *testing.T, sub *Subscription[T]) {
	t.Helper()
	select {
	case _, ok := <-sub.Events():
		require.False(t, ok, "expected the stream to be closed")
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for the stream to close")
	}
}

func TestSubscriptionSnapshotThenPushes(t *testing.T) {
	bus := NewMemoryBus()
	var value atomic.Int64
	read := func(context.Context) (int64, error) { return value.Load(), nil }

	sub, err := OpenSubscription(context.Background(), bus, "room:1", read)
	require.NoError(t, err)
	defer sub.Close()

	assert.Equal(t, int64(0), recvEvent(t, sub).Value)
	assert.Equal(t, Active, sub.State())

	// One push per sequential mutation, each reflecting current state.
	for i := int64(1); i <= 3; i++ {
		value.Store(i)
		bus.Publish("room:1", "1")
		assert.Equal(t, i, recvEvent(t, sub).Value)
	}
}

func TestSubscriptionCloseDetachesListener(t *testing.T) {
	bus := NewMemoryBus()
	read := func(context.Context) (int, error) { return 42, nil }

	sub, err := OpenSubscription(context.Background(), bus, "room:1", read)
	require.NoError(t, err)
	require.Equal(t, 1, bus.ListenerCount("room:1"))

	recvEvent(t, sub)
	sub.Close()
	assert.Zero(t, bus.ListenerCount("room:1"))
	assert.Equal(t, Closed, sub.State())
	recvClosed(t, sub)

	// Closed is terminal, Close is idempotent.
	sub.Close()
	assert.Equal(t, Closed, sub.State())
}

func TestSubscriptionReadErrorIsTerminal(t *testing.T) {
	bus := NewMemoryBus()
	readErr := errors.New("store gone")
	var fail atomic.Bool
	read := func(context.Context) (int, error) {
		if fail.Load() {
			return 0, readErr
		}
		return 1, nil
	}

	sub, err := OpenSubscription(context.Background(), bus, "room:1", read)
	require.NoError(t, err)
	recvEvent(t, sub)

	fail.Store(true)
	bus.Publish("room:1", "1")

	ev := recvEvent(t, sub)
	assert.ErrorIs(t, ev.Err, readErr)
	recvClosed(t, sub)
	assert.Zero(t, bus.ListenerCount("room:1"))
	assert.Equal(t, Closed, sub.State())
}

func TestSubscriptionFailingInitialReadNeverOpens(t *testing.T) {
	bus := NewMemoryBus()
	readErr := errors.New("bad id")
	read := func(context.Context) (int, error) { return 0, readErr }

	_, err := OpenSubscription(context.Background(), bus, "room:1", read)
	assert.ErrorIs(t, err, readErr)
	assert.Zero(t, bus.ListenerCount("room:1"))
}

func TestSubscriptionParentContextCancel(t *testing.T) {
	bus := NewMemoryBus()
	read := func(context.Context) (int, error) { return 1, nil }

	ctx, cancel := context.WithCancel(context.Background())
	sub, err := OpenSubscription(ctx, bus, "room:1", read)
	require.NoError(t, err)
	recvEvent(t, sub)

	cancel()
	recvClosed(t, sub)
	assert.Zero(t, bus.ListenerCount("room:1"))
}
