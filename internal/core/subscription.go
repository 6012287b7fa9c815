package core

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// SubscriptionState: Opening -> Active -> Closed. Closed is terminal.
type SubscriptionState int32

const (
	Opening SubscriptionState = iota
	Active
	Closed
)

// Event is one push on a subscription stream. A non-nil Err is terminal:
// the stream closes right after it.
type Event[T any] struct {
	Value T
	Err   error
}

// ReadFunc produces the current value of the observed resource.
type ReadFunc[T any] func(ctx context.Context) (T, error)

// Subscription is a live view over one bus key: the current value on
// open, then a fresh read on every notification. The bus listener is
// detached on every exit path, including re-read failures.
type Subscription[T any] struct {
	key    string
	read   ReadFunc[T]
	out    chan Event[T]
	notify chan struct{}
	unsub  func()
	cancel context.CancelFunc
	state  atomic.Int32
}

// notifyBuffer bounds pending re-reads. A full queue coalesces: the
// pending re-read observes the newer committed state anyway.
const notifyBuffer = 16

// OpenSubscription reads the initial snapshot, registers the bus listener
// and starts the re-read pump. A failing initial read means the
// subscription never opens.
func OpenSubscription[T any](ctx context.Context, bus EventBus, key string, read ReadFunc[T]) (*Subscription[T], error) {
	runCtx, cancel := context.WithCancel(ctx)

	s := &Subscription[T]{
		key:    key,
		read:   read,
		out:    make(chan Event[T], 1),
		notify: make(chan struct{}, notifyBuffer),
		cancel: cancel,
	}
	s.state.Store(int32(Opening))

	initial, err := read(runCtx)
	if err != nil {
		cancel()
		return nil, err
	}

	// Register before emitting the snapshot so a mutation landing between
	// the read and the registration is not missed.
	s.unsub = bus.Subscribe(key, func(string) {
		select {
		case s.notify <- struct{}{}:
		default:
		}
	})

	s.out <- Event[T]{Value: initial}
	s.state.Store(int32(Active))
	log.Debug().Str("module", "core.subscription").Str("key", key).Msg("subscription active")

	go s.pump(runCtx)
	return s, nil
}

// Events is the stream handed to the transport. It closes after a
// terminal event or Close.
func (s *Subscription[T]) Events() <-chan Event[T] { return s.out }

func (s *Subscription[T]) State() SubscriptionState {
	return SubscriptionState(s.state.Load())
}

// Close detaches the bus listener before returning and stops the pump.
// Safe to call more than once and from any goroutine.
func (s *Subscription[T]) Close() {
	s.teardown()
	s.cancel()
}

func (s *Subscription[T]) teardown() {
	if s.state.Swap(int32(Closed)) == int32(Closed) {
		return
	}
	s.unsub()
	log.Debug().Str("module", "core.subscription").Str("key", s.key).Msg("subscription closed")
}

func (s *Subscription[T]) pump(ctx context.Context) {
	defer func() {
		s.teardown()
		close(s.out)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			v, err := s.read(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Error().Err(err).Str("module", "core.subscription").Str("key", s.key).Msg("re-read failed")
				select {
				case s.out <- Event[T]{Err: err}:
				case <-ctx.Done():
				}
				return
			}
			select {
			case s.out <- Event[T]{Value: v}:
			case <-ctx.Done():
				return
			}
		}
	}
}
