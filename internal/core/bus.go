package core

import (
	"sync"

	"github.com/dorukozerr/QuizMeSenpai-api/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// Handler receives the payload of a publish. It runs on the publisher's
// goroutine and must not block.
type Handler func(payload string)

// EventBus is a keyed publish/subscribe fanout. Delivery is synchronous
// to the listeners registered at publish time; there is no persistence
// and no replay. The interface exists so a multi-instance deployment can
// swap in a broker without touching the room logic.
type EventBus interface {
	Publish(key, payload string)
	// Subscribe registers a handler for key and returns its removal func.
	// The removal func is idempotent and safe to call from inside the
	// handler itself.
	Subscribe(key string, h Handler) (unsubscribe func())
}

// RoomTopic keys room-state notifications.
func RoomTopic(id domain.RoomID) string { return "room:" + string(id) }

// MessagesTopic keys per-room message-feed notifications.
func MessagesTopic(id domain.RoomID) string { return "messages:" + string(id) }

// MemoryBus is the in-process EventBus. The listener map is the only
// shared mutable state in the process; publish iterates over a snapshot
// so a listener may remove itself (or any other) mid-delivery.
type MemoryBus struct {
	mu        sync.RWMutex
	listeners map[string]map[string]Handler
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{listeners: make(map[string]map[string]Handler)}
}

func (b *MemoryBus) Subscribe(key string, h Handler) func() {
	token := uuid.NewString()

	b.mu.Lock()
	set, ok := b.listeners[key]
	if !ok {
		set = make(map[string]Handler)
		b.listeners[key] = set
	}
	set[token] = h
	b.mu.Unlock()

	log.Debug().Str("module", "core.bus").Str("key", key).Str("token", token).Msg("listener added")

	return func() {
		b.mu.Lock()
		if set, ok := b.listeners[key]; ok {
			delete(set, token)
			if len(set) == 0 {
				delete(b.listeners, key)
			}
		}
		b.mu.Unlock()
		log.Debug().Str("module", "core.bus").Str("key", key).Str("token", token).Msg("listener removed")
	}
}

func (b *MemoryBus) Publish(key, payload string) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.listeners[key]))
	for _, h := range b.listeners[key] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(payload)
	}
	log.Debug().Str("module", "core.bus").Str("key", key).Int("delivered", len(handlers)).Msg("published")
}

// ListenerCount reports the registered listeners for a key.
func (b *MemoryBus) ListenerCount(key string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.listeners[key])
}
