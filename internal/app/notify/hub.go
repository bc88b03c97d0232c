// Package notify provides the step-notification hub for host callbacks.
//
// The engine invokes the hub synchronously from its own loop, once per
// successful advance. Hosts must treat callbacks as running on a foreign
// goroutine and keep them short; a panicking callback is recovered and
// logged, never fatal to the engine.
package notify

import (
	"sync"

	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// Callback is a host step callback. It receives no arguments and its
// return is not consumed.
type Callback func()

// Hub manages step-callback subscriptions and dispatch.
type Hub struct {
	mu            sync.RWMutex
	subscriptions map[string]Callback
	steps         uint64
}

// NewHub creates a new hub.
func NewHub() *Hub {
	return &Hub{
		subscriptions: make(map[string]Callback),
	}
}

// Subscribe adds a callback and returns its subscription ID.
// A nil callback is ignored and returns an empty ID.
func (h *Hub) Subscribe(cb Callback) string {
	if cb == nil {
		return ""
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id := uuid.New().String()
	h.subscriptions[id] = cb
	return id
}

// Unsubscribe removes a subscription.
func (h *Hub) Unsubscribe(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscriptions, id)
}

// Steps returns the number of broadcasts so far.
func (h *Hub) Steps() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.steps
}

// Broadcast invokes every subscribed callback synchronously, exactly once
// each, on the caller's goroutine.
func (h *Hub) Broadcast() {
	h.mu.Lock()
	h.steps++
	// Copy callbacks so a callback may unsubscribe itself
	cbs := make([]Callback, 0, len(h.subscriptions))
	for _, cb := range h.subscriptions {
		cbs = append(cbs, cb)
	}
	h.mu.Unlock()

	for _, cb := range cbs {
		invoke(cb)
	}
}

// invoke runs one callback with panic recovery.
func invoke(cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			zlog.Error().Msgf("notify: step callback panicked: %v", r)
		}
	}()
	cb()
}
