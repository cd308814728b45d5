// Package emitter provides in-process implementations of the evassert
// Subscribable capability.
package emitter

import (
	"sync"

	"github.com/capatazlib/go-evassert/internal/ev"
)

// Emitter is an in-process publish/subscribe object. Emit delivers the
// firing synchronously to every listener of the channel, in subscription
// order, so the firings of a channel are observed in the order they got
// emitted.
type Emitter struct {
	mu        sync.RWMutex
	listeners map[string][]*ev.Listener
}

// New returns an Emitter without listeners
func New() *Emitter {
	return &Emitter{listeners: make(map[string][]*ev.Listener)}
}

// Subscribe registers the listener on the given channel. Subscribing the
// same listener twice makes it receive every firing twice.
func (e *Emitter) Subscribe(channel string, l *ev.Listener) {
	if l == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[channel] = append(e.listeners[channel], l)
}

// Unsubscribe removes one registration of the listener from the given
// channel
func (e *Emitter) Unsubscribe(channel string, l *ev.Listener) {
	e.mu.Lock()
	defer e.mu.Unlock()
	current := e.listeners[channel]
	for i, registered := range current {
		if registered != l {
			continue
		}
		next := make([]*ev.Listener, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(e.listeners, channel)
		} else {
			e.listeners[channel] = next
		}
		return
	}
}

// Emit fires the channel with the given arguments and returns the number of
// listeners that got notified
func (e *Emitter) Emit(channel string, args ...any) int {
	e.mu.RLock()
	// the slice is never mutated in place, so it can be used after unlocking
	listeners := e.listeners[channel]
	e.mu.RUnlock()

	for _, l := range listeners {
		cp := make([]any, len(args))
		copy(cp, args)
		l.Notify(cp)
	}
	return len(listeners)
}

// ListenerCount returns the number of listeners registered on the channel
func (e *Emitter) ListenerCount(channel string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.listeners[channel])
}

// Channels returns the channels that have at least one listener
func (e *Emitter) Channels() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	acc := make([]string, 0, len(e.listeners))
	for channel := range e.listeners {
		acc = append(acc, channel)
	}
	return acc
}
