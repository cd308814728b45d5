package emitter

import (
	"sync"

	"github.com/capatazlib/go-evassert/internal/ev"
)

// Bus is the shape of channel based event buses: every subscription gets its
// own Go channel and a function that cancels it.
type Bus[T any] interface {
	Subscribe() (<-chan T, func())
}

// BusAdapter turns a Bus into a Subscribable. Each item published on the bus
// is routed to the channel returned by the channelOf function, with the
// arguments returned by the argsOf function.
type BusAdapter[T any] struct {
	bus       Bus[T]
	channelOf func(T) string
	argsOf    func(T) []any

	mu   sync.Mutex
	subs map[busKey]busSubscription
}

type busKey struct {
	channel  string
	listener *ev.Listener
}

type busSubscription struct {
	cancel func()
	stopCh chan struct{}
	doneCh chan struct{}
}

// FromBus builds a BusAdapter for the given bus. When argsOf is nil, every
// item is delivered as a single argument.
func FromBus[T any](bus Bus[T], channelOf func(T) string, argsOf func(T) []any) *BusAdapter[T] {
	if argsOf == nil {
		argsOf = func(item T) []any { return []any{item} }
	}
	return &BusAdapter[T]{
		bus:       bus,
		channelOf: channelOf,
		argsOf:    argsOf,
		subs:      make(map[busKey]busSubscription),
	}
}

// Subscribe starts a bus subscription that forwards the items of the given
// channel to the listener
func (a *BusAdapter[T]) Subscribe(channel string, l *ev.Listener) {
	if l == nil {
		return
	}
	itemCh, cancel := a.bus.Subscribe()
	sub := busSubscription{
		cancel: cancel,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	key := busKey{channel: channel, listener: l}

	a.mu.Lock()
	if _, ok := a.subs[key]; ok {
		a.mu.Unlock()
		// a listener is only forwarded once per channel
		cancel()
		return
	}
	a.subs[key] = sub
	a.mu.Unlock()

	go func() {
		defer close(sub.doneCh)
		for {
			select {
			case <-sub.stopCh:
				return
			case item, ok := <-itemCh:
				if !ok {
					return
				}
				if a.channelOf(item) != channel {
					continue
				}
				l.Notify(a.argsOf(item))
			}
		}
	}()
}

// Unsubscribe cancels the bus subscription of the listener and waits for its
// forwarding goroutine to finish
func (a *BusAdapter[T]) Unsubscribe(channel string, l *ev.Listener) {
	key := busKey{channel: channel, listener: l}

	a.mu.Lock()
	sub, ok := a.subs[key]
	delete(a.subs, key)
	a.mu.Unlock()
	if !ok {
		return
	}
	close(sub.stopCh)
	sub.cancel()
	<-sub.doneCh
}
