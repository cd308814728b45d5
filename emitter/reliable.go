package emitter

import (
	"fmt"
	"sync"
	"time"

	"github.com/capatazlib/go-evassert/internal/ev"
)

// reliableSettings contains settings and callbacks for a Reliable instance
type reliableSettings struct {
	deliveryTimeout   time.Duration
	onDeliveryTimeout func(channel string)
	onListenerFailure func(channel string, err error)
}

// ReliableOpt allows clients to tweak the behavior of a Reliable instance
type ReliableOpt func(*reliableSettings)

// WithDeliveryTimeout sets the maximum time Emit waits for a listener to be
// ready to receive a firing (defaults to 10 millis).
func WithDeliveryTimeout(ts time.Duration) ReliableOpt {
	return func(settings *reliableSettings) {
		if ts > 0 {
			settings.deliveryTimeout = ts
		}
	}
}

// WithOnDeliveryTimeout sets a callback that gets executed when a listener is
// so slow to get a firing that it gets skipped.
func WithOnDeliveryTimeout(cb func(channel string)) ReliableOpt {
	return func(settings *reliableSettings) {
		settings.onDeliveryTimeout = cb
	}
}

// WithOnListenerFailure sets a callback that gets executed when a listener
// panics while handling a firing
func WithOnListenerFailure(cb func(channel string, err error)) ReliableOpt {
	return func(settings *reliableSettings) {
		settings.onListenerFailure = cb
	}
}

// listenerWorker delivers the firings of one subscription on its own goroutine
type listenerWorker struct {
	channel  string
	listener *ev.Listener
	inCh     chan []any
	stopCh   chan struct{}
	doneCh   chan struct{}

	mu         sync.Mutex
	stopped    bool
	delivering bool
}

func (w *listenerWorker) run(settings reliableSettings) {
	defer close(w.doneCh)
	for {
		select {
		case <-w.stopCh:
			return
		case args := <-w.inCh:
			w.mu.Lock()
			if w.stopped {
				w.mu.Unlock()
				return
			}
			w.delivering = true
			w.mu.Unlock()

			w.deliver(settings, args)

			w.mu.Lock()
			w.delivering = false
			w.mu.Unlock()
		}
	}
}

// stop signals the worker to finish and waits for it, unless a delivery is in
// progress: the listener may be the one stopping its own worker, and the
// delivery in progress is the last one either way.
func (w *listenerWorker) stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	close(w.stopCh)
	delivering := w.delivering
	w.mu.Unlock()

	if !delivering {
		<-w.doneCh
	}
}

// deliver notifies the listener; a panic is reported and the worker keeps
// going with the next firing
func (w *listenerWorker) deliver(settings reliableSettings, args []any) {
	defer func() {
		if p := recover(); p != nil {
			settings.onListenerFailure(w.channel, fmt.Errorf("listener panicked: %v", p))
		}
	}()
	w.listener.Notify(args)
}

// Reliable is an Emitter that never lets its listeners block or panic the
// caller of Emit. Every subscription gets its own delivery goroutine; firings
// reach a listener in the order they got emitted, but a listener that is not
// ready within the delivery timeout misses the firing.
type Reliable struct {
	settings reliableSettings

	mu      sync.RWMutex
	workers map[string][]*listenerWorker
}

// NewReliable returns a Reliable emitter without listeners
func NewReliable(opts ...ReliableOpt) *Reliable {
	settings := reliableSettings{
		deliveryTimeout:   10 * time.Millisecond,
		onDeliveryTimeout: func(string) {},
		onListenerFailure: func(string, error) {},
	}
	for _, optFn := range opts {
		optFn(&settings)
	}
	return &Reliable{
		settings: settings,
		workers:  make(map[string][]*listenerWorker),
	}
}

// Subscribe starts a delivery goroutine for the listener on the given channel
func (r *Reliable) Subscribe(channel string, l *ev.Listener) {
	if l == nil {
		return
	}
	w := &listenerWorker{
		channel:  channel,
		listener: l,
		inCh:     make(chan []any),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go w.run(r.settings)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.workers[channel] = append(r.workers[channel], w)
}

// Unsubscribe removes one registration of the listener from the given channel
// and waits for its delivery goroutine to finish. When a firing is being
// delivered to the listener, Unsubscribe returns right away and that firing
// is the last one it gets; this allows listeners to unsubscribe themselves.
func (r *Reliable) Unsubscribe(channel string, l *ev.Listener) {
	r.mu.Lock()
	var found *listenerWorker
	current := r.workers[channel]
	for i, w := range current {
		if w.listener != l {
			continue
		}
		found = w
		next := make([]*listenerWorker, 0, len(current)-1)
		next = append(next, current[:i]...)
		next = append(next, current[i+1:]...)
		if len(next) == 0 {
			delete(r.workers, channel)
		} else {
			r.workers[channel] = next
		}
		break
	}
	r.mu.Unlock()

	if found == nil {
		return
	}
	found.stop()
}

// Emit hands the firing to the delivery goroutine of every listener of the
// channel, and returns the number of listeners that got it
func (r *Reliable) Emit(channel string, args ...any) int {
	r.mu.RLock()
	// the slice is never mutated in place, so it can be used after unlocking
	workers := r.workers[channel]
	r.mu.RUnlock()

	delivered := 0
	for _, w := range workers {
		cp := make([]any, len(args))
		copy(cp, args)

		timer := time.NewTimer(r.settings.deliveryTimeout)
		select {
		case w.inCh <- cp:
			delivered++
		case <-w.stopCh:
		case <-timer.C:
			r.settings.onDeliveryTimeout(channel)
		}
		timer.Stop()
	}
	return delivered
}

// ListenerCount returns the number of listeners registered on the channel
func (r *Reliable) ListenerCount(channel string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.workers[channel])
}

// Close stops every delivery goroutine. Like Unsubscribe, it does not wait
// for listeners that are in the middle of a delivery.
func (r *Reliable) Close() {
	r.mu.Lock()
	workers := r.workers
	r.workers = make(map[string][]*listenerWorker)
	r.mu.Unlock()

	for _, ws := range workers {
		for _, w := range ws {
			w.stop()
		}
	}
}
