package ev

// Listener receives the arguments of every firing on the channel it is
// subscribed to. Listeners are compared by identity, the same *Listener given
// to Subscribe must be given to Unsubscribe.
type Listener struct {
	notifyFn func([]any)
}

// NewListener wraps the given callback in a Listener
func NewListener(notifyFn func(args []any)) *Listener {
	return &Listener{notifyFn: notifyFn}
}

// Notify delivers the arguments of one firing to the listener
func (l *Listener) Notify(args []any) {
	if l == nil || l.notifyFn == nil {
		return
	}
	l.notifyFn(args)
}

// Subscribable is the capability of an object that emits firings on named
// channels. Implementations must deliver the firings of a single channel in
// order; they may call Notify from any goroutine.
type Subscribable interface {
	// Subscribe registers the listener on the given channel
	Subscribe(channel string, l *Listener)

	// Unsubscribe removes the listener from the given channel. A firing that
	// was already being delivered when Unsubscribe got called may still reach
	// the listener.
	Unsubscribe(channel string, l *Listener)
}
