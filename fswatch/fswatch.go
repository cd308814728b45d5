// Package fswatch offers a Subscribable that fires the file system changes
// reported by fsnotify.
//
// Channels are named after the fsnotify operations ("create", "write",
// "remove", "rename" and "chmod"); every firing carries the path of the changed
// file as its single argument. Watcher errors fire on the "error" channel.
package fswatch

import (
	"errors"
	"io"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-evassert/emitter"
	"github.com/capatazlib/go-evassert/internal/ev"
)

// Channel names
const (
	OpCreate = "create"
	OpWrite  = "write"
	OpRemove = "remove"
	OpRename = "rename"
	OpChmod  = "chmod"
	OpError  = "error"
)

// ErrUnknownOp is returned when an operation name is not one of the channels
// of a Watcher
var ErrUnknownOp = errors.New("unknown file system operation")

var opNames = []struct {
	op   fsnotify.Op
	name string
}{
	{fsnotify.Create, OpCreate},
	{fsnotify.Write, OpWrite},
	{fsnotify.Remove, OpRemove},
	{fsnotify.Rename, OpRename},
	{fsnotify.Chmod, OpChmod},
}

// ValidOp reports an error when the given name is not a channel of a Watcher
func ValidOp(name string) error {
	if name == OpError {
		return nil
	}
	for _, entry := range opNames {
		if entry.name == name {
			return nil
		}
	}
	return ErrUnknownOp
}

// Watcher fires the fsnotify events of the watched paths
type Watcher struct {
	watcher *fsnotify.Watcher
	em      *emitter.Emitter
	logger  logrus.FieldLogger

	closeOnce sync.Once
	doneCh    chan struct{}
	stoppedCh chan struct{}
}

// Opt allows clients to tweak the behavior of a Watcher
type Opt func(*Watcher)

// WithLogger sets the logger used to report watcher errors
func WithLogger(ll logrus.FieldLogger) Opt {
	return func(w *Watcher) {
		if ll != nil {
			w.logger = ll
		}
	}
}

// New starts a Watcher without any watched path
func New(opts ...Opt) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	log := logrus.New()
	log.Out = io.Discard

	w := &Watcher{
		watcher:   fw,
		em:        emitter.New(),
		logger:    log,
		doneCh:    make(chan struct{}),
		stoppedCh: make(chan struct{}),
	}
	for _, optFn := range opts {
		optFn(w)
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	defer close(w.stoppedCh)
	for {
		select {
		case <-w.doneCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.dispatch(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("file system watcher failed")
			w.em.Emit(OpError, err)
		}
	}
}

// dispatch fires one channel per operation bit of the event
func (w *Watcher) dispatch(event fsnotify.Event) {
	for _, entry := range opNames {
		if !event.Has(entry.op) {
			continue
		}
		w.logger.WithFields(logrus.Fields{
			"fswatch.op":   entry.name,
			"fswatch.path": event.Name,
		}).Debug("file system event")
		w.em.Emit(entry.name, event.Name)
	}
}

// Add starts watching the given file or directory (not recursive)
func (w *Watcher) Add(path string) error {
	return w.watcher.Add(path)
}

// Remove stops watching the given path
func (w *Watcher) Remove(path string) error {
	return w.watcher.Remove(path)
}

// WatchList returns the watched paths
func (w *Watcher) WatchList() []string {
	return w.watcher.WatchList()
}

// Subscribe registers the listener on an operation channel
func (w *Watcher) Subscribe(channel string, l *ev.Listener) {
	w.em.Subscribe(channel, l)
}

// Unsubscribe removes the listener from an operation channel
func (w *Watcher) Unsubscribe(channel string, l *ev.Listener) {
	w.em.Unsubscribe(channel, l)
}

// Close stops the watcher; no more firings happen after Close returns
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.doneCh)
		err = w.watcher.Close()
		<-w.stoppedCh
	})
	return err
}
