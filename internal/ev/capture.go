package ev

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"
)

// ErrCaptureStopped is returned when waiting on a LiveSet that got stopped
// before holding the requested number of events
var ErrCaptureStopped = errors.New("event capture was stopped")

// LiveSet is a RecordSet that keeps growing with every firing on the channel
// it captures. It never times out and it stays subscribed until Stop is
// called.
type LiveSet struct {
	subject  Subscribable
	channel  string
	listener *Listener
	engine   Engine
	metrics  *Metrics
	logger   logrus.FieldLogger

	stopOnce sync.Once
	cond     *sync.Cond
	records  []Record
	stopped  bool
}

// Capture subscribes to the channel of the subject right away and returns the
// LiveSet that accumulates every firing from now on.
func (acq *Acquirer) Capture(subject Subscribable, channel string) (*LiveSet, error) {
	if subject == nil {
		return nil, newContractViolation("capture", "", ErrNilSubject)
	}
	var mu sync.Mutex
	ls := &LiveSet{
		subject: subject,
		channel: channel,
		engine:  acq.settings.engine,
		metrics: acq.settings.metrics,
		logger:  acq.settings.logger.WithField("capture.channel", channel),
		cond:    sync.NewCond(&mu),
		records: make([]Record, 0, 16),
	}
	ls.listener = NewListener(ls.storeEvent)
	subject.Subscribe(channel, ls.listener)
	ls.logger.Debug("capture started")
	return ls, nil
}

func (ls *LiveSet) storeEvent(args []any) {
	ls.cond.L.Lock()
	defer ls.cond.L.Unlock()
	if ls.stopped {
		return
	}
	ls.records = append(ls.records, NewRecord(args...))
	ls.metrics.observeCapture(ls.channel)
	ls.cond.Broadcast()
}

// Channel returns the captured channel name
func (ls *LiveSet) Channel() string {
	return ls.channel
}

// Len returns the number of events captured so far
func (ls *LiveSet) Len() int {
	ls.cond.L.Lock()
	defer ls.cond.L.Unlock()
	return len(ls.records)
}

// Snapshot returns all the events this LiveSet has collected so far
func (ls *LiveSet) Snapshot() RecordSet {
	ls.cond.L.Lock()
	defer ls.cond.L.Unlock()
	return newRecordSetFrom(append(ls.records[:0:0], ls.records...))
}

// WaitFor blocks until the LiveSet holds at least n events, and returns them.
// It fails when the context is done or the capture gets stopped first.
func (ls *LiveSet) WaitFor(ctx context.Context, n int) (RecordSet, error) {
	stopWake := context.AfterFunc(ctx, func() {
		ls.cond.L.Lock()
		defer ls.cond.L.Unlock()
		ls.cond.Broadcast()
	})
	defer stopWake()

	ls.cond.L.Lock()
	defer ls.cond.L.Unlock()

	for len(ls.records) < n {
		if ls.stopped {
			return RecordSet{}, ErrCaptureStopped
		}
		if err := ctx.Err(); err != nil {
			return RecordSet{}, err
		}
		ls.cond.Wait()
	}
	return newRecordSetFrom(append(ls.records[:0:0], ls.records...)), nil
}

// AssertEvent compares the event at the given (1-based) position against the
// expectation, using a values mode comparison. Events captured after this
// call starts are not considered.
func (ls *LiveSet) AssertEvent(ctx context.Context, index int, exp Expectation) error {
	return ForEvent(ctx, ls.engine, ls.Snapshot(), index, exp.flat())
}

// Stop removes the capture listener from the subject. Events fired after Stop
// returns are not captured. Calling Stop more than once is a no-op.
func (ls *LiveSet) Stop() {
	ls.stopOnce.Do(func() {
		ls.subject.Unsubscribe(ls.channel, ls.listener)
		ls.cond.L.Lock()
		ls.stopped = true
		ls.cond.Broadcast()
		ls.cond.L.Unlock()
		ls.logger.WithField("capture.seen", ls.Len()).Debug("capture stopped")
	})
}
