package ev

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Acquirer waits for firings on the channel of a subject, racing them against
// a timeout. An Acquirer has no per-call state and may be shared by tests
// running in parallel.
type Acquirer struct {
	settings acquirerSettings
}

// NewAcquirer returns an Acquirer configured with the given options
func NewAcquirer(opts ...AcquirerOpt) *Acquirer {
	settings := defaultSettings()
	for _, optFn := range opts {
		optFn(&settings)
	}
	return &Acquirer{settings: settings}
}

// Timeout returns the time an acquisition waits for its events
func (acq *Acquirer) Timeout() time.Duration {
	return acq.settings.timeout
}

// Engine returns the assertion engine used to compare event values
func (acq *Acquirer) Engine() Engine {
	return acq.settings.engine
}

////////////////////////////////////////////////////////////////////////////////

// acquisitionState is the lifecycle of a single acquisition: Idle ->
// Listening -> Settled. Once Settled, firings are ignored.
type acquisitionState uint8

const (
	stateIdle acquisitionState = iota
	stateListening
	stateSettled
)

// acquisition holds the state of a single call to Acquire. The mutex is the
// settlement guard: the listener and the waiting goroutine both transition the
// state under it, so only one of them settles the acquisition.
type acquisition struct {
	mu        sync.Mutex
	state     acquisitionState
	channel   string
	required  int
	remaining int
	seen      []Record
	reachedCh chan struct{}
	metrics   *Metrics
}

func newAcquisition(channel string, required int, metrics *Metrics) *acquisition {
	return &acquisition{
		state:     stateIdle,
		channel:   channel,
		required:  required,
		remaining: required,
		seen:      make([]Record, 0, required),
		reachedCh: make(chan struct{}),
		metrics:   metrics,
	}
}

func (a *acquisition) listen() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state = stateListening
}

// onFiring is the listener callback registered on the subject
func (a *acquisition) onFiring(args []any) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.state != stateListening {
		return
	}

	a.seen = append(a.seen, NewRecord(args...))
	a.metrics.observeCapture(a.channel)

	// when no events are required every firing is kept, the timeout decides
	// the outcome
	if a.required == 0 {
		return
	}

	a.remaining--
	if a.remaining == 0 {
		a.state = stateSettled
		close(a.reachedCh)
	}
}

// settle freezes the acquisition and returns the captured records, and
// whether the target count was reached before the freeze.
func (a *acquisition) settle() ([]Record, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	reached := a.state == stateSettled
	a.state = stateSettled
	return a.seen, reached
}

////////////////////////////////////////////////////////////////////////////////

// Acquire subscribes to the channel of the subject and waits until the
// required number of firings happen, or until the timeout elapses.
//
// When required is greater than zero, Acquire returns a RecordSet with exactly
// that many records in arrival order; firings after the last required one are
// not observed. If the timeout elapses first a *TimeoutError wrapping
// ErrEventNotSeen is returned.
//
// When required is zero, Acquire waits the whole timeout and succeeds with an
// empty RecordSet if nothing fired; otherwise a *TimeoutError wrapping
// ErrUnexpectedEvents is returned.
//
// The listener is removed from the subject before Acquire returns, whatever
// the outcome is.
func (acq *Acquirer) Acquire(
	ctx context.Context,
	subject Subscribable,
	channel string,
	required int,
) (RecordSet, error) {
	if subject == nil {
		return RecordSet{}, newContractViolation("acquire", "", ErrNilSubject)
	}
	if required < 0 {
		return RecordSet{}, newContractViolation(
			"acquire", fmt.Sprintf("required count was %d", required), ErrInvalidCount,
		)
	}
	return acq.acquire(ctx, subject, channel, required)
}

func (acq *Acquirer) acquire(
	ctx context.Context,
	subject Subscribable,
	channel string,
	required int,
) (RecordSet, error) {
	ll := acq.settings.logger.WithFields(logrus.Fields{
		"acquisition.id":       uuid.NewString(),
		"acquisition.channel":  channel,
		"acquisition.required": required,
	})

	a := newAcquisition(channel, required, acq.settings.metrics)
	listener := NewListener(a.onFiring)

	// the listener must be in place before the timer starts, otherwise a
	// firing that happens right away could be missed
	a.listen()
	subject.Subscribe(channel, listener)
	ll.Debug("acquisition listening")

	startedAt := time.Now()
	timer := time.NewTimer(acq.settings.timeout)

	var ctxErr error
	select {
	case <-a.reachedCh:
	case <-timer.C:
	case <-ctx.Done():
		ctxErr = ctx.Err()
	}

	records, reached := a.settle()
	timer.Stop()
	subject.Unsubscribe(channel, listener)

	seen := newRecordSetFrom(records)
	elapsed := time.Since(startedAt)
	ll = ll.WithField("acquisition.seen", seen.Len())

	var err error
	var outcome string

	switch {
	case reached:
		outcome = OutcomeSucceeded
	case ctxErr != nil:
		outcome = OutcomeCanceled
		err = &CanceledError{
			channel:  channel,
			required: required,
			seen:     seen.Len(),
			cause:    ctxErr,
		}
	case required == 0 && seen.Len() == 0:
		outcome = OutcomeSucceeded
	case required == 0:
		outcome = OutcomeUnexpected
		err = &TimeoutError{channel: channel, required: required, seen: seen, timeout: acq.settings.timeout}
	default:
		outcome = OutcomeNotSeen
		err = &TimeoutError{channel: channel, required: required, seen: seen, timeout: acq.settings.timeout}
	}

	acq.settings.metrics.observeSettled(outcome, elapsed)
	ll = ll.WithFields(logrus.Fields{
		"acquisition.outcome": outcome,
		"acquisition.elapsed": elapsed,
	})

	if err != nil {
		ll.WithError(err).Debug("acquisition failed")
		return RecordSet{}, err
	}

	ll.Debug("acquisition settled")
	return seen, nil
}
