package ev_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capatazlib/go-evassert/emitter"
	"github.com/capatazlib/go-evassert/internal/ev"
)

const shortTimeout = 80 * time.Millisecond

func TestAcquireResolvesOnNthFiring(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5} {
		n := n
		t.Run(fmt.Sprintf("n=%d", n), func(t *testing.T) {
			require := require.New(t)
			em := emitter.New()

			firings := make([][]any, 0, n+2)
			for i := 0; i < n+2; i++ {
				firings = append(firings, args(i))
			}
			emitWhenSubscribed(em, "foo", firings...)

			rs, err := ev.NewAcquirer().Acquire(context.Background(), em, "foo", n)
			require.NoError(err)
			require.Equal(n, rs.Len())
			for i, r := range rs.Records() {
				require.Equal([]any{i}, r.Args(), "records must be in arrival order")
			}
		})
	}
}

func TestAcquireUnsubscribesOnSuccess(t *testing.T) {
	require := require.New(t)
	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("bar"))

	rs, err := ev.NewAcquirer().Acquire(context.Background(), em, "foo", 1)
	require.NoError(err)
	require.Equal(0, em.ListenerCount("foo"))

	// firings after settlement have no effect on the result
	assert.Equal(t, 0, em.Emit("foo", "baz"))
	require.Equal(1, rs.Len())
	r, _ := rs.Last()
	require.Equal([]any{"bar"}, r.Args())
}

func TestAcquireIgnoresOtherChannels(t *testing.T) {
	em := emitter.New()
	go func() {
		for em.ListenerCount("foo") == 0 {
			time.Sleep(time.Millisecond)
		}
		em.Emit("bar", "nope")
		em.Emit("foo", "yes")
	}()

	rs, err := ev.NewAcquirer().Acquire(context.Background(), em, "foo", 1)
	require.NoError(t, err)
	r, _ := rs.Last()
	assert.Equal(t, []any{"yes"}, r.Args())
}

func TestAcquireCapturesFiringDuringSubscribe(t *testing.T) {
	// subjects may replay history on subscription, those firings happen before
	// the timer starts and must be observed
	subject := &replayingSubject{Emitter: emitter.New(), replay: [][]any{args("old")}}

	rs, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), subject, "foo", 1)
	require.NoError(t, err)
	r, _ := rs.Last()
	assert.Equal(t, []any{"old"}, r.Args())
}

func TestAcquireTimeoutWhenNotSeen(t *testing.T) {
	require := require.New(t)
	em := emitter.New()

	start := time.Now()
	_, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 1)
	require.Error(err)
	require.GreaterOrEqual(time.Since(start), shortTimeout)

	var timeoutErr *ev.TimeoutError
	require.True(errors.As(err, &timeoutErr))
	require.True(errors.Is(err, ev.ErrEventNotSeen))
	require.Equal("expected event not seen prior to timeout", err.Error())
	require.Equal("foo", timeoutErr.Channel())
	require.Equal(0, em.ListenerCount("foo"))
}

func TestAcquireTimeoutWithPartialEvents(t *testing.T) {
	require := require.New(t)
	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("bar"), args("baz"))

	_, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 3)

	var timeoutErr *ev.TimeoutError
	require.True(errors.As(err, &timeoutErr))
	require.True(errors.Is(err, ev.ErrEventNotSeen))
	require.Equal(2, timeoutErr.Seen().Len())
	require.Equal(0, em.ListenerCount("foo"))
}

func TestAcquireZeroRequiredWithoutEvents(t *testing.T) {
	em := emitter.New()

	start := time.Now()
	rs, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, rs.Len())
	assert.GreaterOrEqual(t, time.Since(start), shortTimeout, "must wait the whole window")
	assert.Equal(t, 0, em.ListenerCount("foo"))
}

func TestAcquireZeroRequiredWithEvents(t *testing.T) {
	require := require.New(t)
	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("boom"))

	_, err := ev.NewAcquirer(ev.WithTimeout(shortTimeout)).
		Acquire(context.Background(), em, "foo", 0)
	require.Error(err)

	var timeoutErr *ev.TimeoutError
	require.True(errors.As(err, &timeoutErr))
	require.True(errors.Is(err, ev.ErrUnexpectedEvents))
	require.Equal("saw unexpected events", err.Error())
	require.Equal(1, timeoutErr.Seen().Len())
	require.Equal(0, em.ListenerCount("foo"))
}

func TestAcquireCanceled(t *testing.T) {
	require := require.New(t)
	em := emitter.New()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for em.ListenerCount("foo") == 0 {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()

	_, err := ev.NewAcquirer(ev.WithTimeout(time.Minute)).Acquire(ctx, em, "foo", 1)
	require.Error(err)

	var canceledErr *ev.CanceledError
	require.True(errors.As(err, &canceledErr))
	require.True(errors.Is(err, context.Canceled))
	require.Equal(0, em.ListenerCount("foo"))
}

func TestAcquireContractViolations(t *testing.T) {
	acq := ev.NewAcquirer()

	_, err := acq.Acquire(context.Background(), nil, "foo", 1)
	assert.True(t, errors.Is(err, ev.ErrNilSubject))

	em := emitter.New()
	_, err = acq.Acquire(context.Background(), em, "foo", -1)
	var cv *ev.ContractViolation
	assert.True(t, errors.As(err, &cv))
	assert.True(t, errors.Is(err, ev.ErrInvalidCount))
	assert.Equal(t, 0, em.ListenerCount("foo"), "contract violations never subscribe")
}

func TestAcquireConcurrentFirings(t *testing.T) {
	require := require.New(t)
	em := emitter.New()

	const emitters = 8
	const perEmitter = 25

	go func() {
		for em.ListenerCount("foo") == 0 {
			time.Sleep(time.Millisecond)
		}
		var wg sync.WaitGroup
		for i := 0; i < emitters; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < perEmitter; j++ {
					em.Emit("foo", j)
				}
			}()
		}
		wg.Wait()
	}()

	// the acquisition must settle exactly once with exactly the required
	// records, even when firings race each other
	rs, err := ev.NewAcquirer().Acquire(context.Background(), em, "foo", emitters*perEmitter/2)
	require.NoError(err)
	require.Equal(emitters*perEmitter/2, rs.Len())
}

func TestAcquireMetrics(t *testing.T) {
	require := require.New(t)
	reg := prometheus.NewRegistry()
	metrics, err := ev.NewMetrics(reg)
	require.NoError(err)

	acq := ev.NewAcquirer(ev.WithTimeout(shortTimeout), ev.WithMetrics(metrics))
	em := emitter.New()

	emitWhenSubscribed(em, "foo", args("bar"))
	_, err = acq.Acquire(context.Background(), em, "foo", 1)
	require.NoError(err)

	_, err = acq.Acquire(context.Background(), em, "foo", 1)
	require.Error(err)

	count, err := testutil.GatherAndCount(reg, "evassert_acquisitions_total")
	require.NoError(err)
	require.Equal(2, count)

	_, err = ev.NewMetrics(reg)
	require.Error(err, "collectors can only be registered once")
}

func TestAcquireLogsLifecycle(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	em := emitter.New()
	emitWhenSubscribed(em, "foo", args("bar"))

	_, err := ev.NewAcquirer(ev.WithLogger(logger)).Acquire(context.Background(), em, "foo", 1)
	require.NoError(t, err)

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, "acquisition listening", entries[0].Message)
	assert.Equal(t, "acquisition settled", entries[1].Message)
	assert.Equal(t, "foo", entries[1].Data["acquisition.channel"])
	assert.Equal(t, ev.OutcomeSucceeded, entries[1].Data["acquisition.outcome"])
	assert.NotEmpty(t, entries[1].Data["acquisition.id"])
}

func TestAcquirerDefaults(t *testing.T) {
	acq := ev.NewAcquirer(ev.WithTimeout(0), ev.WithLogger(nil), ev.WithEngine(nil))
	assert.Equal(t, ev.DefaultTimeout, acq.Timeout())
	assert.NotNil(t, acq.Engine())
	assert.Equal(t, 1950*time.Millisecond, ev.DefaultTimeout)
}

////////////////////////////////////////////////////////////////////////////////

// replayingSubject emits its replay firings to every new listener while it is
// being subscribed
type replayingSubject struct {
	*emitter.Emitter
	replay [][]any
}

func (s *replayingSubject) Subscribe(channel string, l *ev.Listener) {
	s.Emitter.Subscribe(channel, l)
	for _, a := range s.replay {
		l.Notify(a)
	}
}
