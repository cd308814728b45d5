// Package evtest offers testing.T helpers on top of the evassert acquirer.
//
// Helpers use a default Acquirer configured from the EVASSERT_* environment
// variables (e.g. EVASSERT_TIMEOUT=5s on slow CI machines), unless one is
// given with the With variants. Invalid variables are reported once on stderr
// and replaced by the defaults.
package evtest

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-evassert/internal/config"
	"github.com/capatazlib/go-evassert/internal/ev"
)

var (
	defaultOnce sync.Once
	defaultAcq  *ev.Acquirer
)

// DefaultAcquirer returns the Acquirer used by the helpers of this package.
// It reads the environment once. Invalid settings fall back to the defaults,
// with a warning on stderr.
func DefaultAcquirer() *ev.Acquirer {
	defaultOnce.Do(func() {
		defaultAcq = newDefaultAcquirer(logrus.New())
	})
	return defaultAcq
}

// newDefaultAcquirer builds an Acquirer from the environment, warnings about
// ignored settings go to the given logger
func newDefaultAcquirer(warnLog logrus.FieldLogger) *ev.Acquirer {
	cfg := config.Default()
	if err := config.FromEnv(&cfg); err != nil {
		warnLog.WithError(err).Warn("evtest: ignoring invalid timeout setting")
	}
	if err := cfg.Validate(); err != nil {
		warnLog.WithError(err).Warn("evtest: invalid EVASSERT_* settings, using defaults")
		cfg = config.Default()
	}
	opts := []ev.AcquirerOpt{ev.WithTimeout(cfg.Timeout.Std())}
	// only log when explicitly asked to
	if cfg.LogLevel != config.Default().LogLevel {
		if log, err := cfg.NewLogger(); err == nil {
			opts = append(opts, ev.WithLogger(log))
		}
	}
	return ev.NewAcquirer(opts...)
}

// AssertNthEvent asserts the nth firing on the channel of the subject
// satisfies the expectation
func AssertNthEvent(t *testing.T, subject ev.Subscribable, channel string, n int, exp ev.Expectation) {
	t.Helper()
	AssertNthEventWith(t, DefaultAcquirer(), subject, channel, n, exp)
}

// AssertNthEventWith is AssertNthEvent with an explicit Acquirer
func AssertNthEventWith(
	t *testing.T,
	acq *ev.Acquirer,
	subject ev.Subscribable,
	channel string,
	n int,
	exp ev.Expectation,
) {
	t.Helper()
	if err := acq.AssertNth(context.Background(), subject, channel, n, exp); err != nil {
		t.Errorf("event %d on channel '%s' %s:\n%s", n, channel, exp, ev.ExplainError(err))
	}
}

// AssertEvents asserts the next firings on the channel of the subject
// satisfy the expectation (see Acquirer.AssertAll)
func AssertEvents(t *testing.T, subject ev.Subscribable, channel string, exp ev.Expectation) {
	t.Helper()
	AssertEventsWith(t, DefaultAcquirer(), subject, channel, exp)
}

// AssertEventsWith is AssertEvents with an explicit Acquirer
func AssertEventsWith(
	t *testing.T,
	acq *ev.Acquirer,
	subject ev.Subscribable,
	channel string,
	exp ev.Expectation,
) {
	t.Helper()
	if err := acq.AssertAll(context.Background(), subject, channel, exp); err != nil {
		t.Errorf("events on channel '%s' %s:\n%s", channel, exp, ev.ExplainError(err))
	}
}

// AssertNoEvents asserts nothing fires on the channel of the subject within
// the timeout of the default Acquirer
func AssertNoEvents(t *testing.T, subject ev.Subscribable, channel string) {
	t.Helper()
	AssertEvents(t, subject, channel, ev.Expect("to equal", []ev.EventSpec{}))
}

// Capture starts a passive capture on the channel of the subject, the capture
// is stopped when the test finishes
func Capture(t *testing.T, subject ev.Subscribable, channel string) *ev.LiveSet {
	t.Helper()
	ls, err := DefaultAcquirer().Capture(subject, channel)
	if err != nil {
		t.Fatalf("could not capture channel '%s': %v", channel, err)
	}
	t.Cleanup(ls.Stop)
	return ls
}

// WaitForEvents blocks until the capture holds n records, failing the test
// when that does not happen within the timeout of the default Acquirer
func WaitForEvents(t *testing.T, ls *ev.LiveSet, n int) ev.RecordSet {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), DefaultAcquirer().Timeout())
	defer cancel()
	rs, err := ls.WaitFor(ctx, n)
	if err != nil {
		t.Fatalf(
			"expected %d event(s) on channel '%s', got %d: %v\n%s",
			n, ls.Channel(), ls.Len(), err, ls.Snapshot(),
		)
	}
	return rs
}

// AssertEventAt asserts the record at the given (1-based) index of the
// capture satisfies a values expectation
func AssertEventAt(t *testing.T, ls *ev.LiveSet, index int, exp ev.Expectation) {
	t.Helper()
	if err := ls.AssertEvent(context.Background(), index, exp); err != nil {
		t.Errorf("event %d on channel '%s' %s:\n%s", index, ls.Channel(), exp, ev.ExplainError(err))
	}
}
