package ev

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/capatazlib/go-evassert/internal/verb"
)

// DefaultTimeout is the time an acquisition waits for its events when no
// timeout is specified
const DefaultTimeout = 1950 * time.Millisecond

// Engine runs a named comparison verb of a subject value against expected
// values. When no expected values are given, the verb is expected to be
// nullary (e.g. "to be nil").
type Engine interface {
	Assert(ctx context.Context, subject any, verb string, expected ...any) error
}

// acquirerSettings contains the settings of an Acquirer instance
type acquirerSettings struct {
	timeout time.Duration
	logger  logrus.FieldLogger
	metrics *Metrics
	engine  Engine
}

// AcquirerOpt allows clients to tweak the behavior of an Acquirer instance
type AcquirerOpt func(*acquirerSettings)

// WithTimeout sets the time an acquisition waits for the required events
// (defaults to 1950 millis).
func WithTimeout(timeout time.Duration) AcquirerOpt {
	return func(settings *acquirerSettings) {
		if timeout > 0 {
			settings.timeout = timeout
		}
	}
}

// WithLogger sets the logger used to report the lifecycle of acquisitions
// (defaults to a logger that discards every entry).
func WithLogger(ll logrus.FieldLogger) AcquirerOpt {
	return func(settings *acquirerSettings) {
		if ll != nil {
			settings.logger = ll
		}
	}
}

// WithMetrics sets the Prometheus metrics that get updated on every
// acquisition
func WithMetrics(m *Metrics) AcquirerOpt {
	return func(settings *acquirerSettings) {
		settings.metrics = m
	}
}

// WithEngine sets the assertion engine used to compare event values (defaults
// to the built-in verb engine).
func WithEngine(e Engine) AcquirerOpt {
	return func(settings *acquirerSettings) {
		if e != nil {
			settings.engine = e
		}
	}
}

func discardLogger() logrus.FieldLogger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func defaultSettings() acquirerSettings {
	return acquirerSettings{
		timeout: DefaultTimeout,
		logger:  discardLogger(),
		engine:  verb.New(),
	}
}
