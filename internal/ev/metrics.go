package ev

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels reported on the acquisitions counter
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeNotSeen    = "not_seen"
	OutcomeUnexpected = "unexpected"
	OutcomeCanceled   = "canceled"
)

// Metrics holds the Prometheus collectors updated by acquisitions and passive
// captures. A nil *Metrics records nothing.
type Metrics struct {
	acquisitions *prometheus.CounterVec
	captured     *prometheus.CounterVec
	duration     prometheus.Histogram
}

// NewMetrics builds the evassert collectors and registers them on the given
// registerer (when not nil)
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		acquisitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "evassert",
				Name:      "acquisitions_total",
				Help:      "Number of settled acquisitions by outcome.",
			},
			[]string{"outcome"},
		),
		captured: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "evassert",
				Name:      "events_captured_total",
				Help:      "Number of firings captured by channel.",
			},
			[]string{"channel"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "evassert",
				Name:      "acquisition_duration_seconds",
				Help:      "Time between the subscription and the settlement of an acquisition.",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2, 5},
			},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.acquisitions, m.captured, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeCapture(channel string) {
	if m == nil {
		return
	}
	m.captured.WithLabelValues(channel).Inc()
}

func (m *Metrics) observeSettled(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.acquisitions.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}
