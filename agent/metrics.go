package agent

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	turns    *prometheus.CounterVec
	failures *prometheus.CounterVec
	resets   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the flow collectors and registers them with reg when
// it is not nil.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotagent_turns_total",
			Help: "Turns processed, by process and resulting phase.",
		}, []string{"process", "phase"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotagent_validation_failures_total",
			Help: "Rejected slot values, by process and field.",
		}, []string{"process", "field"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotagent_session_resets_total",
			Help: "Session resets, by process.",
		}, []string{"process"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slotagent_turn_duration_seconds",
			Help:    "Time spent processing a turn.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"process"}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{m.turns, m.failures, m.resets, m.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) observeTurn(process string, resp *Response, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(process, string(resp.Phase)).Inc()
	for field := range resp.Errors {
		m.failures.WithLabelValues(process, field).Inc()
	}
	m.duration.WithLabelValues(process).Observe(elapsed.Seconds())
}

func (m *Metrics) observeReset(process string) {
	if m == nil {
		return
	}
	m.resets.WithLabelValues(process).Inc()
}
