// Package metrics defines the Prometheus collectors exported by Fleximon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fleximon"

// Metrics groups the collectors updated by every tick.
//
// A nil *Metrics is valid and records nothing, so callers never need to
// guard metric updates.
type Metrics struct {
	ticks         prometheus.Counter
	skipped       prometheus.Counter
	tickDuration  prometheus.Histogram
	fetchFailures *prometheus.CounterVec
	events        *prometheus.GaugeVec
	unreachable   prometheus.Gauge
}

// New creates the collectors and registers them with reg.
//
// Returns an error if any collector is already registered.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Completed poll-aggregate-publish ticks.",
		}),
		skipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_skipped_total",
			Help:      "Ticks skipped because the previous tick was still running.",
		}),
		tickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock duration of a tick.",
			Buckets:   prometheus.DefBuckets,
		}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_failures_total",
			Help:      "Failed environment fetches by environment and failure kind.",
		}, []string{"source", "kind"}),
		events: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "events",
			Help:      "Events seen by the latest tick, by severity label.",
		}, []string{"label"}),
		unreachable: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unreachable_sources",
			Help:      "Environments that failed to respond in the latest tick.",
		}),
	}

	for _, c := range []prometheus.Collector{m.ticks, m.skipped, m.tickDuration, m.fetchFailures, m.events, m.unreachable} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// TickSkipped records a skipped tick.
func (m *Metrics) TickSkipped() {
	if m == nil {
		return
	}
	m.skipped.Inc()
}

// FetchFailed records one failed fetch.
func (m *Metrics) FetchFailed(source, kind string) {
	if m == nil {
		return
	}
	m.fetchFailures.WithLabelValues(source, kind).Inc()
}

// TickCompleted records a finished tick with its per-label event counts.
func (m *Metrics) TickCompleted(d time.Duration, counts map[string]int, unreachable int) {
	if m == nil {
		return
	}
	m.ticks.Inc()
	m.tickDuration.Observe(d.Seconds())
	for label, n := range counts {
		m.events.WithLabelValues(label).Set(float64(n))
	}
	m.unreachable.Set(float64(unreachable))
}
