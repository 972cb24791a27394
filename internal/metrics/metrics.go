// Package metrics exposes Prometheus instrumentation for filter cycles and
// web sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for sheetsift. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Cycles         *prometheus.CounterVec
	CycleDuration  prometheus.Histogram
	ViewRows       prometheus.Histogram
	Warnings       prometheus.Counter
	ActiveSessions prometheus.Gauge
	Exports        prometheus.Counter
}

// New creates and registers all metrics with the provided registry.
func New(reg prometheus.Registerer) *Metrics {
	cycles := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sheetsift_filter_cycles_total",
		Help: "Filter cycles run, by triggering action",
	}, []string{"trigger"})

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sheetsift_filter_cycle_duration_seconds",
		Help:    "Time spent evaluating one filter cycle",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
	})

	viewRows := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sheetsift_view_rows",
		Help:    "Rows in the published filtered view",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	})

	warnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sheetsift_filter_warnings_total",
		Help: "Criteria skipped or ignored during evaluation",
	})

	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sheetsift_web_sessions",
		Help: "Live browser sessions",
	})

	exports := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sheetsift_exports_total",
		Help: "Filtered views exported",
	})

	reg.MustRegister(cycles, duration, viewRows, warnings, sessions, exports)

	return &Metrics{
		Cycles:         cycles,
		CycleDuration:  duration,
		ViewRows:       viewRows,
		Warnings:       warnings,
		ActiveSessions: sessions,
		Exports:        exports,
	}
}

// ObserveCycle records one completed filter cycle.
func (m *Metrics) ObserveCycle(trigger string, took time.Duration, rows, warnings int) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(trigger).Inc()
	m.CycleDuration.Observe(took.Seconds())
	m.ViewRows.Observe(float64(rows))
	m.Warnings.Add(float64(warnings))
}

// SetSessions records the number of live web sessions.
func (m *Metrics) SetSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}

// ObserveExport records one export.
func (m *Metrics) ObserveExport() {
	if m == nil {
		return
	}
	m.Exports.Inc()
}
