// Package metrics exposes the deck's Prometheus collectors.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	SessionsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "microcasa_sessions_started_total",
			Help: "Presenter sessions created",
		},
	)
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "microcasa_sessions_active",
			Help: "Presenter sessions held in memory",
		},
	)
	Navigations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microcasa_navigations_total",
			Help: "Slide transitions by action",
		},
		[]string{"action"},
	)
	ReadingsAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microcasa_readings_appended_total",
			Help: "Telemetry rows appended by origin",
		},
		[]string{"origin"},
	)
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microcasa_form_submissions_total",
			Help: "Manual form submissions by outcome",
		},
		[]string{"status"},
	)
	BurstDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "microcasa_burst_duration_seconds",
			Help:    "Wall time of one simulated burst including pacing",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		},
	)
	Exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "microcasa_exports_total",
			Help: "CSV exports by outcome",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// Register adds every collector to the default registry. Safe to call more than once.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			SessionsStarted,
			SessionsActive,
			Navigations,
			ReadingsAppended,
			Submissions,
			BurstDuration,
			Exports,
		)
	})
}
