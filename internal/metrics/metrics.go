// Package metrics provides Prometheus metrics for the updater and dashboard.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"LaborPulse/internal/recorder"
)

// Metrics holds all Prometheus metrics of one process.
type Metrics struct {
	registry *prometheus.Registry

	// Updater
	UpdateRuns           *prometheus.CounterVec
	UpdateDuration       prometheus.Histogram
	ObservationsAppended prometheus.Counter
	FetchFailures        *prometheus.CounterVec
	LastSuccessfulUpdate prometheus.Gauge

	// Dataset
	DatasetObservations *prometheus.GaugeVec

	// Dashboard
	DashboardRenders *prometheus.CounterVec
}

// New creates a Metrics instance on its own registry.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "laborpulse"
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		UpdateRuns: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "updater",
			Name:      "runs_total",
			Help:      "Total updater runs by final status",
		}, []string{"kind", "status"}),
		UpdateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "updater",
			Name:      "run_duration_seconds",
			Help:      "Duration of updater runs",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		ObservationsAppended: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "updater",
			Name:      "observations_appended_total",
			Help:      "Total observations appended to the dataset",
		}),
		FetchFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "updater",
			Name:      "fetch_failures_total",
			Help:      "Failed series fetches by series and error kind",
		}, []string{"series", "kind"}),
		LastSuccessfulUpdate: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "updater",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that did not fail",
		}),
		DatasetObservations: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "dataset",
			Name:      "observations",
			Help:      "Observations in the dataset per series",
		}, []string{"series"}),
		DashboardRenders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dashboard",
			Name:      "renders_total",
			Help:      "Dashboard renders by outcome",
		}, []string{"outcome"}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an HTTP handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordRun counts a finished updater run.
func (m *Metrics) RecordRun(kind, status string, seconds float64, appended int, unixNow float64) {
	m.UpdateRuns.WithLabelValues(kind, status).Inc()
	m.UpdateDuration.Observe(seconds)
	m.ObservationsAppended.Add(float64(appended))
	if status != recorder.StatusFailed {
		m.LastSuccessfulUpdate.Set(unixNow)
	}
}

// RecordFetchFailure counts a failed series fetch.
func (m *Metrics) RecordFetchFailure(series, kind string) {
	m.FetchFailures.WithLabelValues(series, kind).Inc()
}

// SetDatasetSize publishes per-series observation counts.
func (m *Metrics) SetDatasetSize(counts map[string]int) {
	for series, n := range counts {
		m.DatasetObservations.WithLabelValues(series).Set(float64(n))
	}
}

// RecordRender counts a dashboard render.
func (m *Metrics) RecordRender(outcome string) {
	m.DashboardRenders.WithLabelValues(outcome).Inc()
}
