// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application. A nil *Metrics
// is valid and records nothing, so code paths under test need no registry.
type Metrics struct {
	// Aggregation metrics
	PagesFetched    prometheus.Counter
	EventsProcessed prometheus.Counter
	EventsSkipped   *prometheus.CounterVec
	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	LastRunAt       prometheus.Gauge

	// Serving metrics
	ReportRequests  *prometheus.CounterVec
	ReportsArchived prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "swap_analytics"
	}

	return &Metrics{
		PagesFetched: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "pages_fetched_total",
			Help:      "Total number of event pages fetched from the analytics store",
		}),
		EventsProcessed: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "events_processed_total",
			Help:      "Total number of swap events folded into accumulators",
		}),
		EventsSkipped: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "events_skipped_total",
			Help:      "Total number of events skipped by reason",
		}, []string{"reason"}),
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total number of aggregation runs by status",
		}, []string{"status"}),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of aggregation runs",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		LastRunAt: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix timestamp of the last completed aggregation run",
		}),
		ReportRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "report_requests_total",
			Help:      "Total number of report requests by outcome",
		}, []string{"outcome"}),
		ReportsArchived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "reports_archived_total",
			Help:      "Total number of reports written to the archive",
		}),
	}
}

// RecordPage counts one fetched event page.
func (m *Metrics) RecordPage() {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
}

// RecordEvent counts one folded event.
func (m *Metrics) RecordEvent() {
	if m == nil {
		return
	}
	m.EventsProcessed.Inc()
}

// RecordSkip counts one skipped event by reason.
func (m *Metrics) RecordSkip(reason string) {
	if m == nil {
		return
	}
	m.EventsSkipped.WithLabelValues(reason).Inc()
}

// RecordRun counts one finished run and its duration.
func (m *Metrics) RecordRun(status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(status).Inc()
	if status == "ok" {
		m.RunDuration.Observe(elapsed.Seconds())
		m.LastRunAt.SetToCurrentTime()
	}
}

// RecordReportRequest counts one served report request by outcome.
func (m *Metrics) RecordReportRequest(outcome string) {
	if m == nil {
		return
	}
	m.ReportRequests.WithLabelValues(outcome).Inc()
}

// RecordArchive counts one archived report.
func (m *Metrics) RecordArchive() {
	if m == nil {
		return
	}
	m.ReportsArchived.Inc()
}

// Handler returns the HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
