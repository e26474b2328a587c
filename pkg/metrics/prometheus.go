// Package metrics provides Prometheus metrics for the league overseer
// match service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Engine metrics: the rating recompute pipeline.
	matchesEntered    prometheus.Counter
	matchesEdited     prometheus.Counter
	matchesDeleted    prometheus.Counter
	reportsDuplicate  prometheus.Counter
	cascadeLength     prometheus.Histogram
	cascadeRewrites   prometheus.Histogram
	cascadeDuration   prometheus.Histogram
	engineFailures    *prometheus.CounterVec

	// Store metrics: exclusive scope behavior.
	lockWait     prometheus.Histogram
	lockTimeouts prometheus.Counter

	// HTTP metrics.
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Scale gauges.
	teamsTracked  prometheus.Gauge
	matchesStored prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "overseer",
		subsystem:        "league",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.matchesEntered = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_entered_total",
		Help:      "Total number of match reports entered",
	})

	m.matchesEdited = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_edited_total",
		Help:      "Total number of match records edited",
	})

	m.matchesDeleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_deleted_total",
		Help:      "Total number of match records deleted",
	})

	m.reportsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reports_duplicate_total",
		Help:      "Total number of duplicate match reports suppressed",
	})

	m.cascadeLength = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_length_matches",
		Help:      "Number of later matches scanned per recompute cascade",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.cascadeRewrites = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_rewrites_matches",
		Help:      "Number of rating snapshots actually rewritten per cascade",
		Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 500},
	})

	m.cascadeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cascade_duration_milliseconds",
		Help:      "Wall time of recompute cascades in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.engineFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "engine_failures_total",
			Help:      "Engine operation failures by kind",
		},
		[]string{"kind"},
	)

	m.lockWait = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lock_wait_milliseconds",
		Help:      "Time spent acquiring the exclusive write scope in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.lockTimeouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "lock_timeouts_total",
		Help:      "Total number of exclusive scope acquisitions that timed out",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.teamsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "teams_tracked",
		Help:      "Number of teams with a rating row in the store",
	})

	m.matchesStored = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_stored",
		Help:      "Number of match records currently stored",
	})
}

// Package-level helpers on the global manager.

// RecordMatchEntered increments the entered-match counter.
func RecordMatchEntered() { globalManager.matchesEntered.Inc() }

// RecordMatchEdited increments the edited-match counter.
func RecordMatchEdited() { globalManager.matchesEdited.Inc() }

// RecordMatchDeleted increments the deleted-match counter.
func RecordMatchDeleted() { globalManager.matchesDeleted.Inc() }

// RecordReportDuplicate increments the duplicate-report counter.
func RecordReportDuplicate() { globalManager.reportsDuplicate.Inc() }

// ObserveCascade records one cascade's scan and rewrite sizes.
func ObserveCascade(scanned, rewritten int) {
	globalManager.cascadeLength.Observe(float64(scanned))
	globalManager.cascadeRewrites.Observe(float64(rewritten))
}

// ObserveCascadeDuration records one cascade's wall time.
func ObserveCascadeDuration(d time.Duration) {
	globalManager.cascadeDuration.Observe(float64(d.Milliseconds()))
}

// RecordEngineFailure counts a failed engine operation by kind.
func RecordEngineFailure(kind string) {
	globalManager.engineFailures.WithLabelValues(kind).Inc()
}

// ObserveLockWait records time spent acquiring the exclusive scope.
func ObserveLockWait(d time.Duration) {
	globalManager.lockWait.Observe(float64(d.Milliseconds()))
}

// RecordLockTimeout counts a bounded-wait scope acquisition failure.
func RecordLockTimeout() { globalManager.lockTimeouts.Inc() }

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request's latency.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// UpdateTeamsTracked sets the tracked-team gauge.
func UpdateTeamsTracked(n int) { globalManager.teamsTracked.Set(float64(n)) }

// UpdateMatchesStored sets the stored-match gauge.
func UpdateMatchesStored(n int) { globalManager.matchesStored.Set(float64(n)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
