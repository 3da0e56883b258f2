package metrics

import (
	"fmt"
	"math"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels for matches_applied_total.
const (
	ResultDecisive  = "decisive"
	ResultNoContest = "no_contest"
)

// Status labels for ingest_rows_total.
const (
	RowAccepted  = "accepted"
	RowMalformed = "malformed"
	RowDuplicate = "duplicate"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	deltaBuckets   []float64
	enabled        bool
	registry       prometheus.Registerer

	// Rating engine
	matchesApplied      *prometheus.CounterVec
	titleBouts          prometheus.Counter
	inactivityPenalties prometheus.Counter
	ratingDelta         prometheus.Histogram

	// Simulation
	simulationRuns     prometheus.Counter
	simulationDuration prometheus.Histogram
	competitors        prometheus.Gauge
	ratings            prometheus.Gauge
	categories         prometheus.Gauge

	// Ingestion
	ingestRows *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorsByComponent   *prometheus.CounterVec

	// Process
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // process registry without default Go collectors

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "fightelo",
		subsystem:      "ratings",
		latencyBuckets: prometheus.DefBuckets,
		deltaBuckets:   []float64{1, 2, 5, 10, 15, 20, 30, 40, 60, 80},
		enabled:        true,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat list of collectors
	auto := promauto.With(m.registry)

	m.matchesApplied = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matches_applied_total",
		Help:      "Total number of match records applied by the rating engine",
	}, []string{"result"})

	m.titleBouts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "title_bouts_total",
		Help:      "Total number of title bouts applied with the fixed title K-factor",
	})

	m.inactivityPenalties = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inactivity_penalties_total",
		Help:      "Total number of ring-rust penalties applied",
	})

	m.ratingDelta = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rating_delta_points",
		Help:      "Absolute rating change per competitor per match",
		Buckets:   m.deltaBuckets,
	})

	m.simulationRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "simulation_runs_total",
		Help:      "Total number of completed simulation passes",
	})

	m.simulationDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "simulation_duration_milliseconds",
		Help:      "Wall time of a full simulation pass in milliseconds",
		Buckets:   []float64{1, 5, 10, 50, 100, 250, 500, 1000, 5000},
	})

	m.competitors = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "competitors",
		Help:      "Number of competitors in the published snapshot",
	})

	m.ratings = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "competitor_category_ratings",
		Help:      "Number of (competitor, category) ratings in the published snapshot",
	})

	m.categories = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "categories",
		Help:      "Number of distinct categories in the published snapshot",
	})

	m.ingestRows = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_rows_total",
		Help:      "Match rows read from the data file by status",
	}, []string{"status"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Errors by component and type",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_usage_bytes",
		Help:      "Allocated heap bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Number of goroutines",
	})
}

// RecordMatchApplied counts an applied match and observes both rating changes.
func (m *Manager) RecordMatchApplied(noContest, title bool, deltaA, deltaB float64) {
	if !m.enabled {
		return
	}
	result := ResultDecisive
	if noContest {
		result = ResultNoContest
	}
	m.matchesApplied.WithLabelValues(result).Inc()
	if title {
		m.titleBouts.Inc()
	}
	m.ratingDelta.Observe(math.Abs(deltaA))
	m.ratingDelta.Observe(math.Abs(deltaB))
}

// RecordInactivityPenalty counts one ring-rust penalty.
func (m *Manager) RecordInactivityPenalty() {
	if m.enabled {
		m.inactivityPenalties.Inc()
	}
}

// RecordSimulation records a completed pass and the size of its snapshot.
func (m *Manager) RecordSimulation(durationMs float64, competitors, ratings, categories int) {
	if !m.enabled {
		return
	}
	m.simulationRuns.Inc()
	m.simulationDuration.Observe(durationMs)
	m.competitors.Set(float64(competitors))
	m.ratings.Set(float64(ratings))
	m.categories.Set(float64(categories))
}

// RecordIngestRow counts a data row by status.
func (m *Manager) RecordIngestRow(status string) {
	if m.enabled {
		m.ingestRows.WithLabelValues(status).Inc()
	}
}

// RecordHTTPRequest records an HTTP request and its duration.
func (m *Manager) RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !m.enabled {
		return
	}
	m.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	m.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordError counts an error for a component.
func (m *Manager) RecordError(component, errorType string) {
	if m.enabled {
		m.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// UpdateSystem sets process gauges.
func (m *Manager) UpdateSystem(memBytes uint64, goroutines int) {
	if !m.enabled {
		return
	}
	m.systemMemoryUsage.Set(float64(memBytes))
	m.systemGoroutineCount.Set(float64(goroutines))
}

// Package-level shortcuts on the global manager.

// RecordMatchApplied records an applied match on the global manager.
func RecordMatchApplied(noContest, title bool, deltaA, deltaB float64) {
	globalManager.RecordMatchApplied(noContest, title, deltaA, deltaB)
}

// RecordInactivityPenalty records a ring-rust penalty on the global manager.
func RecordInactivityPenalty() { globalManager.RecordInactivityPenalty() }

// RecordSimulation records a simulation pass on the global manager.
func RecordSimulation(durationMs float64, competitors, ratings, categories int) {
	globalManager.RecordSimulation(durationMs, competitors, ratings, categories)
}

// RecordIngestRow records an ingested row on the global manager.
func RecordIngestRow(status string) { globalManager.RecordIngestRow(status) }

// RecordHTTPRequest records an HTTP request on the global manager.
func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequest(endpoint, method, statusCode, durationMs)
}

// RecordError records an error on the global manager.
func RecordError(component, errorType string) { globalManager.RecordError(component, errorType) }

// UpdateSystem sets process gauges on the global manager.
func UpdateSystem(memBytes uint64, goroutines int) { globalManager.UpdateSystem(memBytes, goroutines) }

// GetRegistry returns the custom Prometheus registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Totals gathers the registry and returns counter and gauge values summed
// across label sets, keyed by fully-qualified metric name.
func Totals(g prometheus.Gatherer) (map[string]float64, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrGatherFailed, err)
	}
	out := make(map[string]float64, len(families))
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				out[mf.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				out[mf.GetName()] += metric.GetGauge().GetValue()
			}
		}
	}
	return out, nil
}
