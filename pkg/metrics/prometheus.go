// Package metrics provides Prometheus metrics for the campus AI service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const defaultRefreshInterval = 10 * time.Second

// Latency buckets in milliseconds. Remote inference can take tens of seconds
// while a cold model loads.
var defaultLatencyBucketsMs = []float64{5, 25, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 35000}

// Manager owns every Prometheus collector exposed by the service.
type Manager struct {
	namespace        string
	subsystem        string
	latencyBucketsMs []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Inference
	inferenceRequests *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	accessConfigured  prometheus.Gauge

	// Capability outcomes
	capabilityResults *prometheus.CounterVec
	fallbacks         *prometheus.CounterVec
	safetyEscalations prometheus.Counter

	// Matching
	matchCandidates    prometheus.Histogram
	embeddingBatchTime prometheus.Histogram

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var customRegistry *prometheus.Registry //nolint:gochecknoglobals // keeps default Go collectors out

func init() { //nolint:gochecknoinits // global metrics setup
	Init()
}

// Init replaces the global manager and its registry. Call it once at
// startup, before GetRegistry is handed to an HTTP handler.
func Init(opts ...Option) {
	customRegistry = prometheus.NewRegistry()
	all := make([]Option, 0, len(opts)+1)
	all = append(all, opts...)
	globalManager = NewManager(append(all, WithPrometheusRegistry(customRegistry))...)
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "campusai",
		subsystem:        "core",
		latencyBucketsMs: defaultLatencyBucketsMs,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	}, labels)
}

func (m *Manager) histogramVec(name, help string, buckets []float64, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	}, labels)
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help,
		})
	}

	m.inferenceRequests = m.counterVec("inference_requests_total",
		"Remote inference attempts by capability, model and outcome", "capability", "model", "outcome")
	m.inferenceDuration = m.histogramVec("inference_request_duration_ms",
		"Remote inference latency in milliseconds", m.latencyBucketsMs, "capability", "model")
	m.accessConfigured = gauge("inference_access_configured",
		"1 when an inference access token is configured, 0 in local-only mode")

	m.capabilityResults = m.counterVec("capability_results_total",
		"Capability results by the path that produced them (remote, fallback, fast_path, safety)", "capability", "path")
	m.fallbacks = m.counterVec("fallback_total",
		"Local fallbacks taken, by capability and failure reason", "capability", "reason")
	m.safetyEscalations = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "safety_escalations_total",
		Help: "Check-ins answered with the crisis response",
	})

	m.matchCandidates = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "match_candidates",
		Help:    "Opportunities submitted per ranking call",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
	m.embeddingBatchTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "embedding_batch_duration_ms",
		Help: "Wall time of one profile+opportunities embedding fan-out", Buckets: m.latencyBucketsMs,
	})

	m.httpRequests = m.counterVec("http_requests_total",
		"HTTP requests by endpoint, method and status code", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_ms",
		"HTTP request latency in milliseconds", m.latencyBucketsMs, "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total",
		"Errors by component and type", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total",
		"Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total",
		"Errors by endpoint, method and type", "endpoint", "method", "error_type")

	m.systemMemoryUsage = gauge("system_memory_bytes", "Heap bytes allocated")
	m.systemGoroutineCount = gauge("system_goroutines", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: "system_gc_pause_ms",
		Help: "Average GC pause in milliseconds", Buckets: prometheus.DefBuckets,
	})
}

// Inference metrics.

// RecordInferenceRequest counts one remote attempt. outcome is "ok" or an error kind.
func RecordInferenceRequest(capability, model, outcome string) {
	if !globalManager.enabled {
		return
	}
	globalManager.inferenceRequests.WithLabelValues(capability, model, outcome).Inc()
}

// RecordInferenceDuration records remote attempt latency.
func RecordInferenceDuration(capability, model string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.inferenceDuration.WithLabelValues(capability, model).Observe(latencyMs)
}

// SetAccessConfigured reports whether remote inference is configured. It is a
// startup gauge and records even when the domain recorders are off.
func SetAccessConfigured(ok bool) {
	v := 0.0
	if ok {
		v = 1
	}
	globalManager.accessConfigured.Set(v)
}

// Capability metrics.

// RecordCapabilityResult counts a finished capability call by path.
func RecordCapabilityResult(capability, path string) {
	if !globalManager.enabled {
		return
	}
	globalManager.capabilityResults.WithLabelValues(capability, path).Inc()
}

// RecordFallback counts a local fallback and why it happened.
func RecordFallback(capability, reason string) {
	if !globalManager.enabled {
		return
	}
	globalManager.fallbacks.WithLabelValues(capability, reason).Inc()
}

// RecordSafetyEscalation counts a crisis response.
func RecordSafetyEscalation() {
	if !globalManager.enabled {
		return
	}
	globalManager.safetyEscalations.Inc()
}

// Matching metrics.

// RecordMatchCandidates observes the size of a ranking request.
func RecordMatchCandidates(n int) {
	if !globalManager.enabled {
		return
	}
	globalManager.matchCandidates.Observe(float64(n))
}

// RecordEmbeddingBatchDuration observes the wall time of an embedding fan-out.
func RecordEmbeddingBatchDuration(latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.embeddingBatchTime.Observe(latencyMs)
}

// HTTP metrics.

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System metrics.

// UpdateSystemMemoryUsage sets the heap usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RefreshInterval reports how often the process should refresh system gauges.
func RefreshInterval() time.Duration {
	return globalManager.RefreshInterval()
}

// Enabled reports whether the global domain recorders are on.
func Enabled() bool {
	return globalManager.Enabled()
}
