// Package metrics provides Prometheus metrics for the interview assistant service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default latency buckets in milliseconds. AI calls take seconds, HTTP and
// storage calls take milliseconds.
var defaultBuckets = []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Interview lifecycle
	interviewsStarted  prometheus.Counter
	interviewsFinished prometheus.Counter
	interviewsReset    prometheus.Counter
	answersRecorded    *prometheus.CounterVec
	submissionsDropped *prometheus.CounterVec
	finalScores        prometheus.Histogram
	candidatesTotal    prometheus.Gauge

	// AI gateway
	aiCalls   *prometheus.CounterVec
	aiLatency *prometheus.HistogramVec

	// Resume extraction
	resumeExtractions *prometheus.CounterVec

	// State storage
	storageOps     *prometheus.CounterVec
	storageLatency *prometheus.HistogramVec

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Completion event queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers publishing completion events
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter
	eventsPublished         *prometheus.CounterVec

	// Error tracking
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
	errorLatency         *prometheus.HistogramVec

	// System Performance Metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "interview",
		subsystem:        "assistant",
		histogramBuckets: defaultBuckets,
		enabled:          true,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) name(n string) string { return m.metricPrefix + n }

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name(name), Help: help, ConstLabels: m.customLabels,
		Buckets: m.histogramBuckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.interviewsStarted = auto.NewCounter(m.counterOpts("interviews_started_total", "Interviews started"))
	m.interviewsFinished = auto.NewCounter(m.counterOpts("interviews_finished_total", "Interviews completed and archived"))
	m.interviewsReset = auto.NewCounter(m.counterOpts("interviews_reset_total", "Sessions reset to idle"))
	m.answersRecorded = auto.NewCounterVec(m.counterOpts("answers_recorded_total", "Answers recorded by submission source"), []string{"source", "difficulty"})
	m.submissionsDropped = auto.NewCounterVec(m.counterOpts("submissions_dropped_total", "Submissions suppressed by the at-most-once guard or discarded as stale"), []string{"reason"})
	m.finalScores = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: m.name("final_score"), Help: "Distribution of final interview scores",
		ConstLabels: m.customLabels,
		Buckets:     prometheus.LinearBuckets(1, 1, 10),
	})
	m.candidatesTotal = auto.NewGauge(m.gaugeOpts("candidates_total", "Archived candidate records"))

	m.aiCalls = auto.NewCounterVec(m.counterOpts("ai_calls_total", "AI gateway calls by operation and outcome"), []string{"operation", "outcome"})
	m.aiLatency = auto.NewHistogramVec(m.histogramOpts("ai_latency_milliseconds", "AI gateway call latency in milliseconds"), []string{"operation"})

	m.resumeExtractions = auto.NewCounterVec(m.counterOpts("resume_extractions_total", "Resume extractions by format and outcome"), []string{"format", "outcome"})

	m.storageOps = auto.NewCounterVec(m.counterOpts("storage_operations_total", "State storage operations by backend, operation and outcome"), []string{"backend", "operation", "outcome"})
	m.storageLatency = auto.NewHistogramVec(m.histogramOpts("storage_latency_milliseconds", "State storage latency in milliseconds"), []string{"backend", "operation"})

	m.httpRequests = auto.NewCounterVec(m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"), []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds"), []string{"endpoint", "method", "status_code"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the completion event queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum completion event queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of completion events enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of completion events dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Completion events dropped at enqueue"))

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Number of completion event publishers"))
	m.workerProcessingLatency = auto.NewHistogram(m.histogramOpts("worker_processing_latency_milliseconds", "Completion event publish latency in milliseconds"))
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Completion event publish failures"))
	m.eventsPublished = auto.NewCounterVec(m.counterOpts("events_published_total", "Completion events published by sink"), []string{"sink"})

	m.errorRateByComponent = auto.NewCounterVec(m.counterOpts("errors_by_component_total", "Total number of errors by component and type"), []string{"component", "error_type"})
	m.errorRateByType = auto.NewCounterVec(m.counterOpts("errors_by_type_total", "Total number of errors by type and severity"), []string{"error_type", "severity"})
	m.errorRateByEndpoint = auto.NewCounterVec(m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint, method and type"), []string{"endpoint", "method", "error_type"})
	m.errorLatency = auto.NewHistogramVec(m.histogramOpts("error_latency_milliseconds", "Latency of operations that resulted in errors"), []string{"component", "error_type"})

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "Current system memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Current number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds"))
}

// Interview lifecycle.

// RecordInterviewStarted increments the started counter.
func RecordInterviewStarted() {
	if globalManager.enabled {
		globalManager.interviewsStarted.Inc()
	}
}

// RecordInterviewFinished counts an archived interview and its final score.
func RecordInterviewFinished(finalScore int) {
	if globalManager.enabled {
		globalManager.interviewsFinished.Inc()
		globalManager.finalScores.Observe(float64(finalScore))
	}
}

// RecordInterviewReset increments the reset counter.
func RecordInterviewReset() {
	if globalManager.enabled {
		globalManager.interviewsReset.Inc()
	}
}

// RecordAnswer counts a recorded answer by source (manual, timer) and difficulty.
func RecordAnswer(source, difficulty string) {
	if globalManager.enabled {
		globalManager.answersRecorded.WithLabelValues(source, difficulty).Inc()
	}
}

// RecordSubmissionDropped counts a submission that was not recorded.
func RecordSubmissionDropped(reason string) {
	if globalManager.enabled {
		globalManager.submissionsDropped.WithLabelValues(reason).Inc()
	}
}

// UpdateCandidatesTotal sets the archived candidate count.
func UpdateCandidatesTotal(count int) {
	if globalManager.enabled {
		globalManager.candidatesTotal.Set(float64(count))
	}
}

// AI gateway.

// RecordAICall records one gateway call.
func RecordAICall(operation, outcome string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.aiCalls.WithLabelValues(operation, outcome).Inc()
		globalManager.aiLatency.WithLabelValues(operation).Observe(latencyMs)
	}
}

// RecordResumeExtraction records one resume extraction.
func RecordResumeExtraction(format, outcome string) {
	if globalManager.enabled {
		globalManager.resumeExtractions.WithLabelValues(format, outcome).Inc()
	}
}

// RecordStorageOperation records a state load or save.
func RecordStorageOperation(backend, operation, outcome string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storageOps.WithLabelValues(backend, operation, outcome).Inc()
		globalManager.storageLatency.WithLabelValues(backend, operation).Observe(latencyMs)
	}
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	if globalManager.enabled {
		globalManager.queueUtilization.Set(utilization)
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueueRate.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeueRate.Inc()
	}
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.Inc()
	}
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrorRate.Inc()
	}
}

// RecordEventPublished counts a completion event delivered to a sink.
func RecordEventPublished(sink string) {
	if globalManager.enabled {
		globalManager.eventsPublished.WithLabelValues(sink).Inc()
	}
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// RecordErrorLatency records the latency of an operation that resulted in an error.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
	}
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
