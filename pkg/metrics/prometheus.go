// Package metrics provides Prometheus metrics for the goalwatch scoring service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// probabilityBuckets cover the clamped output range of the engine.
var probabilityBuckets = []float64{0.05, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 0.95} //nolint:gochecknoglobals // read-only buckets

// Manager manages all Prometheus metrics for the goalwatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Scoring
	scoringRequests    *prometheus.CounterVec
	scoringConfidence  *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	scoringLatency     prometheus.Histogram
	scoringProbability *prometheus.HistogramVec
	scoringErrors      prometheus.Counter

	// Ingestion
	recordsAccepted  prometheus.Counter
	recordsDuplicate prometheus.Counter
	recordsRejected  prometheus.Counter
	recordsStored    prometheus.Counter

	// Profile store
	recordsTotal               prometheus.Gauge
	profilesTotal              prometheus.Gauge
	profileRebuildDuration     prometheus.Histogram
	profileRebuildLastUnix     prometheus.Gauge
	profileRebuildCount        prometheus.Counter
	profileRebuildLastDuration prometheus.Gauge
	repositoryUpdateLatency    prometheus.Histogram
	repositoryQueryLatency     prometheus.Histogram

	// Live feed
	liveSnapshots prometheus.Gauge
	liveUpdates   prometheus.Counter

	// Queue
	queueSize              prometheus.Gauge
	queueCapacity          prometheus.Gauge
	queueUtilization       prometheus.Gauge
	queueEnqueueRate       prometheus.Counter
	queueDequeueRate       prometheus.Counter
	queueEnqueueErrors     prometheus.Counter
	queueProcessingLatency prometheus.Histogram

	// Worker
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "goalwatch",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		ConstLabels: m.customLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	if buckets == nil {
		buckets = m.histogramBuckets
	}
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        name,
		Help:        help,
		Buckets:     buckets,
		ConstLabels: m.customLabels,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.scoringRequests = auto.NewCounterVec(
		m.counterOpts("scoring_requests_total", "Score requests served, by result mode"),
		[]string{"mode"},
	)
	m.scoringConfidence = auto.NewCounterVec(
		m.counterOpts("scoring_confidence_total", "Per-entity results by confidence level"),
		[]string{"level"},
	)
	m.validationFailures = auto.NewCounterVec(
		m.counterOpts("scoring_validation_failures_total", "Score requests rejected as malformed, by field"),
		[]string{"field"},
	)
	m.scoringLatency = auto.NewHistogram(
		m.histogramOpts("scoring_latency_milliseconds", "End-to-end score latency in milliseconds", nil),
	)
	m.scoringProbability = auto.NewHistogramVec(
		m.histogramOpts("scoring_probability", "Distribution of reported probabilities", probabilityBuckets),
		[]string{"kind"},
	)
	m.scoringErrors = auto.NewCounter(
		m.counterOpts("scoring_errors_total", "Score requests that failed for reasons other than validation"),
	)

	m.recordsAccepted = auto.NewCounter(m.counterOpts("records_accepted_total", "Match records accepted for ingestion"))
	m.recordsDuplicate = auto.NewCounter(m.counterOpts("records_duplicate_total", "Match records dropped as duplicates"))
	m.recordsRejected = auto.NewCounter(m.counterOpts("records_rejected_total", "Match records rejected as invalid"))
	m.recordsStored = auto.NewCounter(m.counterOpts("records_stored_total", "Match records persisted by workers"))

	m.recordsTotal = auto.NewGauge(m.gaugeOpts("repository_records_total", "Match records held by the record store"))
	m.profilesTotal = auto.NewGauge(m.gaugeOpts("repository_profiles_total", "Profiles in the current snapshot"))
	m.profileRebuildDuration = auto.NewHistogram(
		m.histogramOpts("profile_rebuild_duration_milliseconds", "Profile snapshot rebuild duration in milliseconds", nil),
	)
	m.profileRebuildLastUnix = auto.NewGauge(m.gaugeOpts("profile_rebuild_last_unix", "Unix timestamp of the last profile rebuild"))
	m.profileRebuildCount = auto.NewCounter(m.counterOpts("profile_rebuild_count_total", "Profile snapshots published"))
	m.profileRebuildLastDuration = auto.NewGauge(
		m.gaugeOpts("profile_rebuild_last_duration_milliseconds", "Last profile rebuild duration in milliseconds"),
	)
	m.repositoryUpdateLatency = auto.NewHistogram(
		m.histogramOpts("repository_update_latency_milliseconds", "Record store write latency in milliseconds", nil),
	)
	m.repositoryQueryLatency = auto.NewHistogram(
		m.histogramOpts("repository_query_latency_milliseconds", "Record and profile query latency in milliseconds", nil),
	)

	m.liveSnapshots = auto.NewGauge(m.gaugeOpts("live_snapshots", "Live match snapshots currently held"))
	m.liveUpdates = auto.NewCounter(m.counterOpts("live_updates_total", "Live match snapshot updates received"))

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Current size of the ingestion queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum queue capacity"))
	m.queueUtilization = auto.NewGauge(m.gaugeOpts("queue_utilization_ratio", "Queue utilization ratio (size / capacity)"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Total number of records enqueued"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Total number of records dequeued"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Total number of enqueue errors"))
	m.queueProcessingLatency = auto.NewHistogram(
		m.histogramOpts("queue_processing_latency_milliseconds", "Queue operation latency in milliseconds", nil),
	)

	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Configured number of ingestion workers"))
	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Number of busy workers"))
	m.workerIdleCount = auto.NewGauge(m.gaugeOpts("worker_idle_count", "Number of idle workers"))
	m.workerProcessingLatency = auto.NewHistogram(
		m.histogramOpts("worker_processing_latency_milliseconds", "Worker processing latency in milliseconds", nil),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Total number of worker errors"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", nil),
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Total number of errors by component"),
		[]string{"component", "error_type"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Total number of errors by endpoint"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// Scoring Metrics Functions.

// RecordScoringRequest counts a served score request by mode.
func RecordScoringRequest(mode string) {
	globalManager.scoringRequests.WithLabelValues(mode).Inc()
}

// RecordConfidence counts a per-entity result by confidence level.
func RecordConfidence(level string) {
	globalManager.scoringConfidence.WithLabelValues(level).Inc()
}

// RecordValidationFailure counts a malformed score request by offending field.
func RecordValidationFailure(field string) {
	globalManager.validationFailures.WithLabelValues(field).Inc()
}

// RecordScoringLatency records scoring latency in milliseconds.
func RecordScoringLatency(latencyMs float64) {
	globalManager.scoringLatency.Observe(latencyMs)
}

// RecordProbability observes a reported probability; kind is "entity" or "union".
func RecordProbability(kind string, p float64) {
	globalManager.scoringProbability.WithLabelValues(kind).Observe(p)
}

// RecordScoringError increments the scoring errors counter.
func RecordScoringError() {
	globalManager.scoringErrors.Inc()
}

// Ingestion Metrics Functions.

// RecordRecordAccepted counts a match record accepted for ingestion.
func RecordRecordAccepted() {
	globalManager.recordsAccepted.Inc()
}

// RecordRecordDuplicate counts a duplicate match record.
func RecordRecordDuplicate() {
	globalManager.recordsDuplicate.Inc()
}

// RecordRecordRejected counts an invalid match record.
func RecordRecordRejected() {
	globalManager.recordsRejected.Inc()
}

// RecordRecordStored counts a match record persisted by a worker.
func RecordRecordStored() {
	globalManager.recordsStored.Inc()
}

// Repository Metrics Functions.

// UpdateRepositoryRecordsTotal sets the number of stored match records.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.recordsTotal.Set(float64(count))
}

// UpdateProfilesTotal sets the number of profiles in the live snapshot.
func UpdateProfilesTotal(count int) {
	globalManager.profilesTotal.Set(float64(count))
}

// RecordProfileRebuildDuration observes a profile rebuild duration.
func RecordProfileRebuildDuration(ms float64) {
	globalManager.profileRebuildDuration.Observe(ms)
}

// UpdateProfileRebuildLastDurationMs sets the last profile rebuild duration.
func UpdateProfileRebuildLastDurationMs(ms float64) {
	globalManager.profileRebuildLastDuration.Set(ms)
}

// UpdateProfileRebuildLastUnix sets the timestamp of the last profile rebuild.
func UpdateProfileRebuildLastUnix(ts float64) {
	globalManager.profileRebuildLastUnix.Set(ts)
}

// IncrementProfileRebuildCount counts a published profile snapshot.
func IncrementProfileRebuildCount() {
	globalManager.profileRebuildCount.Inc()
}

// RecordRepositoryUpdateLatency records record store write latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records store query latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Live Metrics Functions.

// UpdateLiveSnapshots sets the number of live snapshots held.
func UpdateLiveSnapshots(count int) {
	globalManager.liveSnapshots.Set(float64(count))
}

// RecordLiveUpdate counts a live snapshot update.
func RecordLiveUpdate() {
	globalManager.liveUpdates.Inc()
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// RecordQueueProcessingLatency records queue processing latency.
func RecordQueueProcessingLatency(latencyMs float64) {
	globalManager.queueProcessingLatency.Observe(latencyMs)
}

// Worker Metrics Functions.

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
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
