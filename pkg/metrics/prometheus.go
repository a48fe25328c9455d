// Package metrics provides Prometheus metrics for the PSEPHOS simulation service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the PSEPHOS service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Core Business Metrics - What really matters for a simulation engine
	runsCompleted   prometheus.Counter
	runsCached      prometheus.Counter
	runsFailed      prometheus.Counter
	electionsByRule *prometheus.CounterVec
	electionLatency prometheus.Histogram
	runDuration     prometheus.Histogram
	runoffRounds    prometheus.Histogram
	rankingUpdates  prometheus.Counter

	// Fairness Metrics - Distribution of outcome quality across runs
	weightedFairness   prometheus.Histogram
	unweightedFairness prometheus.Histogram

	// Operational Health Metrics
	queueSize   prometheus.Gauge
	workerCount prometheus.Gauge
	totalRuns   prometheus.Gauge

	// Snapshot Metrics - Repository snapshot timings
	repositorySnapshotRebuildDuration prometheus.Histogram
	repositorySnapshotLastUnix        prometheus.Gauge
	repositorySnapshotCount           prometheus.Counter
	repositorySnapshotLastDurationMs  prometheus.Gauge

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Business Quality Metrics
	electionErrors prometheus.Counter
	rankingErrors  prometheus.Counter

	// Repository Metrics - Ranked run store management
	repositoryRecordsTotal  prometheus.Gauge
	repositoryUpdateLatency prometheus.Histogram
	repositoryQueryLatency  prometheus.Histogram

	// Queue Metrics - Job queue performance
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter
	queueDequeueErrors prometheus.Counter

	// Worker Metrics - Processing performance
	workerActiveCount       prometheus.Gauge
	workerIdleCount         prometheus.Gauge
	workerRunsPerSecond     prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Enhanced Error Metrics - Detailed error tracking
	errorRateByComponent *prometheus.CounterVec

	// System Metrics - Process health
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
		namespace:        "psephos",
		subsystem:        "simulation",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		metricPrefix:     "",
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)
	// Core Business Metrics - Focus on what drives simulation throughput
	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of simulation runs completed successfully",
	})

	m.runsCached = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_cached_total",
		Help:      "Total number of runs answered from the result cache (repeat parameter sets)",
	})

	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of simulation runs that ended in an error",
	})

	m.electionsByRule = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "elections_total",
			Help:      "Total number of elections decided, labelled by voting rule",
		},
		[]string{"rule"},
	)

	m.electionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "election_latency_milliseconds",
		Help:      "Histogram of election execution latency in milliseconds, population synthesis included (core performance metric)",
		Buckets:   m.histogramBuckets,
	})

	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "End-to-end simulation run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.runoffRounds = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runoff_rounds",
		Help:      "Number of runoff rounds needed per majority election",
		Buckets:   prometheus.LinearBuckets(1, 1, 10),
	})

	m.rankingUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_updates_total",
		Help:      "Total number of fairness ranking updates (indicates active exploration)",
	})

	// Fairness Metrics - Outcome quality distributions
	m.weightedFairness = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "weighted_fairness",
		Help:      "Distribution of vote-weighted fairness scores across completed runs",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	m.unweightedFairness = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "unweighted_fairness",
		Help:      "Distribution of winner-only fairness scores across completed runs",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})

	// Operational Health Metrics - System stability indicators
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the job queue (backlog indicator)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of active workers (processing capacity)",
	})

	m.totalRuns = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_runs",
		Help:      "Total number of runs tracked in the ranking (business scale)",
	})

	// HTTP Performance Metrics - User experience indicators
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
			Help:      "HTTP request duration in milliseconds (user experience)",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	// Business Quality Metrics - Error tracking for business impact
	m.electionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "election_errors_total",
		Help:      "Total number of election evaluation errors (business impact)",
	})

	m.rankingErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_errors_total",
		Help:      "Total number of ranking update errors (business impact)",
	})

	// Repository Metrics - Ranked run store management
	m.repositoryRecordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_records_total",
		Help:      "Total number of run records held by the repository",
	})

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Repository update operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Repository query operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Snapshot Metrics - Timing and frequency of repository snapshots
	m.repositorySnapshotRebuildDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshot_rebuild_duration_milliseconds",
		Help:      "Repository snapshot rebuild duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositorySnapshotLastUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshot_last_unix",
		Help:      "Unix timestamp of the last repository snapshot publish",
	})

	m.repositorySnapshotCount = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshot_count_total",
		Help:      "Total number of repository snapshots published",
	})

	m.repositorySnapshotLastDurationMs = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_snapshot_last_duration_milliseconds",
		Help:      "Last repository snapshot rebuild duration in milliseconds",
	})

	// Queue Metrics - Job queue performance
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Maximum queue capacity",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization_ratio",
		Help:      "Queue utilization ratio (current size / capacity)",
	})

	m.queueEnqueueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_total",
		Help:      "Total number of jobs enqueued",
	})

	m.queueDequeueRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_total",
		Help:      "Total number of jobs dequeued",
	})

	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueue_errors_total",
		Help:      "Total number of enqueue errors",
	})

	m.queueDequeueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeue_errors_total",
		Help:      "Total number of dequeue errors",
	})

	// Worker Metrics - Processing performance
	m.workerActiveCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_active_count",
		Help:      "Number of active workers",
	})

	m.workerIdleCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_idle_count",
		Help:      "Number of idle workers",
	})

	m.workerRunsPerSecond = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_runs_per_second",
		Help:      "Average runs processed per second by workers",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.workerErrorRate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker errors",
	})

	// Enhanced Error Metrics - Detailed error tracking
	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	// System Metrics - Process health
	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "Current heap memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Current number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_milliseconds",
		Help:      "Garbage collection pause time in milliseconds",
		Buckets:   m.histogramBuckets,
	})
}

// RecordRunCompleted increments the completed runs counter.
func RecordRunCompleted() {
	globalManager.runsCompleted.Inc()
}

// RecordRunCached increments the cached runs counter.
func RecordRunCached() {
	globalManager.runsCached.Inc()
}

// RecordRunFailed increments the failed runs counter.
func RecordRunFailed() {
	globalManager.runsFailed.Inc()
}

// RecordElection increments the election counter for a voting rule.
func RecordElection(rule string) {
	globalManager.electionsByRule.WithLabelValues(rule).Inc()
}

// RecordElectionLatency records how long one election execution took
// in milliseconds, synthesis through fairness scoring.
func RecordElectionLatency(latencyMs float64) {
	globalManager.electionLatency.Observe(latencyMs)
}

// RecordRunDuration records end-to-end run duration in milliseconds.
func RecordRunDuration(durationMs float64) {
	globalManager.runDuration.Observe(durationMs)
}

// RecordRunoffRounds records how many rounds a majority election needed.
func RecordRunoffRounds(rounds int) {
	globalManager.runoffRounds.Observe(float64(rounds))
}

// RecordRankingUpdate increments the ranking updates counter.
func RecordRankingUpdate() {
	globalManager.rankingUpdates.Inc()
}

// RecordWeightedFairness records a vote-weighted fairness score.
func RecordWeightedFairness(score float64) {
	globalManager.weightedFairness.Observe(score)
}

// RecordUnweightedFairness records a winner-only fairness score.
func RecordUnweightedFairness(score float64) {
	globalManager.unweightedFairness.Observe(score)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateTotalRuns sets the total tracked runs count.
func UpdateTotalRuns(count int) {
	globalManager.totalRuns.Set(float64(count))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordElectionError increments the election errors counter.
func RecordElectionError() {
	globalManager.electionErrors.Inc()
}

// RecordRankingError increments the ranking errors counter.
func RecordRankingError() {
	globalManager.rankingErrors.Inc()
}

// Repository Metrics Functions.

// UpdateRepositoryRecordsTotal sets the total number of run records.
func UpdateRepositoryRecordsTotal(count int) {
	globalManager.repositoryRecordsTotal.Set(float64(count))
}

// RecordRepositoryUpdateLatency records repository update operation latency.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	globalManager.repositoryUpdateLatency.Observe(latencyMs)
}

// RecordRepositoryQueryLatency records repository query operation latency.
func RecordRepositoryQueryLatency(latencyMs float64) {
	globalManager.repositoryQueryLatency.Observe(latencyMs)
}

// Snapshot Metrics Functions.

// RecordRepositorySnapshotRebuildDuration records a snapshot rebuild duration.
func RecordRepositorySnapshotRebuildDuration(durationMs float64) {
	globalManager.repositorySnapshotRebuildDuration.Observe(durationMs)
}

// UpdateRepositorySnapshotLastUnix sets the timestamp of the last snapshot publish.
func UpdateRepositorySnapshotLastUnix(unix float64) {
	globalManager.repositorySnapshotLastUnix.Set(unix)
}

// IncrementRepositorySnapshotCount increments the snapshot publish counter.
func IncrementRepositorySnapshotCount() {
	globalManager.repositorySnapshotCount.Inc()
}

// UpdateRepositorySnapshotLastDurationMs sets the last snapshot rebuild duration.
func UpdateRepositorySnapshotLastDurationMs(durationMs float64) {
	globalManager.repositorySnapshotLastDurationMs.Set(durationMs)
}

// Queue Metrics Functions.

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

// RecordQueueDequeueError increments the dequeue error counter.
func RecordQueueDequeueError() {
	globalManager.queueDequeueErrors.Inc()
}

// Worker Metrics Functions.

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// UpdateWorkerIdleCount sets the number of idle workers.
func UpdateWorkerIdleCount(count int) {
	globalManager.workerIdleCount.Set(float64(count))
}

// UpdateWorkerRunsPerSecond sets the average runs processed per second.
func UpdateWorkerRunsPerSecond(rate float64) {
	globalManager.workerRunsPerSecond.Set(rate)
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// Enhanced Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// System Metrics Functions.

// UpdateSystemMemoryUsage sets the current heap memory usage.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the current goroutine count.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records an average garbage collection pause in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
