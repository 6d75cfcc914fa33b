// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for:
// - Recommendation and similarity requests
// - Snapshot (matrix) builds
// - Response cache and result store efficiency
// - Dataset fetching and its circuit breaker
// - DuckDB queries
// - API endpoint latency and throughput

var (
	// Recommendation Metrics
	RecommendRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_recommend_requests_total",
			Help: "Total recommendation requests by outcome status",
		},
		[]string{"operation", "status"}, // operation: "recommend", "similar"
	)

	RecommendDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_recommend_duration_seconds",
			Help:    "Duration of recommendation computations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	RecommendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_recommend_errors_total",
			Help: "Total recommendation errors by kind",
		},
		[]string{"kind"}, // "invalid_request", "not_loaded", "store", "internal"
	)

	// Snapshot Metrics
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "animerec_snapshot_build_duration_seconds",
			Help:    "Duration of rating matrix builds in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	SnapshotLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_snapshot_loads_total",
			Help: "Total snapshot load attempts by result",
		},
		[]string{"result"}, // "success", "error"
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_snapshot_version",
			Help: "Version of the currently published snapshot",
		},
	)

	MatrixUsers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_matrix_users",
			Help: "Rows in the current rating matrix",
		},
	)

	MatrixItems = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_matrix_items",
			Help: "Columns in the current rating matrix",
		},
	)

	MatrixNonZero = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_matrix_nonzero_cells",
			Help: "Rated cells in the current rating matrix",
		},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_hits_total",
			Help: "Total cache hits by layer",
		},
		[]string{"layer"}, // "memory", "store"
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "animerec_cache_misses_total",
			Help: "Total requests computed from the matrix after missing every cache layer",
		},
	)

	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_store_operations_total",
			Help: "Total result store operations",
		},
		[]string{"operation", "result"}, // operation: "get", "put", "gc"
	)

	// Precompute Metrics
	PrecomputeUsers = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_precompute_users_total",
			Help: "Users processed by the precompute job",
		},
		[]string{"result"},
	)

	PrecomputeLastRun = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "animerec_precompute_last_run_timestamp",
			Help: "Unix timestamp of the last completed precompute run",
		},
	)

	// Dataset Metrics
	DatasetFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_dataset_fetches_total",
			Help: "Total remote dataset downloads by result",
		},
		[]string{"file", "result"},
	)

	DatasetRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_dataset_records_total",
			Help: "Dataset records read by file and disposition",
		},
		[]string{"file", "disposition"}, // "loaded", "unrated", "invalid"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_circuit_breaker_transitions_total",
			Help: "Total circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Database Metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of active API requests",
		},
	)

	// Application Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordRecommendation records a completed similarity or recommendation call.
func RecordRecommendation(operation, status string, duration time.Duration) {
	RecommendRequests.WithLabelValues(operation, status).Inc()
	RecommendDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordRecommendError records a failed request.
func RecordRecommendError(kind string) {
	RecommendErrors.WithLabelValues(kind).Inc()
}

// RecordSnapshotLoad records a snapshot build and, on success, the new
// matrix dimensions.
func RecordSnapshotLoad(duration time.Duration, version int64, users, items, nonZero int, err error) {
	SnapshotBuildDuration.Observe(duration.Seconds())
	if err != nil {
		SnapshotLoads.WithLabelValues("error").Inc()
		return
	}
	SnapshotLoads.WithLabelValues("success").Inc()
	SnapshotVersion.Set(float64(version))
	MatrixUsers.Set(float64(users))
	MatrixItems.Set(float64(items))
	MatrixNonZero.Set(float64(nonZero))
}

// RecordCacheHit records a hit in the given cache layer.
func RecordCacheHit(layer string) {
	CacheHits.WithLabelValues(layer).Inc()
}

// RecordCacheMiss records a request that missed every cache layer.
func RecordCacheMiss() {
	CacheMisses.Inc()
}

// RecordStoreOperation records a result store operation.
func RecordStoreOperation(operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(operation, result).Inc()
}

// RecordPrecompute records one precomputed user.
func RecordPrecompute(err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	PrecomputeUsers.WithLabelValues(result).Inc()
}

// RecordPrecomputeRun marks the completion time of a precompute pass.
func RecordPrecomputeRun() {
	PrecomputeLastRun.Set(float64(time.Now().Unix()))
}

// RecordDatasetFetch records a remote dataset download attempt.
func RecordDatasetFetch(file string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	DatasetFetches.WithLabelValues(file, result).Inc()
}

// RecordDatasetRecords adds parsed record counts for a dataset file.
func RecordDatasetRecords(file string, loaded, unrated, invalid int) {
	DatasetRecords.WithLabelValues(file, "loaded").Add(float64(loaded))
	DatasetRecords.WithLabelValues(file, "unrated").Add(float64(unrated))
	DatasetRecords.WithLabelValues(file, "invalid").Add(float64(invalid))
}

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
