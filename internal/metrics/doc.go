// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package metrics provides Prometheus metrics collection and export for observability.

Metrics are registered with the default registry through promauto and are
updated via the Record* helpers so callers never touch label values directly.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:8080/metrics

# Available Metrics

Recommendation Metrics:
  - animerec_recommend_requests_total: requests by operation and status (counter)
  - animerec_recommend_duration_seconds: computation latency (histogram)
  - animerec_recommend_errors_total: failures by kind (counter)

Snapshot Metrics:
  - animerec_snapshot_build_duration_seconds: matrix build time (histogram)
  - animerec_snapshot_loads_total: load attempts by result (counter)
  - animerec_snapshot_version, animerec_matrix_users, animerec_matrix_items,
    animerec_matrix_nonzero_cells (gauges)

Cache Metrics:
  - animerec_cache_hits_total: hits by layer, memory or store (counter)
  - animerec_cache_misses_total (counter)
  - animerec_store_operations_total: badger operations (counter)

Dataset Metrics:
  - animerec_dataset_fetches_total, animerec_dataset_records_total (counters)
  - animerec_circuit_breaker_state (gauge), animerec_circuit_breaker_transitions_total (counter)

API Metrics:
  - api_requests_total, api_request_duration_seconds, api_active_requests
*/
package metrics
