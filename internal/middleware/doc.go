// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package middleware provides HTTP middleware for the Animerec API.

All middleware uses the chi signature func(http.Handler) http.Handler.

Key Components:

  - RequestID: X-Request-ID propagation into the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - Compression: gzip for clients that accept it
  - PerformanceMonitor: sliding window of recent requests with per-route
    percentiles, served at /api/v1/performance

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perf.Middleware)
	r.Use(middleware.Compression)

Route labels are read after the handler returns, when chi has filled in
the route context. Requests that match no route are labelled "unmatched".

Thread Safety:

All middleware is safe for concurrent use. PerformanceMonitor guards its
window with a sync.RWMutex.
*/
package middleware
