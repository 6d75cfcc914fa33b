// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package api provides the JSON HTTP API for Animerec.

Routing uses go-chi/chi with go-chi/cors for CORS and go-chi/httprate for
per-IP rate limiting. Every response uses the same envelope:

	{
	  "status": "success",
	  "data": {...},
	  "metadata": {"timestamp": "...", "query_time_ms": 3, "request_id": "..."},
	  "error": {"code": "VALIDATION_ERROR", "message": "...", "details": {...}}
	}

# Endpoints

	GET  /api/v1/health                              liveness and snapshot presence
	GET  /api/v1/status                              snapshot and engine counters
	GET  /api/v1/stats                               exploratory dataset statistics
	GET  /api/v1/performance                         per-route latency percentiles
	GET  /api/v1/users/{userID}/similar?k=           nearest neighbors
	GET  /api/v1/users/{userID}/recommendations?k=&n=&type=
	GET  /api/v1/anime/{animeID}                     catalog entry
	POST /api/v1/admin/reload?wait=                  rebuild the snapshot (when enabled)
	GET  /metrics                                    Prometheus exposition

Non-OK recommendation outcomes (unknown user, no neighbors, no unseen
anime) are successful responses whose data carries the status and message.
Invalid parameters produce VALIDATION_ERROR with HTTP 400, and requests
before the first snapshot produce SERVICE_UNAVAILABLE with HTTP 503.
*/
package api
