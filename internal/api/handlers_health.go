// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/animerec/internal/cache"
	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/middleware"
	"github.com/tomtom215/animerec/internal/recommend"
)

// HealthStatus is the data of GET /api/v1/health.
type HealthStatus struct {
	Status          string  `json:"status"`
	Version         string  `json:"version"`
	SnapshotLoaded  bool    `json:"snapshot_loaded"`
	SnapshotVersion int64   `json:"snapshot_version"`
	Uptime          float64 `json:"uptime_seconds"`
}

// Health handles GET /api/v1/health. The status is "degraded" until the
// first snapshot is published; the HTTP status stays 200 so liveness
// probes pass while data loads.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:  "healthy",
		Version: h.config.Version,
		Uptime:  time.Since(h.startTime).Seconds(),
	}
	if snap := h.engine.Snapshot(); snap != nil {
		health.SnapshotLoaded = true
		health.SnapshotVersion = snap.Version
	} else {
		health.Status = "degraded"
	}

	respondSuccess(w, r, health, Metadata{})
}

// StatusResponse is the data of GET /api/v1/status.
type StatusResponse struct {
	Load   recommend.LoadStatus `json:"load"`
	Engine recommend.Metrics    `json:"engine"`
	Cache  cache.Stats          `json:"cache"`
	Config *recommend.Config    `json:"config"`
	Source string               `json:"source"`
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, StatusResponse{
		Load:   h.engine.GetStatus(),
		Engine: h.engine.GetMetrics(),
		Cache:  h.engine.CacheStats(),
		Config: h.engine.GetConfig(),
		Source: h.source.Name(),
	}, Metadata{})
}

// Stats handles GET /api/v1/stats. Results are cached per snapshot
// fingerprint.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if h.stats == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Statistics are not available for this data source", nil)
		return
	}

	snap := h.engine.Snapshot()
	if snap == nil {
		h.respondEngineError(w, r, recommend.ErrNotLoaded)
		return
	}

	stats, cached, err := h.cachedStats(r, snap.Fingerprint)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to compute statistics", err)
		return
	}

	respondSuccess(w, r, stats, Metadata{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Cached:      cached,
	})
}

func (h *Handler) cachedStats(r *http.Request, fingerprint string) (*dataset.Stats, bool, error) {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	if h.statsCached != nil && h.statsFingerprint == fingerprint {
		return h.statsCached, true, nil
	}

	stats, err := h.stats.Stats(r.Context(), h.config.MinRatingsPerItem, h.config.MaxRatingsPerUser)
	if err != nil {
		return nil, false, err
	}
	h.statsCached = stats
	h.statsFingerprint = fingerprint
	return stats, false, nil
}

// PerformanceResponse is the data of GET /api/v1/performance.
type PerformanceResponse struct {
	Routes []middleware.RouteStats    `json:"routes"`
	Recent []middleware.RequestSample `json:"recent"`
}

// Performance handles GET /api/v1/performance?recent=
func (h *Handler) Performance(w http.ResponseWriter, r *http.Request) {
	if h.perf == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Performance monitoring is disabled", nil)
		return
	}

	recent, ok := parseIntQuery(w, r, "recent")
	if !ok {
		return
	}
	if recent == 0 {
		recent = 20
	}

	data := PerformanceResponse{
		Routes: h.perf.Stats(),
		Recent: h.perf.Recent(recent),
	}
	if data.Routes == nil {
		data.Routes = []middleware.RouteStats{}
	}
	if data.Recent == nil {
		data.Recent = []middleware.RequestSample{}
	}
	respondSuccess(w, r, data, Metadata{})
}
