// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/middleware"
	"github.com/tomtom215/animerec/internal/recommend"
)

// StatsProvider computes exploratory statistics. Satisfied by
// *dataset.CSVSource and *database.DB.
type StatsProvider interface {
	Stats(ctx context.Context, minRatingsPerItem, maxRatingsPerUser int) (*dataset.Stats, error)
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	// MinRatingsPerItem and MaxRatingsPerUser are passed to StatsProvider
	// so the filter summary matches the served matrix.
	MinRatingsPerItem int
	MaxRatingsPerUser int

	// ReloadTimeout bounds an admin-triggered rebuild. Default: 30m
	ReloadTimeout time.Duration

	// Version is reported by the health endpoint.
	Version string
}

// Handler serves the API endpoints.
type Handler struct {
	engine *recommend.Engine
	source recommend.DataSource
	stats  StatsProvider
	perf   *middleware.PerformanceMonitor
	config HandlerConfig

	startTime time.Time

	// statistics are recomputed only when the snapshot changes
	statsMu          sync.Mutex
	statsFingerprint string
	statsCached      *dataset.Stats

	// background reloads run on lifetime, which Shutdown cancels
	lifetime      context.Context
	cancelReloads context.CancelFunc
	reloadMu      sync.Mutex
	closed        bool
	reloads       sync.WaitGroup
}

// NewHandler creates a new handler. stats and perf may be nil, in which
// case their endpoints report SERVICE_UNAVAILABLE.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewHandler(engine *recommend.Engine, source recommend.DataSource, stats StatsProvider, perf *middleware.PerformanceMonitor, config HandlerConfig) *Handler {
	if config.ReloadTimeout <= 0 {
		config.ReloadTimeout = 30 * time.Minute
	}
	if config.Version == "" {
		config.Version = "dev"
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &Handler{
		engine:        engine,
		source:        source,
		stats:         stats,
		perf:          perf,
		config:        config,
		startTime:     time.Now(),
		lifetime:      lifetime,
		cancelReloads: cancel,
	}
}

// Wait blocks until background reloads started by the admin endpoint
// have finished.
func (h *Handler) Wait() {
	h.reloads.Wait()
}

// Shutdown cancels background reloads, refuses new ones and waits for the
// running ones to return or for ctx to expire. Call it before closing the
// data source.
func (h *Handler) Shutdown(ctx context.Context) error {
	h.reloadMu.Lock()
	h.closed = true
	h.reloadMu.Unlock()
	h.cancelReloads()

	done := make(chan struct{})
	go func() {
		h.reloads.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for background reloads: %w", ctx.Err())
	}
}

// startReload runs a rebuild in the background. It returns false once
// Shutdown has been called.
func (h *Handler) startReload(requestID string) bool {
	h.reloadMu.Lock()
	defer h.reloadMu.Unlock()
	if h.closed {
		return false
	}

	h.reloads.Add(1)
	go func() {
		defer h.reloads.Done()
		ctx, cancel := context.WithTimeout(h.lifetime, h.config.ReloadTimeout)
		defer cancel()
		if err := h.engine.Load(ctx, h.source); err != nil {
			logging.Warn().Err(err).Str("request_id", requestID).Msg("background reload failed")
		}
	}()
	return true
}

// parseIDParam parses a chi URL parameter as an integer. Returns false and
// writes a VALIDATION_ERROR when it is not one.
func parseIDParam(w http.ResponseWriter, r *http.Request, name, field string) (int, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, field+" must be an integer", err)
		return 0, false
	}
	return id, true
}

// parseIntQuery parses an optional integer query parameter. Absent or
// blank values yield 0.
func parseIntQuery(w http.ResponseWriter, r *http.Request, name string) (int, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, name+" must be an integer", err)
		return 0, false
	}
	return v, true
}
