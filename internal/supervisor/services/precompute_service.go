// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Recommender is the engine surface precomputation needs.
// Satisfied by *recommend.Engine.
type Recommender interface {
	Snapshot() *recommend.Snapshot
	Recommend(ctx context.Context, req recommend.Request) (*recommend.Response, error)
}

// PrecomputeConfig holds configuration for the precompute service.
type PrecomputeConfig struct {
	// Users is how many of the most active users to precompute.
	// Default: 100
	Users int

	// RatePerSecond throttles computations. 0 means unlimited.
	RatePerSecond float64

	// Burst is the limiter burst size. Default: 1
	Burst int

	// Interval repeats a pass on the same snapshot. 0 runs once per
	// snapshot version.
	Interval time.Duration

	// PollInterval is how often the service checks for a new snapshot.
	// Default: 10s
	PollInterval time.Duration
}

// PrecomputeResult summarizes one precompute pass.
type PrecomputeResult struct {
	Fingerprint     string         `json:"fingerprint"`
	SnapshotVersion int64          `json:"snapshot_version"`
	Users           int            `json:"users"`
	Computed        int            `json:"computed"`
	CacheHits       int            `json:"cache_hits"`
	Failed          int            `json:"failed"`
	ByStatus        map[string]int `json:"by_status"`
	Duration        time.Duration  `json:"duration"`
}

// PrecomputeService warms the result caches for the most active users of
// each snapshot. Requests go through the engine, so every OK response is
// written to the memory cache and the persistent store.
type PrecomputeService struct {
	engine Recommender
	config PrecomputeConfig
	logger zerolog.Logger
	name   string

	lastVersion int64
	lastRun     time.Time
}

// NewPrecomputeService creates a new precompute service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPrecomputeService(engine Recommender, cfg PrecomputeConfig, logger zerolog.Logger) *PrecomputeService {
	if cfg.Users <= 0 {
		cfg.Users = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	return &PrecomputeService{
		engine: engine,
		config: cfg,
		logger: logger.With().Str("service", "precompute").Logger(),
		name:   "precompute",
	}
}

// Serve implements suture.Service.
func (s *PrecomputeService) Serve(ctx context.Context) error {
	s.logger.Info().
		Int("users", s.config.Users).
		Float64("rate_per_second", s.config.RatePerSecond).
		Dur("interval", s.config.Interval).
		Msg("precompute service starting")

	ticker := time.NewTicker(s.config.PollInterval)
	defer ticker.Stop()

	for {
		if s.due() {
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("precompute pass failed")
			}
		}

		select {
		case <-ctx.Done():
			s.logger.Info().Msg("precompute service shutting down")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// due reports whether a pass should run now.
func (s *PrecomputeService) due() bool {
	snap := s.engine.Snapshot()
	if snap == nil {
		return false
	}
	if snap.Version != s.lastVersion {
		return true
	}
	return s.config.Interval > 0 && time.Since(s.lastRun) >= s.config.Interval
}

// RunOnce precomputes recommendations for the most active users of the
// current snapshot. A failed user is counted and skipped; only context
// cancellation and a missing snapshot abort the pass.
func (s *PrecomputeService) RunOnce(ctx context.Context) (*PrecomputeResult, error) {
	snap := s.engine.Snapshot()
	if snap == nil {
		return nil, recommend.ErrNotLoaded
	}

	limit := rate.Inf
	if s.config.RatePerSecond > 0 {
		limit = rate.Limit(s.config.RatePerSecond)
	}
	limiter := rate.NewLimiter(limit, s.config.Burst)

	start := time.Now()
	users := snap.Matrix.MostActiveUsers(s.config.Users)
	result := &PrecomputeResult{
		Fingerprint:     snap.Fingerprint,
		SnapshotVersion: snap.Version,
		Users:           len(users),
		ByStatus:        make(map[string]int),
	}

	s.logger.Info().
		Int("users", len(users)).
		Int64("snapshot_version", snap.Version).
		Msg("precompute pass starting")

	for i, userID := range users {
		if err := limiter.Wait(ctx); err != nil {
			return result, fmt.Errorf("precompute interrupted after %d users: %w", i, err)
		}

		resp, err := s.engine.Recommend(ctx, recommend.Request{
			UserID:    userID,
			RequestID: fmt.Sprintf("precompute-%d-%d", snap.Version, userID),
		})
		metrics.RecordPrecompute(err)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Failed++
			s.logger.Debug().Err(err).Int("user_id", userID).Msg("precompute failed for user")
			continue
		}

		result.ByStatus[resp.Status.String()]++
		if resp.Metadata.CacheHit {
			result.CacheHits++
		} else {
			result.Computed++
		}
	}

	result.Duration = time.Since(start)
	s.lastVersion = snap.Version
	s.lastRun = time.Now()
	metrics.RecordPrecomputeRun()

	s.logger.Info().
		Int("computed", result.Computed).
		Int("cache_hits", result.CacheHits).
		Int("failed", result.Failed).
		Dur("duration", result.Duration).
		Msg("precompute pass complete")

	return result, nil
}

// String returns the service name for logging.
func (s *PrecomputeService) String() string {
	return s.name
}
