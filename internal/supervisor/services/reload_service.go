// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/recommend"
)

// SnapshotLoader rebuilds the engine snapshot from a data source.
// Satisfied by *recommend.Engine.
type SnapshotLoader interface {
	Load(ctx context.Context, src recommend.DataSource) error
}

// ReloadServiceConfig holds configuration for the reload service.
type ReloadServiceConfig struct {
	// LoadOnStart rebuilds as soon as the service starts.
	LoadOnStart bool

	// Interval is how often to rebuild. Must be positive.
	Interval time.Duration

	// Timeout bounds a single rebuild. Default: 30m
	Timeout time.Duration
}

// ReloadService periodically rebuilds the recommendation snapshot so that
// updated dataset files are picked up without a restart.
type ReloadService struct {
	loader SnapshotLoader
	source recommend.DataSource
	config ReloadServiceConfig
	logger zerolog.Logger
	name   string
}

// NewReloadService creates a new reload service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewReloadService(loader SnapshotLoader, src recommend.DataSource, cfg ReloadServiceConfig, logger zerolog.Logger) *ReloadService {
	if cfg.Interval <= 0 {
		cfg.Interval = 24 * time.Hour
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &ReloadService{
		loader: loader,
		source: src,
		config: cfg,
		logger: logger.With().Str("service", "reload").Logger(),
		name:   "snapshot-reload",
	}
}

// Serve implements suture.Service. Failed rebuilds are logged and retried
// on the next tick; the previous snapshot keeps serving meanwhile.
func (s *ReloadService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("load_on_start", s.config.LoadOnStart).
		Dur("interval", s.config.Interval).
		Str("source", s.source.Name()).
		Msg("reload service starting")

	if s.config.LoadOnStart {
		s.reload(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("reload service shutting down")
			return ctx.Err()

		case <-ticker.C:
			s.reload(ctx)
		}
	}
}

func (s *ReloadService) reload(ctx context.Context) {
	loadCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	err := s.loader.Load(loadCtx, s.source)
	switch {
	case err == nil:
		s.logger.Info().Dur("duration", time.Since(start)).Msg("snapshot reloaded")
	case errors.Is(err, recommend.ErrLoadInProgress):
		s.logger.Debug().Msg("reload skipped, another load is running")
	case ctx.Err() != nil:
		// shutting down
	default:
		s.logger.Warn().Err(err).Msg("scheduled reload failed, keeping previous snapshot")
	}
}

// String returns the service name for logging.
func (s *ReloadService) String() string {
	return s.name
}
