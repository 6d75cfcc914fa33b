// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/recommend"
)

// CacheOwner is the engine surface maintenance needs.
// Satisfied by *recommend.Engine.
type CacheOwner interface {
	Snapshot() *recommend.Snapshot
	CleanupCache() int
}

// MaintainedStore is the result store surface maintenance needs.
// Satisfied by *store.Store.
type MaintainedStore interface {
	Prune(ctx context.Context, fingerprint string) (int, error)
	RunGC() error
}

// MaintenanceResult summarizes one maintenance pass.
type MaintenanceResult struct {
	ExpiredEntries int
	PrunedKeys     int
}

// MaintenanceService periodically drops expired memory cache entries,
// prunes store entries that belong to older snapshots and runs BadgerDB
// value log GC.
type MaintenanceService struct {
	engine   CacheOwner
	store    MaintainedStore
	interval time.Duration
	logger   zerolog.Logger
	name     string

	prunedFingerprint string
}

// NewMaintenanceService creates a new maintenance service. store may be nil
// when persistence is disabled. A non-positive interval selects 10m.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewMaintenanceService(engine CacheOwner, store MaintainedStore, interval time.Duration, logger zerolog.Logger) *MaintenanceService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &MaintenanceService{
		engine:   engine,
		store:    store,
		interval: interval,
		logger:   logger.With().Str("service", "maintenance").Logger(),
		name:     "store-maintenance",
	}
}

// Serve implements suture.Service.
func (s *MaintenanceService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.RunOnce(ctx); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("maintenance pass failed")
			}
		}
	}
}

// RunOnce performs a single maintenance pass. Pruning runs once per
// snapshot fingerprint.
func (s *MaintenanceService) RunOnce(ctx context.Context) (MaintenanceResult, error) {
	var result MaintenanceResult
	result.ExpiredEntries = s.engine.CleanupCache()

	if s.store == nil {
		return result, nil
	}

	var errs []error
	if snap := s.engine.Snapshot(); snap != nil && snap.Fingerprint != s.prunedFingerprint {
		n, err := s.store.Prune(ctx, snap.Fingerprint)
		if err != nil {
			errs = append(errs, fmt.Errorf("prune: %w", err))
		} else {
			result.PrunedKeys = n
			s.prunedFingerprint = snap.Fingerprint
		}
	}

	if err := s.store.RunGC(); err != nil {
		errs = append(errs, fmt.Errorf("gc: %w", err))
	}

	if result.ExpiredEntries > 0 || result.PrunedKeys > 0 {
		s.logger.Debug().
			Int("expired_entries", result.ExpiredEntries).
			Int("pruned_keys", result.PrunedKeys).
			Msg("maintenance pass complete")
	}
	return result, errors.Join(errs...)
}

// String returns the service name for logging.
func (s *MaintenanceService) String() string {
	return s.name
}
