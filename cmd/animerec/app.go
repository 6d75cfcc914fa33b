// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/api"
	"github.com/tomtom215/animerec/internal/config"
	"github.com/tomtom215/animerec/internal/database"
	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/middleware"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/store"
	"github.com/tomtom215/animerec/internal/supervisor"
	"github.com/tomtom215/animerec/internal/supervisor/services"
)

// Performance monitor sizing.
const (
	perfMaxSamples    = 1000
	perfSlowThreshold = 500 * time.Millisecond
)

// app holds the components shared by every run mode.
type app struct {
	cfg     *config.Config
	engine  *recommend.Engine
	source  recommend.DataSource
	csv     *dataset.CSVSource
	stats   api.StatsProvider
	db      *database.DB
	store   *store.Store
	handler *api.Handler
	logger  zerolog.Logger
}

// newApp builds the data source, engine and optional result store.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	engineCfg, err := cfg.RecommendConfig()
	if err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}
	engine, err := recommend.NewEngine(engineCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	a := &app{cfg: cfg, engine: engine, logger: logger}

	csvSource, err := dataset.NewCSVSource(cfg.DatasetConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("create dataset source: %w", err)
	}
	a.csv = csvSource

	switch cfg.Data.Backend {
	case config.BackendDuckDB:
		db, err := database.Open(cfg.DatabaseConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		a.db = db
		a.source = database.NewSource(db, csvSource)
		a.stats = db
		logging.Info().Str("path", db.Path()).Msg("DuckDB backend enabled")
	default:
		a.source = csvSource
		a.stats = csvSource
	}

	if cfg.Store.Enabled {
		st, err := store.Open(cfg.StoreConfig(), logger)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("open result store: %w", err)
		}
		a.store = st
		engine.SetResultStore(st)
		logging.Info().Str("path", cfg.Store.Path).Dur("ttl", cfg.Store.TTL).Msg("Result store enabled")
	}

	return a, nil
}

// Close stops background reloads, then releases the result store and the
// database they write through.
func (a *app) Close() {
	if a.handler != nil {
		ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
		err := a.handler.Shutdown(ctx)
		cancel()
		if err != nil {
			logging.Error().Err(err).Msg("Background reload still running at shutdown")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing result store")
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}
}

// importDatabase refreshes the DuckDB tables from the dataset files. It is a
// no-op for the CSV backend.
func (a *app) importDatabase(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	ratingsPath, animePath, err := a.csv.LocalPaths(ctx)
	if err != nil {
		return err
	}
	report, err := a.db.Import(ctx, ratingsPath, animePath)
	if err != nil {
		return err
	}
	logging.Info().Interface("report", report).Msg("Dataset imported into DuckDB")
	return nil
}

func (a *app) precomputeConfig() services.PrecomputeConfig {
	return services.PrecomputeConfig{
		Users:         a.cfg.Precompute.Users,
		RatePerSecond: a.cfg.Precompute.RatePerSecond,
		Burst:         a.cfg.Precompute.Burst,
		Interval:      a.cfg.Precompute.Interval,
	}
}

// newHTTPServer assembles the router and the http.Server.
func (a *app) newHTTPServer() *http.Server {
	srv := a.cfg.Server
	perf := middleware.NewPerformanceMonitor(perfMaxSamples, perfSlowThreshold)

	handler := api.NewHandler(a.engine, a.source, a.stats, perf, api.HandlerConfig{
		MinRatingsPerItem: a.cfg.Matrix.MinRatingsPerItem,
		MaxRatingsPerUser: a.cfg.Matrix.MaxRatingsPerUser,
		Version:           version,
	})
	a.handler = handler

	mwCfg := api.DefaultChiMiddlewareConfig()
	if len(srv.CORSOrigins) > 0 {
		mwCfg.CORSAllowedOrigins = srv.CORSOrigins
	}
	if srv.RateLimitRequests > 0 {
		mwCfg.RateLimitRequests = srv.RateLimitRequests
	}
	if srv.RateLimitWindow > 0 {
		mwCfg.RateLimitWindow = srv.RateLimitWindow
	}
	mwCfg.RateLimitDisabled = srv.RateLimitDisabled

	router := api.NewRouter(handler, perf, api.RouterConfig{
		Middleware:     mwCfg,
		RequestTimeout: srv.RequestTimeout,
		AdminEnabled:   srv.AdminEnabled,
	})

	return &http.Server{
		Addr:              srv.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       srv.ReadTimeout,
		ReadHeaderTimeout: srv.ReadTimeout,
		WriteTimeout:      srv.WriteTimeout,
		IdleTimeout:       srv.IdleTimeout,
	}
}

// serve runs the supervisor tree until ctx is cancelled.
func serve(ctx context.Context, a *app, cfg *config.Config) error {
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	if cfg.Data.ReloadInterval > 0 {
		tree.AddDataService(services.NewReloadService(a.engine, a.source, services.ReloadServiceConfig{
			Interval: cfg.Data.ReloadInterval,
		}, a.logger))
		logging.Info().Dur("interval", cfg.Data.ReloadInterval).Msg("Periodic snapshot reload enabled")
	}

	if cfg.Store.Enabled || a.engine.GetConfig().Cache.Enabled {
		var maintained services.MaintainedStore
		if a.store != nil {
			maintained = a.store
		}
		tree.AddDataService(services.NewMaintenanceService(a.engine, maintained, cfg.Store.GCInterval, a.logger))
	}

	if cfg.Precompute.Enabled {
		tree.AddJobService(services.NewPrecomputeService(a.engine, a.precomputeConfig(), a.logger))
		logging.Info().Int("users", cfg.Precompute.Users).Msg("Precompute service enabled")
	}

	server := a.newHTTPServer()
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServerConfig{
		Addr:            server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, a.logger))

	logging.Info().
		Str("version", version).
		Bool("admin", cfg.Server.AdminEnabled).
		Msg("Starting Animerec")

	errCh := tree.ServeBackground(ctx)
	select {
	case err := <-errCh:
		if ctx.Err() == nil {
			return fmt.Errorf("supervisor tree stopped: %w", err)
		}
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, stopping services")
		<-errCh
	}

	if report, err := tree.UnstoppedServiceReport(); err == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Animerec stopped")
	return nil
}
