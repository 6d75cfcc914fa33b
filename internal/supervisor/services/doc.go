// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package services provides suture.Service wrappers for Animerec components.

Each wrapper implements suture.Service, returns ctx.Err() on cancellation
and identifies itself through fmt.Stringer for supervisor logs.

# Available Services

HTTPServerService:
  - Runs *http.Server and shuts it down gracefully on cancellation

ReloadService:
  - Rebuilds the engine snapshot from the configured data source on an
    interval; failures keep the previous snapshot serving

PrecomputeService:
  - Warms the memory cache and the result store for the most active
    users, throttled with golang.org/x/time/rate
  - Runs once per snapshot version, or on an interval when configured
  - RunOnce is also used directly by the precompute CLI mode

MaintenanceService:
  - Drops expired memory cache entries
  - Prunes result store keys from older snapshots and runs BadgerDB GC

# Usage

	tree.AddDataService(services.NewReloadService(engine, source, services.ReloadServiceConfig{
	    Interval: cfg.Data.ReloadInterval,
	}, logging.Logger()))
	tree.AddJobService(services.NewPrecomputeService(engine, services.PrecomputeConfig{
	    Users:         cfg.Precompute.Users,
	    RatePerSecond: cfg.Precompute.RatePerSecond,
	}, logging.Logger()))
*/
package services
