// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package supervisor provides process supervision for Animerec using suture v4.

The supervisor tree organizes the long-running services of the server into
three layers so a failure in one does not take down the others:

	RootSupervisor ("animerec")
	├── DataSupervisor ("data-layer")
	│   ├── ReloadService (if DATA_RELOAD_INTERVAL > 0)
	│   └── MaintenanceService (if STORE_ENABLED)
	├── JobsSupervisor ("jobs-layer")
	│   └── PrecomputeService (if PRECOMPUTE_ENABLED)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's failure decay and backoff.
Supervisor events are logged through sutureslog, which the caller wires to
the zerolog-backed slog handler from the logging package.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}

	tree.AddDataService(services.NewReloadService(engine, source, services.ReloadServiceConfig{
	    Interval: cfg.Data.ReloadInterval,
	}, logger))
	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServerConfig{
	    Addr:            server.Addr,
	    ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, logger))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}

# Thread Safety

All SupervisorTree methods are safe for concurrent use. Services may be added
before or after Serve is called.

# See Also

  - internal/supervisor/services: service wrappers for Animerec components
  - github.com/thejerf/suture/v4: underlying supervision library
*/
package supervisor
