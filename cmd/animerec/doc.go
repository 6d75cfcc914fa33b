// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package main is the entry point for the Animerec recommendation server.

Animerec reads the public anime ratings dataset (rating.csv and anime.csv),
builds a user by anime rating matrix, and answers "which anime should this
user watch next" by averaging the ratings of the user's nearest neighbors
under cosine similarity.

# Run Modes

	animerec -mode serve        # HTTP API under a Suture v4 supervisor tree (default)
	animerec -mode precompute   # warm the result store for the most active users and exit
	animerec -mode stats        # print dataset statistics as JSON and exit

# Application Architecture

Serve mode runs a layered supervisor tree:

	RootSupervisor ("animerec")
	├── DataSupervisor ("data-layer")
	│   ├── ReloadService (when RELOAD_INTERVAL > 0)
	│   └── MaintenanceService (cache and result store expiry)
	├── JobsSupervisor ("jobs-layer")
	│   └── PrecomputeService (when PRECOMPUTE_ENABLED=true)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Data source: CSV parsed in Go, or imported into DuckDB
 4. Engine: recommendation engine with an in-memory LRU cache
 5. Result store: BadgerDB persistence of computed responses (optional)
 6. Initial snapshot load
 7. Supervisor tree and HTTP server

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Dataset
	DATA_BACKEND=csv                      # csv or duckdb
	RATINGS_LOCATION=/data/rating.csv     # path or http(s) URL
	ANIME_LOCATION=/data/anime.csv        # optional; enables names and type filter
	MIN_RATINGS_PER_ITEM=1000
	MAX_RATINGS_PER_USER=1000
	RELOAD_INTERVAL=0                     # 0 reloads only through the admin endpoint

	# Server
	HTTP_PORT=8080
	ADMIN_ENABLED=false
	LOG_LEVEL=info                        # trace, debug, info, warn, error
	LOG_FORMAT=json                       # json or console

	# Persistence
	STORE_ENABLED=false
	STORE_PATH=/data/results

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains
in-flight requests within HTTP_SHUTDOWN_TIMEOUT, background services stop,
and the result store and database are closed.

# Usage Examples

Local files:

	export RATINGS_LOCATION=./rating.csv ANIME_LOCATION=./anime.csv
	go run ./cmd/animerec

	curl localhost:8080/api/v1/users/5/recommendations?k=10&n=5&type=TV
*/
package main
