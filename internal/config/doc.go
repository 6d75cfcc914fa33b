// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

/*
Package config provides centralized configuration management for Animerec.

Configuration is loaded with Koanf in three layers: struct defaults, an
optional YAML file, then environment variables. Later layers win.

# Configuration File

The file is found by, in order: the -config flag, CONFIG_PATH, then
config.yaml, config.yml, /etc/animerec/config.yaml, /etc/animerec/config.yml.

	data:
	  backend: duckdb
	  ratings_location: /data/rating.csv
	  anime_location: /data/anime.csv
	matrix:
	  min_ratings_per_item: 1000
	  max_ratings_per_user: 1000
	recommend:
	  candidate_policy: unrated
	server:
	  port: 8080
	  cors_origins: ["https://example.com"]
	store:
	  enabled: true
	  path: /data/results

# Environment Variables

Only the variables listed in envMappings are read. The most common:

Dataset:
  - DATA_BACKEND: csv or duckdb (default: csv)
  - RATINGS_LOCATION: rating.csv path or URL (default: published dataset)
  - ANIME_LOCATION: anime.csv path or URL (default: published dataset)
  - DOWNLOAD_DIR: where remote files are saved (default: /data/datasets)
  - RELOAD_INTERVAL: periodic snapshot rebuild, 0 disables (default: 0)

Matrix:
  - MIN_RATINGS_PER_ITEM: popularity threshold (default: 1000)
  - MAX_RATINGS_PER_USER: activity threshold (default: 1000)

Recommendations:
  - RECOMMEND_DEFAULT_K, RECOMMEND_MAX_K (default: 5, 500)
  - RECOMMEND_DEFAULT_TOP_N, RECOMMEND_MAX_TOP_N (default: 5, 100)
  - CANDIDATE_POLICY: zero_cell or unrated (default: zero_cell)
  - CACHE_ENABLED, CACHE_TTL, CACHE_MAX_ENTRIES

HTTP Server:
  - HTTP_HOST, HTTP_PORT (default: 0.0.0.0:8080)
  - CORS_ORIGINS: comma-separated list (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - ADMIN_ENABLED: expose the reload endpoint (default: false)

Result Store:
  - STORE_ENABLED, STORE_PATH, STORE_TTL, STORE_GC_INTERVAL

DuckDB:
  - DUCKDB_PATH, DUCKDB_MAX_MEMORY, DUCKDB_THREADS

Precompute:
  - PRECOMPUTE_ENABLED, PRECOMPUTE_USERS, PRECOMPUTE_RATE, PRECOMPUTE_BURST

Logging:
  - LOG_LEVEL, LOG_FORMAT, LOG_CALLER

# Validation

Load validates the merged result. Engine limits are validated by
recommend.Config.Validate so both layers apply the same rules.
*/
package config
