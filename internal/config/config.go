// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"time"
)

// Config holds all application configuration.
type Config struct {
	Data       DataConfig       `koanf:"data"`
	Matrix     MatrixConfig     `koanf:"matrix"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Server     ServerConfig     `koanf:"server"`
	Store      StoreConfig      `koanf:"store"`
	Database   DatabaseConfig   `koanf:"database"`
	Precompute PrecomputeConfig `koanf:"precompute"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// Dataset backends.
const (
	BackendCSV    = "csv"
	BackendDuckDB = "duckdb"
)

// DataConfig locates the rating and anime datasets.
type DataConfig struct {
	// Backend selects how files are read: csv parses them in Go, duckdb
	// imports them into the database first.
	Backend string `koanf:"backend"`

	// RatingsLocation is a path or http(s) URL of rating.csv.
	RatingsLocation string `koanf:"ratings_location"`

	// AnimeLocation is a path or http(s) URL of anime.csv. Empty disables
	// names and category filtering.
	AnimeLocation string `koanf:"anime_location"`

	// DownloadDir receives remote files.
	DownloadDir string `koanf:"download_dir"`

	HTTPTimeout time.Duration `koanf:"http_timeout"`

	// Refresh re-downloads remote files on every reload.
	Refresh bool `koanf:"refresh"`

	// ReloadInterval rebuilds the snapshot periodically. 0 disables.
	ReloadInterval time.Duration `koanf:"reload_interval"`
}

// MatrixConfig holds the popularity and activity thresholds.
type MatrixConfig struct {
	MinRatingsPerItem int `koanf:"min_ratings_per_item"`
	MaxRatingsPerUser int `koanf:"max_ratings_per_user"`
}

// RecommendConfig holds request limits and caching.
type RecommendConfig struct {
	DefaultK    int `koanf:"default_k"`
	MaxK        int `koanf:"max_k"`
	DefaultTopN int `koanf:"default_top_n"`
	MaxTopN     int `koanf:"max_top_n"`

	// CandidatePolicy is zero_cell or unrated.
	CandidatePolicy string `koanf:"candidate_policy"`

	CacheEnabled    bool          `koanf:"cache_enabled"`
	CacheTTL        time.Duration `koanf:"cache_ttl"`
	CacheMaxEntries int           `koanf:"cache_max_entries"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// RequestTimeout bounds handler execution.
	RequestTimeout time.Duration `koanf:"request_timeout"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	// AdminEnabled exposes POST /api/v1/admin/reload.
	AdminEnabled bool `koanf:"admin_enabled"`
}

// StoreConfig holds the persistent result store settings.
type StoreConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	TTL        time.Duration `koanf:"ttl"`
	GCInterval time.Duration `koanf:"gc_interval"`
	SyncWrites bool          `koanf:"sync_writes"`
}

// DatabaseConfig holds DuckDB settings. Used when data.backend is duckdb.
type DatabaseConfig struct {
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = use NumCPU
}

// PrecomputeConfig controls batch precomputation of recommendations for
// the most active users.
type PrecomputeConfig struct {
	// Enabled runs precomputation as a background service in serve mode.
	Enabled bool `koanf:"enabled"`

	// Users is how many of the most active users to precompute.
	Users int `koanf:"users"`

	// RatePerSecond throttles recommendation computations.
	RatePerSecond float64 `koanf:"rate_per_second"`

	// Burst is the limiter burst size.
	Burst int `koanf:"burst"`

	// Interval repeats precomputation. 0 runs once per snapshot.
	Interval time.Duration `koanf:"interval"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}
