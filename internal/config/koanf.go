// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/animerec/config.yaml",
	"/etc/animerec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// Published dataset locations.
const (
	DefaultRatingsURL = "https://raw.githubusercontent.com/nuraulaola/Anime-Recommendation-System/main/Datasets/rating.csv"
	DefaultAnimeURL   = "https://raw.githubusercontent.com/nuraulaola/Anime-Recommendation-System/main/Datasets/anime.csv"
)

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Data: DataConfig{
			Backend:         BackendCSV,
			RatingsLocation: DefaultRatingsURL,
			AnimeLocation:   DefaultAnimeURL,
			DownloadDir:     "/data/datasets",
			HTTPTimeout:     5 * time.Minute,
			Refresh:         false,
			ReloadInterval:  0, // reload only on demand
		},
		Matrix: MatrixConfig{
			MinRatingsPerItem: 1000,
			MaxRatingsPerUser: 1000,
		},
		Recommend: RecommendConfig{
			DefaultK:        5,
			MaxK:            500,
			DefaultTopN:     5,
			MaxTopN:         100,
			CandidatePolicy: "zero_cell",
			CacheEnabled:    true,
			CacheTTL:        10 * time.Minute,
			CacheMaxEntries: 10000,
		},
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8080,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ShutdownTimeout:   10 * time.Second,
			RequestTimeout:    30 * time.Second,
			CORSOrigins:       []string{"*"},
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			AdminEnabled:      false,
		},
		Store: StoreConfig{
			Enabled:    false,
			Path:       "/data/results",
			TTL:        7 * 24 * time.Hour,
			GCInterval: 10 * time.Minute,
			SyncWrites: false,
		},
		Database: DatabaseConfig{
			Path:      "/data/animerec.duckdb",
			MaxMemory: "2GB",
			Threads:   0,
		},
		Precompute: PrecomputeConfig{
			Enabled:       false,
			Users:         1000,
			RatePerSecond: 50,
			Burst:         10,
			Interval:      0,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from three layers, each overriding the
// previous one:
//
//  1. Struct defaults
//  2. YAML file: configPath if non-empty, else CONFIG_PATH, else the first
//     of DefaultConfigPaths that exists
//  3. Environment variables listed in envTransformFunc
//
// The result is validated before it is returned.
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath == "" {
		configPath = findConfigFile()
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths are keys whose env values are comma-separated lists.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields splits comma-separated string values into slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envMappings maps lowercased environment variable names to config keys.
var envMappings = map[string]string{
	"data_backend":            "data.backend",
	"ratings_location":        "data.ratings_location",
	"anime_location":          "data.anime_location",
	"download_dir":            "data.download_dir",
	"download_timeout":        "data.http_timeout",
	"data_refresh":            "data.refresh",
	"reload_interval":         "data.reload_interval",
	"min_ratings_per_item":    "matrix.min_ratings_per_item",
	"max_ratings_per_user":    "matrix.max_ratings_per_user",
	"recommend_default_k":     "recommend.default_k",
	"recommend_max_k":         "recommend.max_k",
	"recommend_default_top_n": "recommend.default_top_n",
	"recommend_max_top_n":     "recommend.max_top_n",
	"candidate_policy":        "recommend.candidate_policy",
	"cache_enabled":           "recommend.cache_enabled",
	"cache_ttl":               "recommend.cache_ttl",
	"cache_max_entries":       "recommend.cache_max_entries",

	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"http_request_timeout":  "server.request_timeout",
	"cors_origins":          "server.cors_origins",
	"rate_limit_requests":   "server.rate_limit_requests",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"admin_enabled":         "server.admin_enabled",

	"store_enabled":     "store.enabled",
	"store_path":        "store.path",
	"store_ttl":         "store.ttl",
	"store_gc_interval": "store.gc_interval",
	"store_sync_writes": "store.sync_writes",

	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",

	"precompute_enabled":  "precompute.enabled",
	"precompute_users":    "precompute.users",
	"precompute_rate":     "precompute.rate_per_second",
	"precompute_burst":    "precompute.burst",
	"precompute_interval": "precompute.interval",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// variables never pollute the configuration.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
