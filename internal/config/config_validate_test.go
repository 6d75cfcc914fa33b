// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/animerec/internal/recommend"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{
			name:   "local paths need no download dir",
			mutate: func(c *Config) { c.Data.RatingsLocation = "/data/rating.csv"; c.Data.AnimeLocation = ""; c.Data.DownloadDir = "" },
		},
		{
			name:    "missing ratings location",
			mutate:  func(c *Config) { c.Data.RatingsLocation = "" },
			wantErr: "RATINGS_LOCATION is required",
		},
		{
			name:    "ftp anime location",
			mutate:  func(c *Config) { c.Data.AnimeLocation = "ftp://example.com/anime.csv" },
			wantErr: "ANIME_LOCATION scheme",
		},
		{
			name:    "remote without download dir",
			mutate:  func(c *Config) { c.Data.DownloadDir = "" },
			wantErr: "DOWNLOAD_DIR",
		},
		{
			name:    "duckdb without path",
			mutate:  func(c *Config) { c.Data.Backend = BackendDuckDB; c.Database.Path = "" },
			wantErr: "DUCKDB_PATH",
		},
		{
			name:    "negative reload interval",
			mutate:  func(c *Config) { c.Data.ReloadInterval = -time.Second },
			wantErr: "RELOAD_INTERVAL",
		},
		{
			name:    "max k below default",
			mutate:  func(c *Config) { c.Recommend.MaxK = 2 },
			wantErr: "max_k",
		},
		{
			name:    "zero cache ttl",
			mutate:  func(c *Config) { c.Recommend.CacheTTL = 0 },
			wantErr: "cache.ttl",
		},
		{
			name:   "zero cache ttl with cache off",
			mutate: func(c *Config) { c.Recommend.CacheEnabled = false; c.Recommend.CacheTTL = 0 },
		},
		{
			name:    "zero request timeout",
			mutate:  func(c *Config) { c.Server.RequestTimeout = 0 },
			wantErr: "HTTP_REQUEST_TIMEOUT",
		},
		{
			name:    "zero rate limit",
			mutate:  func(c *Config) { c.Server.RateLimitRequests = 0 },
			wantErr: "RATE_LIMIT_REQUESTS",
		},
		{
			name:   "zero rate limit when disabled",
			mutate: func(c *Config) { c.Server.RateLimitRequests = 0; c.Server.RateLimitDisabled = true },
		},
		{
			name:    "store without path",
			mutate:  func(c *Config) { c.Store.Enabled = true; c.Store.Path = "" },
			wantErr: "STORE_PATH",
		},
		{
			name:   "disabled store ignores path",
			mutate: func(c *Config) { c.Store.Path = "" },
		},
		{
			name:    "zero precompute rate",
			mutate:  func(c *Config) { c.Precompute.RatePerSecond = 0 },
			wantErr: "PRECOMPUTE_RATE",
		},
		{
			name:    "zero precompute burst",
			mutate:  func(c *Config) { c.Precompute.Burst = 0 },
			wantErr: "PRECOMPUTE_BURST",
		},
		{
			name:    "text log format",
			mutate:  func(c *Config) { c.Logging.Format = "text" },
			wantErr: "LOG_FORMAT",
		},
		{
			name:   "upper case log level",
			mutate: func(c *Config) { c.Logging.Level = "WARN" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateHTTPURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"https://example.com/rating.csv", false},
		{"http://localhost:8000/data/anime.csv", false},
		{"https://example.com", true},
		{"https://example.com/", true},
		{"s3://bucket/rating.csv", true},
		{"https:///rating.csv", true},
		{"http://%zz/rating.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			t.Parallel()
			err := validateHTTPURL(tt.url, "TEST_URL")
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTTPURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}

func TestIsURL(t *testing.T) {
	t.Parallel()

	if !isURL(DefaultRatingsURL) {
		t.Error("default ratings location should be a URL")
	}
	if isURL("/data/rating.csv") || isURL("rating.csv") {
		t.Error("file paths should not be URLs")
	}
}

func TestConversions(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	cfg.Matrix.MinRatingsPerItem = 7
	cfg.Recommend.CandidatePolicy = "unrated"
	cfg.Recommend.CacheMaxEntries = 42
	cfg.Store.Path = "/tmp/results"
	cfg.Store.TTL = time.Hour
	cfg.Store.SyncWrites = true
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = 9000

	t.Run("recommend", func(t *testing.T) {
		t.Parallel()
		rc, err := cfg.RecommendConfig()
		if err != nil {
			t.Fatalf("RecommendConfig() error = %v", err)
		}
		if rc.Matrix.MinRatingsPerItem != 7 || rc.Matrix.MaxRatingsPerUser != 1000 {
			t.Errorf("Matrix = %+v", rc.Matrix)
		}
		if rc.CandidatePolicy != recommend.CandidateUnrated {
			t.Errorf("CandidatePolicy = %v", rc.CandidatePolicy)
		}
		if rc.Cache.MaxEntries != 42 || rc.Limits.MaxTopN != 100 {
			t.Errorf("Cache/Limits = %+v/%+v", rc.Cache, rc.Limits)
		}
	})

	t.Run("recommend invalid policy", func(t *testing.T) {
		t.Parallel()
		bad := defaultConfig()
		bad.Recommend.CandidatePolicy = "everything"
		if _, err := bad.RecommendConfig(); err == nil {
			t.Error("RecommendConfig() should reject unknown policy")
		}
	})

	t.Run("store", func(t *testing.T) {
		t.Parallel()
		sc := cfg.StoreConfig()
		if sc.Path != "/tmp/results" || sc.EntryTTL != time.Hour || !sc.SyncWrites {
			t.Errorf("StoreConfig() = %+v", sc)
		}
		if err := sc.Validate(); err != nil {
			t.Errorf("StoreConfig().Validate() error = %v", err)
		}
	})

	t.Run("dataset", func(t *testing.T) {
		t.Parallel()
		dc := cfg.DatasetConfig()
		if dc.RatingsLocation != DefaultRatingsURL || dc.HTTPTimeout != 5*time.Minute {
			t.Errorf("DatasetConfig() = %+v", dc)
		}
	})

	t.Run("database", func(t *testing.T) {
		t.Parallel()
		dbc := cfg.DatabaseConfig()
		if dbc.Path != "/data/animerec.duckdb" || dbc.MaxMemory != "2GB" {
			t.Errorf("DatabaseConfig() = %+v", dbc)
		}
	})

	t.Run("logging", func(t *testing.T) {
		t.Parallel()
		lc := cfg.LoggingConfig()
		if lc.Level != "info" || lc.Format != "json" || lc.Output == nil {
			t.Errorf("LoggingConfig() = %+v", lc)
		}
	})

	t.Run("addr", func(t *testing.T) {
		t.Parallel()
		if got := cfg.Server.Addr(); got != "127.0.0.1:9000" {
			t.Errorf("Addr() = %q", got)
		}
	})
}
