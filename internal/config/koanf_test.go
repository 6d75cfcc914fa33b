// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/animerec/internal/recommend"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaultConfig().Validate() error = %v", err)
	}

	// Dataset defaults point at the published files
	if cfg.Data.Backend != BackendCSV {
		t.Errorf("Data.Backend = %q, want csv", cfg.Data.Backend)
	}
	if cfg.Data.RatingsLocation != DefaultRatingsURL {
		t.Errorf("Data.RatingsLocation = %q", cfg.Data.RatingsLocation)
	}
	if cfg.Data.AnimeLocation != DefaultAnimeURL {
		t.Errorf("Data.AnimeLocation = %q", cfg.Data.AnimeLocation)
	}

	// Matrix thresholds
	if cfg.Matrix.MinRatingsPerItem != 1000 || cfg.Matrix.MaxRatingsPerUser != 1000 {
		t.Errorf("Matrix = %+v, want 1000/1000", cfg.Matrix)
	}

	// Recommend defaults
	if cfg.Recommend.DefaultK != 5 || cfg.Recommend.DefaultTopN != 5 {
		t.Errorf("Recommend defaults = %d/%d, want 5/5", cfg.Recommend.DefaultK, cfg.Recommend.DefaultTopN)
	}
	if cfg.Recommend.CandidatePolicy != "zero_cell" {
		t.Errorf("Recommend.CandidatePolicy = %q, want zero_cell", cfg.Recommend.CandidatePolicy)
	}

	// Server defaults
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 1 || cfg.Server.CORSOrigins[0] != "*" {
		t.Errorf("Server.CORSOrigins = %v, want [*]", cfg.Server.CORSOrigins)
	}

	// Optional features are off
	if cfg.Store.Enabled || cfg.Precompute.Enabled || cfg.Server.AdminEnabled {
		t.Error("store, precompute and admin should be disabled by default")
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"DATA_BACKEND", "data.backend"},
		{"RATINGS_LOCATION", "data.ratings_location"},
		{"ANIME_LOCATION", "data.anime_location"},
		{"RELOAD_INTERVAL", "data.reload_interval"},
		{"MIN_RATINGS_PER_ITEM", "matrix.min_ratings_per_item"},
		{"MAX_RATINGS_PER_USER", "matrix.max_ratings_per_user"},
		{"CANDIDATE_POLICY", "recommend.candidate_policy"},
		{"RECOMMEND_MAX_TOP_N", "recommend.max_top_n"},
		{"HTTP_PORT", "server.port"},
		{"CORS_ORIGINS", "server.cors_origins"},
		{"DISABLE_RATE_LIMIT", "server.rate_limit_disabled"},
		{"STORE_PATH", "store.path"},
		{"DUCKDB_PATH", "database.path"},
		{"PRECOMPUTE_RATE", "precompute.rate_per_second"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result := envTransformFunc(tt.input)
			if result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml in working directory", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if err := os.WriteFile("config.yaml", []byte("server:\n  port: 9000\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		defer os.Remove("config.yaml")

		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH takes priority", func(t *testing.T) {
		custom := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("server:\n  port: 9001\n"), 0o600); err != nil {
			t.Fatal(err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if result := findConfigFile(); result != custom {
			t.Errorf("findConfigFile() = %q, want %q", result, custom)
		}
	})

	t.Run("missing CONFIG_PATH falls through", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(tmpDir, "missing.yaml"))
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

// TestLoad_Layers verifies that file values override defaults and env
// values override both.
func TestLoad_Layers(t *testing.T) {
	t.Chdir(t.TempDir())

	dataDir := t.TempDir()
	ratings := filepath.Join(dataDir, "rating.csv")
	path := filepath.Join(dataDir, "config.yaml")
	yamlContent := `
data:
  backend: duckdb
  ratings_location: ` + ratings + `
  anime_location: ""
matrix:
  min_ratings_per_item: 50
  max_ratings_per_user: 500
recommend:
  candidate_policy: unrated
  cache_ttl: 90s
server:
  port: 9000
  cors_origins:
    - https://a.example
    - https://b.example
database:
  path: ` + filepath.Join(dataDir, "animerec.duckdb") + `
`
	if err := os.WriteFile(path, []byte(yamlContent), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MAX_RATINGS_PER_USER", "750")
	t.Setenv("HTTP_PORT", "9100")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Data.Backend != BackendDuckDB || cfg.Data.RatingsLocation != ratings {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Data.AnimeLocation != "" {
		t.Errorf("Data.AnimeLocation = %q, want empty", cfg.Data.AnimeLocation)
	}
	if cfg.Matrix.MinRatingsPerItem != 50 {
		t.Errorf("MinRatingsPerItem = %d, want 50 from file", cfg.Matrix.MinRatingsPerItem)
	}
	if cfg.Matrix.MaxRatingsPerUser != 750 {
		t.Errorf("MaxRatingsPerUser = %d, want 750 from env", cfg.Matrix.MaxRatingsPerUser)
	}
	if cfg.Recommend.CacheTTL != 90*time.Second {
		t.Errorf("CacheTTL = %v, want 90s", cfg.Recommend.CacheTTL)
	}
	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100 from env", cfg.Server.Port)
	}
	if len(cfg.Server.CORSOrigins) != 2 {
		t.Errorf("CORSOrigins = %v, want two origins", cfg.Server.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	// untouched values keep their defaults
	if cfg.Recommend.MaxK != 500 {
		t.Errorf("Recommend.MaxK = %d, want default 500", cfg.Recommend.MaxK)
	}

	rc, err := cfg.RecommendConfig()
	if err != nil {
		t.Fatalf("RecommendConfig() error = %v", err)
	}
	if rc.CandidatePolicy != recommend.CandidateUnrated {
		t.Errorf("CandidatePolicy = %v, want unrated", rc.CandidatePolicy)
	}
}

// TestLoad_CommaSeparatedSlice verifies env list splitting
func TestLoad_CommaSeparatedSlice(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example,,")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []string{"https://a.example", "https://b.example"}
	if len(cfg.Server.CORSOrigins) != len(want) {
		t.Fatalf("CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, want)
	}
	for i := range want {
		if cfg.Server.CORSOrigins[i] != want[i] {
			t.Errorf("CORSOrigins[%d] = %q, want %q", i, cfg.Server.CORSOrigins[i], want[i])
		}
	}
}

// TestLoad_Invalid verifies that Load rejects invalid merged configuration
func TestLoad_Invalid(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")

	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "bad backend", env: map[string]string{"DATA_BACKEND": "parquet"}, wantErr: "DATA_BACKEND"},
		{name: "bad port", env: map[string]string{"HTTP_PORT": "70000"}, wantErr: "HTTP_PORT"},
		{name: "bad policy", env: map[string]string{"CANDIDATE_POLICY": "random"}, wantErr: "CANDIDATE_POLICY"},
		{name: "bad log level", env: map[string]string{"LOG_LEVEL": "loud"}, wantErr: "LOG_LEVEL"},
		{name: "negative threshold", env: map[string]string{"MIN_RATINGS_PER_ITEM": "-1"}, wantErr: "min_ratings_per_item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Load() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

// TestLoad_MissingFile verifies that an explicit missing path is an error
func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing file should fail")
	}
}
