// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/animerec/internal/recommend"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateData(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStore(); err != nil {
		return err
	}

	if err := c.validatePrecompute(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateData validates the dataset section
func (c *Config) validateData() error {
	switch c.Data.Backend {
	case BackendCSV:
	case BackendDuckDB:
		if c.Database.Path == "" {
			return fmt.Errorf("DUCKDB_PATH is required when DATA_BACKEND=duckdb")
		}
	default:
		return fmt.Errorf("DATA_BACKEND must be %s or %s, got: %s", BackendCSV, BackendDuckDB, c.Data.Backend)
	}

	if err := validateLocation(c.Data.RatingsLocation, "RATINGS_LOCATION"); err != nil {
		return err
	}
	if c.Data.AnimeLocation != "" {
		if err := validateLocation(c.Data.AnimeLocation, "ANIME_LOCATION"); err != nil {
			return err
		}
	}

	remote := isURL(c.Data.RatingsLocation) || isURL(c.Data.AnimeLocation)
	if remote && c.Data.DownloadDir == "" {
		return fmt.Errorf("DOWNLOAD_DIR is required for remote dataset locations")
	}
	if remote && c.Data.HTTPTimeout <= 0 {
		return fmt.Errorf("DOWNLOAD_TIMEOUT must be positive, got: %v", c.Data.HTTPTimeout)
	}
	if c.Data.ReloadInterval < 0 {
		return fmt.Errorf("RELOAD_INTERVAL must be non-negative, got: %v", c.Data.ReloadInterval)
	}
	return nil
}

// validateRecommend delegates to the engine configuration so both layers
// enforce identical rules.
func (c *Config) validateRecommend() error {
	if _, err := recommend.ParseCandidatePolicy(c.Recommend.CandidatePolicy); err != nil {
		return fmt.Errorf("CANDIDATE_POLICY is invalid: %w", err)
	}
	rc, err := c.RecommendConfig()
	if err != nil {
		return err
	}
	if err := rc.Validate(); err != nil {
		return fmt.Errorf("recommend configuration is invalid: %w", err)
	}
	return nil
}

// validateServer validates HTTP server settings
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive, got: %v", c.Server.ShutdownTimeout)
	}
	if c.Server.RequestTimeout <= 0 {
		return fmt.Errorf("HTTP_REQUEST_TIMEOUT must be positive, got: %v", c.Server.RequestTimeout)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitRequests < 1 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got: %d", c.Server.RateLimitRequests)
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got: %v", c.Server.RateLimitWindow)
		}
	}
	return nil
}

// validateStore validates the result store (only if enabled)
func (c *Config) validateStore() error {
	if !c.Store.Enabled {
		return nil
	}
	if c.Store.Path == "" {
		return fmt.Errorf("STORE_PATH is required when STORE_ENABLED=true")
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("STORE_TTL must be non-negative, got: %v", c.Store.TTL)
	}
	if c.Store.GCInterval < 0 {
		return fmt.Errorf("STORE_GC_INTERVAL must be non-negative, got: %v", c.Store.GCInterval)
	}
	return nil
}

// validatePrecompute validates precomputation settings
func (c *Config) validatePrecompute() error {
	if c.Precompute.Users < 0 {
		return fmt.Errorf("PRECOMPUTE_USERS must be non-negative, got: %d", c.Precompute.Users)
	}
	if c.Precompute.RatePerSecond <= 0 {
		return fmt.Errorf("PRECOMPUTE_RATE must be positive, got: %v", c.Precompute.RatePerSecond)
	}
	if c.Precompute.Burst < 1 {
		return fmt.Errorf("PRECOMPUTE_BURST must be at least 1, got: %d", c.Precompute.Burst)
	}
	if c.Precompute.Interval < 0 {
		return fmt.Errorf("PRECOMPUTE_INTERVAL must be non-negative, got: %v", c.Precompute.Interval)
	}
	return nil
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of trace, debug, info, warn, error, fatal, panic; got: %s", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
	return nil
}
