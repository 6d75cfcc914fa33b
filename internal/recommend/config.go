// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Matrix contains the filter thresholds used when building snapshots.
	Matrix MatrixConfig `json:"matrix"`

	// Limits contains request defaults and bounds.
	Limits LimitsConfig `json:"limits"`

	// Cache contains in-memory response caching parameters.
	Cache CacheConfig `json:"cache"`

	// CandidatePolicy selects the unseen-item rule.
	// Default: CandidateZeroCell.
	CandidatePolicy CandidatePolicy `json:"candidate_policy"`
}

// MatrixConfig contains the popularity and activity filter thresholds.
type MatrixConfig struct {
	// MinRatingsPerItem keeps items with at least this many ratings.
	// Default: 1000.
	MinRatingsPerItem int `json:"min_ratings_per_item"`

	// MaxRatingsPerUser keeps users with at most this many ratings.
	// Default: 1000.
	MaxRatingsPerUser int `json:"max_ratings_per_user"`
}

// LimitsConfig contains request defaults and bounds.
type LimitsConfig struct {
	// DefaultK is the neighborhood size when a request leaves K unset.
	// Default: 5.
	DefaultK int `json:"default_k"`

	// MaxK is the largest neighborhood a request may ask for.
	// Default: 500.
	MaxK int `json:"max_k"`

	// DefaultTopN is the result count when a request leaves TopN unset.
	// Default: 5.
	DefaultTopN int `json:"default_top_n"`

	// MaxTopN is the largest result count a request may ask for.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`
}

// CacheConfig contains caching parameters.
type CacheConfig struct {
	// Enabled controls whether caching is active.
	// Default: true.
	Enabled bool `json:"enabled"`

	// TTL is the cache entry time-to-live.
	// Default: 10m.
	TTL time.Duration `json:"ttl"`

	// MaxEntries is the maximum number of cached entries.
	// Default: 10000.
	MaxEntries int `json:"max_entries"`

	// InvalidateOnLoad controls whether the cache is cleared after a reload.
	// Default: true.
	InvalidateOnLoad bool `json:"invalidate_on_load"`
}

// DefaultConfig returns a Config with sensible production defaults.
func DefaultConfig() *Config {
	return &Config{
		Matrix: MatrixConfig{
			MinRatingsPerItem: DefaultMinRatingsPerItem,
			MaxRatingsPerUser: DefaultMaxRatingsPerUser,
		},
		Limits: LimitsConfig{
			DefaultK:    5,
			MaxK:        500,
			DefaultTopN: 5,
			MaxTopN:     100,
		},
		Cache: CacheConfig{
			Enabled:          true,
			TTL:              10 * time.Minute,
			MaxEntries:       10000,
			InvalidateOnLoad: true,
		},
		CandidatePolicy: CandidateZeroCell,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Matrix.MinRatingsPerItem < 0 {
		return fmt.Errorf("matrix.min_ratings_per_item must be non-negative, got %d", c.Matrix.MinRatingsPerItem)
	}
	if c.Matrix.MaxRatingsPerUser < 0 {
		return fmt.Errorf("matrix.max_ratings_per_user must be non-negative, got %d", c.Matrix.MaxRatingsPerUser)
	}

	if c.Limits.DefaultK < 1 {
		return fmt.Errorf("limits.default_k must be positive, got %d", c.Limits.DefaultK)
	}
	if c.Limits.MaxK < c.Limits.DefaultK {
		return fmt.Errorf("limits.max_k must be >= limits.default_k, got %d < %d", c.Limits.MaxK, c.Limits.DefaultK)
	}
	if c.Limits.DefaultTopN < 1 {
		return fmt.Errorf("limits.default_top_n must be positive, got %d", c.Limits.DefaultTopN)
	}
	if c.Limits.MaxTopN < c.Limits.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= limits.default_top_n, got %d < %d", c.Limits.MaxTopN, c.Limits.DefaultTopN)
	}

	if c.Cache.Enabled {
		if c.Cache.TTL <= 0 {
			return fmt.Errorf("cache.ttl must be positive, got %v", c.Cache.TTL)
		}
		if c.Cache.MaxEntries < 1 {
			return fmt.Errorf("cache.max_entries must be positive, got %d", c.Cache.MaxEntries)
		}
	}

	switch c.CandidatePolicy {
	case CandidateZeroCell, CandidateUnrated:
	default:
		return fmt.Errorf("candidate_policy %d is not valid", c.CandidatePolicy)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	// all nested structs contain only value types
	clone := *c
	return &clone
}

// MarshalJSON renders durations and the candidate policy as strings.
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		Cache struct {
			Enabled          bool   `json:"enabled"`
			TTL              string `json:"ttl"`
			MaxEntries       int    `json:"max_entries"`
			InvalidateOnLoad bool   `json:"invalidate_on_load"`
		} `json:"cache"`
		CandidatePolicy string `json:"candidate_policy"`
	}{
		Alias: (*Alias)(c),
		Cache: struct {
			Enabled          bool   `json:"enabled"`
			TTL              string `json:"ttl"`
			MaxEntries       int    `json:"max_entries"`
			InvalidateOnLoad bool   `json:"invalidate_on_load"`
		}{
			Enabled:          c.Cache.Enabled,
			TTL:              c.Cache.TTL.String(),
			MaxEntries:       c.Cache.MaxEntries,
			InvalidateOnLoad: c.Cache.InvalidateOnLoad,
		},
		CandidatePolicy: c.CandidatePolicy.String(),
	})
}
