// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package config

import (
	"net"
	"os"
	"strconv"

	"github.com/tomtom215/animerec/internal/database"
	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/store"
)

// RecommendConfig builds the engine configuration.
func (c *Config) RecommendConfig() (*recommend.Config, error) {
	policy, err := recommend.ParseCandidatePolicy(c.Recommend.CandidatePolicy)
	if err != nil {
		return nil, err
	}

	rc := recommend.DefaultConfig()
	rc.Matrix.MinRatingsPerItem = c.Matrix.MinRatingsPerItem
	rc.Matrix.MaxRatingsPerUser = c.Matrix.MaxRatingsPerUser
	rc.Limits.DefaultK = c.Recommend.DefaultK
	rc.Limits.MaxK = c.Recommend.MaxK
	rc.Limits.DefaultTopN = c.Recommend.DefaultTopN
	rc.Limits.MaxTopN = c.Recommend.MaxTopN
	rc.Cache.Enabled = c.Recommend.CacheEnabled
	rc.Cache.TTL = c.Recommend.CacheTTL
	rc.Cache.MaxEntries = c.Recommend.CacheMaxEntries
	rc.CandidatePolicy = policy
	return rc, nil
}

// DatasetConfig builds the CSV source configuration.
func (c *Config) DatasetConfig() dataset.Config {
	return dataset.Config{
		RatingsLocation: c.Data.RatingsLocation,
		AnimeLocation:   c.Data.AnimeLocation,
		DownloadDir:     c.Data.DownloadDir,
		HTTPTimeout:     c.Data.HTTPTimeout,
		Refresh:         c.Data.Refresh,
	}
}

// DatabaseConfig builds the DuckDB configuration.
func (c *Config) DatabaseConfig() database.Config {
	return database.Config{
		Path:      c.Database.Path,
		MaxMemory: c.Database.MaxMemory,
		Threads:   c.Database.Threads,
	}
}

// StoreConfig builds the result store configuration.
func (c *Config) StoreConfig() store.Config {
	sc := store.DefaultConfig(c.Store.Path)
	sc.EntryTTL = c.Store.TTL
	sc.SyncWrites = c.Store.SyncWrites
	return sc
}

// LoggingConfig builds the logger configuration.
func (c *Config) LoggingConfig() logging.Config {
	lc := logging.DefaultConfig()
	lc.Level = c.Logging.Level
	lc.Format = c.Logging.Format
	lc.Caller = c.Logging.Caller
	lc.Output = os.Stderr
	return lc
}

// Addr returns the HTTP listen address.
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
