// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Config locates the dataset files.
type Config struct {
	// RatingsLocation is a path or http(s) URL of rating.csv. Required.
	RatingsLocation string

	// AnimeLocation is a path or http(s) URL of anime.csv. Optional; without
	// it recommendations carry no names and category filtering is rejected.
	AnimeLocation string

	// DownloadDir receives remote files.
	DownloadDir string

	// HTTPTimeout bounds a single download.
	HTTPTimeout time.Duration

	// Refresh re-downloads remote files on every load.
	Refresh bool
}

// ErrNoRatingsLocation indicates Config.RatingsLocation is empty.
var ErrNoRatingsLocation = errors.New("ratings location is required")

// CSVSource reads ratings and anime from CSV files. It implements
// recommend.DataSource.
type CSVSource struct {
	cfg     Config
	fetcher *Fetcher
	logger  zerolog.Logger
}

// NewCSVSource creates a CSV-backed data source.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCSVSource(cfg Config, logger zerolog.Logger) (*CSVSource, error) {
	if cfg.RatingsLocation == "" {
		return nil, ErrNoRatingsLocation
	}
	return &CSVSource{
		cfg: cfg,
		fetcher: NewFetcher(FetcherConfig{
			Dir:     cfg.DownloadDir,
			Timeout: cfg.HTTPTimeout,
			Refresh: cfg.Refresh,
		}, logger),
		logger: logger.With().Str("component", "dataset").Logger(),
	}, nil
}

// Name identifies the source.
func (s *CSVSource) Name() string {
	return "csv"
}

// Ratings returns every rating with sentinel records removed.
func (s *CSVSource) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	ratings, _, err := s.RawRatings(ctx)
	if err != nil {
		return nil, err
	}
	ratings, _ = StripUnrated(ratings)
	return ratings, nil
}

// RawRatings returns every parseable rating, sentinels included, with the
// parse report.
func (s *CSVSource) RawRatings(ctx context.Context) ([]recommend.Rating, ParseReport, error) {
	path, err := s.fetcher.Fetch(ctx, s.cfg.RatingsLocation)
	if err != nil {
		return nil, ParseReport{}, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, ParseReport{}, fmt.Errorf("open ratings: %w", err)
	}
	defer f.Close()

	start := time.Now()
	ratings, report, err := ParseRatings(ctx, f)
	if err != nil {
		return nil, report, fmt.Errorf("parse %s: %w", path, err)
	}

	metrics.RecordDatasetRecords("ratings", report.Loaded-report.Unrated, report.Unrated, report.Invalid)
	s.logger.Info().
		Str("file", path).
		Int("rows", report.Rows).
		Int("unrated", report.Unrated).
		Int("invalid", report.Invalid).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("ratings parsed")

	return ratings, report, nil
}

// Anime returns the metadata records, or nil when no anime file is
// configured.
func (s *CSVSource) Anime(ctx context.Context) ([]recommend.Anime, error) {
	if s.cfg.AnimeLocation == "" {
		return nil, nil
	}

	path, err := s.fetcher.Fetch(ctx, s.cfg.AnimeLocation)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("open anime: %w", err)
	}
	defer f.Close()

	anime, report, err := ParseAnime(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	metrics.RecordDatasetRecords("anime", report.Loaded, 0, report.Invalid)
	s.logger.Info().
		Str("file", path).
		Int("rows", report.Rows).
		Int("invalid", report.Invalid).
		Msg("anime parsed")

	return anime, nil
}

// LocalPaths downloads remote files if needed and returns local paths.
// animePath is empty when no anime file is configured.
func (s *CSVSource) LocalPaths(ctx context.Context) (ratingsPath, animePath string, err error) {
	ratingsPath, err = s.fetcher.Fetch(ctx, s.cfg.RatingsLocation)
	if err != nil {
		return "", "", err
	}
	if s.cfg.AnimeLocation != "" {
		animePath, err = s.fetcher.Fetch(ctx, s.cfg.AnimeLocation)
		if err != nil {
			return "", "", err
		}
	}
	return ratingsPath, animePath, nil
}

// Stats loads both files and summarizes them.
func (s *CSVSource) Stats(ctx context.Context, minRatingsPerItem, maxRatingsPerUser int) (*Stats, error) {
	ratings, _, err := s.RawRatings(ctx)
	if err != nil {
		return nil, err
	}
	anime, err := s.Anime(ctx)
	if err != nil {
		return nil, err
	}
	return Summarize(ratings, anime, minRatingsPerItem, maxRatingsPerUser), nil
}
