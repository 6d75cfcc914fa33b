// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/animerec/internal/metrics"
)

// DefaultHTTPTimeout bounds a single dataset download.
const DefaultHTTPTimeout = 5 * time.Minute

// breakerName labels the download circuit breaker in logs and metrics.
const breakerName = "dataset-download"

// ErrUnexpectedStatus indicates the server answered with a non-200 status.
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Fetcher downloads remote dataset files into a local directory.
//
// Downloads run through a circuit breaker: after three consecutive failures
// further attempts are rejected for a minute. A file already present in the
// directory is reused unless Refresh is set.
type Fetcher struct {
	client  *http.Client
	cb      *gobreaker.CircuitBreaker[string]
	dir     string
	refresh bool
	logger  zerolog.Logger
}

// FetcherConfig configures a Fetcher.
type FetcherConfig struct {
	// Dir receives downloaded files. Created if missing.
	Dir string

	// Timeout bounds a single download. Default: DefaultHTTPTimeout.
	Timeout time.Duration

	// Refresh forces a download even if the file is already cached.
	Refresh bool

	// Client overrides the HTTP client, for tests.
	Client *http.Client
}

// NewFetcher creates a Fetcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFetcher(cfg FetcherConfig, logger zerolog.Logger) *Fetcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultHTTPTimeout
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{Timeout: timeout}
	}

	logger = logger.With().Str("component", "dataset-fetch").Logger()
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[string](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    0,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			trip := counts.ConsecutiveFailures >= 3
			if trip {
				logger.Warn().Uint32("consecutive_failures", counts.ConsecutiveFailures).Msg("opening download circuit")
			}
			return trip
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info().Str("from", from.String()).Str("to", to.String()).Msg("download circuit state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &Fetcher{
		client:  client,
		cb:      cb,
		dir:     cfg.Dir,
		refresh: cfg.Refresh,
		logger:  logger,
	}
}

// Fetch returns a local path for location, downloading it first if it is
// remote. Local paths are returned unchanged.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, error) {
	if !IsRemote(location) {
		return location, nil
	}

	name, err := fileName(location)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(f.dir, name)

	if !f.refresh {
		if info, statErr := os.Stat(dest); statErr == nil && info.Size() > 0 {
			f.logger.Debug().Str("file", dest).Msg("using cached download")
			return dest, nil
		}
	}

	start := time.Now()
	_, err = f.cb.Execute(func() (string, error) {
		return dest, f.download(ctx, location, dest)
	})
	metrics.RecordDatasetFetch(name, err)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			f.logger.Warn().Err(err).Str("url", location).Msg("download rejected by circuit breaker")
		}
		return "", fmt.Errorf("fetch %s: %w", location, err)
	}

	f.logger.Info().
		Str("url", location).
		Str("file", dest).
		Int64("duration_ms", time.Since(start).Milliseconds()).
		Msg("dataset downloaded")
	return dest, nil
}

// download writes the body of location to dest via a temporary file.
func (f *Fetcher) download(ctx context.Context, location, dest string) error {
	if err := os.MkdirAll(f.dir, 0o750); err != nil {
		return fmt.Errorf("create download dir: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	tmp, err := os.CreateTemp(f.dir, ".download-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // already renamed on success

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("write body: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, dest); err != nil {
		return fmt.Errorf("move download into place: %w", err)
	}
	return nil
}

// fileName derives the cache file name from the URL path.
func fileName(location string) (string, error) {
	u, err := url.Parse(location)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url %q has no file name", location)
	}
	return name, nil
}

// stateToFloat converts circuit breaker state to a gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
