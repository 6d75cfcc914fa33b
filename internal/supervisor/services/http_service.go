// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// HTTPServer is the subset of *http.Server the service drives.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// HTTPServerConfig configures the API server service.
type HTTPServerConfig struct {
	// Addr is the listen address, used for logging only.
	Addr string

	// ShutdownTimeout bounds the drain of in-flight requests. Default: 10s.
	ShutdownTimeout time.Duration
}

// HTTPServerService runs the recommendation API under supervision. Context
// cancellation drains in-flight requests within ShutdownTimeout.
//
//	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router}
//	tree.AddAPIService(services.NewHTTPServerService(server, services.HTTPServerConfig{
//		Addr:            server.Addr,
//		ShutdownTimeout: cfg.Server.ShutdownTimeout,
//	}, logger))
type HTTPServerService struct {
	server HTTPServer
	config HTTPServerConfig
	logger zerolog.Logger
	name   string

	// starts counts Serve calls; anything past the first is a supervisor restart
	starts int
}

// NewHTTPServerService creates the API server service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewHTTPServerService(server HTTPServer, cfg HTTPServerConfig, logger zerolog.Logger) *HTTPServerService {
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return &HTTPServerService{
		server: server,
		config: cfg,
		logger: logger.With().Str("service", "http").Str("addr", cfg.Addr).Logger(),
		name:   "http-server",
	}
}

// Serve implements suture.Service. A listener that stops with
// http.ErrServerClosed is a clean exit.
func (h *HTTPServerService) Serve(ctx context.Context) error {
	h.starts++
	if h.starts > 1 {
		h.logger.Warn().Int("restarts", h.starts-1).Msg("recommendation API restarting")
	}

	errCh := make(chan error, 1)
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	h.logger.Info().Msg("recommendation API listening")

	select {
	case err := <-errCh:
		if err != nil {
			h.logger.Error().Err(err).Msg("recommendation API stopped listening")
			return fmt.Errorf("http server failed: %w", err)
		}
		h.logger.Info().Msg("recommendation API closed")
		return nil

	case <-ctx.Done():
		h.logger.Info().
			AnErr("reason", context.Cause(ctx)).
			Dur("timeout", h.config.ShutdownTimeout).
			Msg("draining recommendation API")

		start := time.Now()
		// ctx is already done
		drainCtx, cancel := context.WithTimeout(context.Background(), h.config.ShutdownTimeout)
		defer cancel()

		if err := h.server.Shutdown(drainCtx); err != nil {
			h.logger.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("recommendation API drain incomplete")
			return fmt.Errorf("http server shutdown failed: %w", err)
		}

		<-errCh
		h.logger.Info().Dur("elapsed", time.Since(start)).Msg("recommendation API drained")
		return ctx.Err()
	}
}

// String implements fmt.Stringer for suture logging.
func (h *HTTPServerService) String() string {
	return h.name
}
