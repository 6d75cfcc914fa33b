// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/animerec/internal/middleware"
)

// RouterConfig holds router settings.
type RouterConfig struct {
	// Middleware configures CORS and rate limiting. Nil selects defaults.
	Middleware *ChiMiddlewareConfig

	// RequestTimeout bounds handler execution through the request context.
	// 0 disables the timeout.
	RequestTimeout time.Duration

	// AdminEnabled exposes POST /api/v1/admin/reload.
	AdminEnabled bool
}

// Router wires handlers and middleware into a chi.Router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	perf          *middleware.PerformanceMonitor
	config        RouterConfig
}

// NewRouter creates a new router. perf may be nil.
//
//nolint:gocritic // hugeParam: config passed by value for immutability
func NewRouter(handler *Handler, perf *middleware.PerformanceMonitor, config RouterConfig) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: NewChiMiddleware(config.Middleware),
		perf:          perf,
		config:        config,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is handled
	if router.config.RequestTimeout > 0 {
		r.Use(chimiddleware.Timeout(router.config.RequestTimeout))
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health and Observability
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/", router.handler.Health)
	})

	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		if router.perf != nil {
			r.Use(router.perf.Middleware)
		}
		r.Use(middleware.Compression)

		r.Get("/status", router.handler.Status)
		r.Get("/stats", router.handler.Stats)
		r.Get("/performance", router.handler.Performance)

		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/similar", router.handler.SimilarUsers)
			r.Get("/recommendations", router.handler.Recommendations)
		})

		r.Get("/anime/{animeID}", router.handler.Anime)

		if router.config.AdminEnabled {
			r.With(router.chiMiddleware.RateLimitAdmin()).Post("/admin/reload", router.handler.Reload)
		}
	})

	return r
}
