// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tomtom215/animerec/internal/middleware"
)

func TestRouter_RequestID(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})

	t.Run("generated", func(t *testing.T) {
		t.Parallel()

		rec, env := srv.do(t, http.MethodGet, "/api/v1/health")
		id := rec.Header().Get(middleware.RequestIDHeader)
		if id == "" {
			t.Fatal("X-Request-ID header missing")
		}
		if env.Metadata.RequestID != id {
			t.Errorf("metadata.request_id = %q, want %q", env.Metadata.RequestID, id)
		}
	})

	t.Run("propagated", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/users/1/similar", nil)
		req.Header.Set(middleware.RequestIDHeader, "trace-abc-123")
		rec := httptest.NewRecorder()
		srv.mux.ServeHTTP(rec, req)

		if got := rec.Header().Get(middleware.RequestIDHeader); got != "trace-abc-123" {
			t.Errorf("X-Request-ID = %q, want trace-abc-123", got)
		}
		if !strings.Contains(rec.Body.String(), `"request_id":"trace-abc-123"`) {
			t.Errorf("body does not carry the request id: %s", rec.Body.String())
		}
	})
}

func TestRouter_NotFoundEnvelope(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	rec, env := srv.do(t, http.MethodGet, "/api/v1/nope")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if env.Error == nil || env.Error.Code != ErrCodeNotFound {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	rec, env := srv.do(t, http.MethodDelete, "/api/v1/anime/10")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("error = %+v", env.Error)
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	srv.do(t, http.MethodGet, "/api/v1/users/1/recommendations")

	rec := httptest.NewRecorder()
	srv.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	for _, name := range []string{"animerec_recommend_requests_total", "api_requests_total"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Errorf("metrics output missing %s", name)
		}
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{rateLimit: 2})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec, _ := srv.do(t, http.MethodGet, "/api/v1/anime/10")
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
		t.Fatalf("codes = %v, want the first two to pass", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Errorf("third code = %d, want 429", codes[2])
	}

	// health has its own budget
	rec, _ := srv.do(t, http.MethodGet, "/api/v1/health")
	if rec.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.CORSAllowedOrigins = []string{"https://anime.example"}
	cfg.RateLimitDisabled = true

	srv := newTestServer(t, serverOptions{})
	mux := NewRouter(srv.handler, nil, RouterConfig{Middleware: cfg}).SetupChi()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/users/1/recommendations", nil)
	req.Header.Set("Origin", "https://anime.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://anime.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"line\nbreak", `line\x0abreak`},
		{"tab\there", `tab\x09here`},
		{"del\x7f", `del\x7f`},
	}
	for _, tt := range tests {
		if got := sanitizeLogValue(tt.in); got != tt.want {
			t.Errorf("sanitizeLogValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
