// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/tomtom215/animerec/internal/dataset"
)

func TestHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		skipLoad   bool
		wantStatus string
		wantLoaded bool
	}{
		{"loaded", false, "healthy", true},
		{"before first load", true, "degraded", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := newTestServer(t, serverOptions{skipLoad: tt.skipLoad})
			rec, env := srv.do(t, http.MethodGet, "/api/v1/health")
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", rec.Code)
			}

			var health HealthStatus
			decodeData(t, env, &health)
			if health.Status != tt.wantStatus || health.SnapshotLoaded != tt.wantLoaded {
				t.Errorf("health = %+v", health)
			}
			if health.Version != "test" {
				t.Errorf("Version = %q, want test", health.Version)
			}
			if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
				t.Error("security headers missing")
			}
		})
	}
}

func TestStatus(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	srv.do(t, http.MethodGet, "/api/v1/users/1/recommendations")

	rec, env := srv.do(t, http.MethodGet, "/api/v1/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var status StatusResponse
	decodeData(t, env, &status)
	if !status.Load.Loaded || status.Load.Users != 3 || status.Load.Items != 4 {
		t.Errorf("Load = %+v", status.Load)
	}
	if status.Load.CatalogSize != 4 || status.Load.Fingerprint == "" {
		t.Errorf("Load = %+v", status.Load)
	}
	if status.Engine.RequestCount != 1 {
		t.Errorf("RequestCount = %d, want 1", status.Engine.RequestCount)
	}
	if status.Source != "fixture" {
		t.Errorf("Source = %q", status.Source)
	}
}

func TestStats_CachedPerSnapshot(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})

	rec, env := srv.do(t, http.MethodGet, "/api/v1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var stats dataset.Stats
	decodeData(t, env, &stats)
	if stats.Ratings != 7 || stats.Users != 3 {
		t.Errorf("stats = %+v", stats)
	}
	if env.Metadata.Cached {
		t.Error("first call should not be cached")
	}

	_, env = srv.do(t, http.MethodGet, "/api/v1/stats")
	if !env.Metadata.Cached {
		t.Error("second call should be cached")
	}
	if got := srv.stats.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d, want 1", got)
	}

	// a new snapshot with the same data keeps its fingerprint
	if err := srv.engine.Load(context.Background(), srv.source); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	srv.do(t, http.MethodGet, "/api/v1/stats")
	if got := srv.stats.calls.Load(); got != 1 {
		t.Errorf("provider calls = %d after same-data reload, want 1", got)
	}
}

func TestStats_NoProvider(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	srv.handler.stats = nil

	rec, _ := srv.do(t, http.MethodGet, "/api/v1/stats")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestPerformance(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, serverOptions{})
	srv.do(t, http.MethodGet, "/api/v1/users/1/similar")
	srv.do(t, http.MethodGet, "/api/v1/users/2/similar")

	rec, env := srv.do(t, http.MethodGet, "/api/v1/performance?recent=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var perf PerformanceResponse
	decodeData(t, env, &perf)
	if len(perf.Recent) != 1 {
		t.Errorf("len(Recent) = %d, want 1", len(perf.Recent))
	}

	var found bool
	for _, route := range perf.Routes {
		if route.Route == "GET /api/v1/users/{userID}/similar" {
			found = true
			if route.RequestCount != 2 {
				t.Errorf("RequestCount = %d, want 2", route.RequestCount)
			}
		}
	}
	if !found {
		t.Errorf("routes = %+v, want the similar-users pattern", perf.Routes)
	}
}

func TestReload(t *testing.T) {
	t.Parallel()

	t.Run("disabled by default", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, serverOptions{})
		rec, _ := srv.do(t, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code == http.StatusOK || rec.Code == http.StatusAccepted {
			t.Errorf("status = %d, want the route to be absent", rec.Code)
		}
	})

	t.Run("wait publishes a new snapshot", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, serverOptions{adminEnabled: true})
		before := srv.engine.Snapshot().Version

		rec, env := srv.do(t, http.MethodPost, "/api/v1/admin/reload?wait=true")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
		}
		var data ReloadResponse
		decodeData(t, env, &data)
		if !data.Accepted || data.Status == nil || data.Status.SnapshotVersion != before+1 {
			t.Errorf("data = %+v", data)
		}
	})

	t.Run("background reload", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, serverOptions{adminEnabled: true})
		before := srv.engine.Snapshot().Version

		rec, _ := srv.do(t, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}

		done := make(chan struct{})
		go func() {
			srv.handler.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("background reload did not finish")
		}

		if got := srv.engine.Snapshot().Version; got != before+1 {
			t.Errorf("version = %d, want %d", got, before+1)
		}
		if got := srv.source.loads.Load(); got != 2 {
			t.Errorf("source loads = %d, want 2", got)
		}
	})
	t.Run("shutdown cancels background reload", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, serverOptions{adminEnabled: true})
		before := srv.engine.Snapshot().Version
		srv.source.holding = make(chan struct{}, 1)
		srv.source.hold.Store(true)

		rec, _ := srv.do(t, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusAccepted {
			t.Fatalf("status = %d, want 202", rec.Code)
		}
		select {
		case <-srv.source.holding:
		case <-time.After(2 * time.Second):
			t.Fatal("background reload did not start")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.handler.Shutdown(ctx); err != nil {
			t.Fatalf("Shutdown() error = %v", err)
		}
		if got := srv.engine.Snapshot().Version; got != before {
			t.Errorf("version = %d, want %d after a cancelled reload", got, before)
		}

		rec, env := srv.do(t, http.MethodPost, "/api/v1/admin/reload")
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, want 503 after shutdown", rec.Code)
		}
		if env.Error == nil || env.Error.Code != ErrCodeServiceUnavailable {
			t.Errorf("error = %+v", env.Error)
		}
	})

	t.Run("shutdown gives up when ctx expires", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(t, serverOptions{adminEnabled: true})
		srv.handler.reloads.Add(1)
		defer srv.handler.reloads.Done()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if err := srv.handler.Shutdown(ctx); !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("Shutdown() error = %v, want context.DeadlineExceeded", err)
		}
	})
}
