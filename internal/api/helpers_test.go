// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/middleware"
	"github.com/tomtom215/animerec/internal/recommend"
)

// fixtureSource serves a small catalog where user 2 is user 1's nearest
// neighbor and anime 30 is the only item user 2 adds.
type fixtureSource struct {
	loads atomic.Int32

	// while hold is set, Ratings signals holding and blocks until its
	// context ends
	hold    atomic.Bool
	holding chan struct{}
}

func (s *fixtureSource) Name() string { return "fixture" }

func (s *fixtureSource) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	s.loads.Add(1)
	if s.hold.Load() {
		select {
		case s.holding <- struct{}{}:
		default:
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return []recommend.Rating{
		{UserID: 1, AnimeID: 10, Score: 9},
		{UserID: 1, AnimeID: 20, Score: 8},
		{UserID: 2, AnimeID: 10, Score: 9},
		{UserID: 2, AnimeID: 20, Score: 8},
		{UserID: 2, AnimeID: 30, Score: 7},
		{UserID: 3, AnimeID: 10, Score: 2},
		{UserID: 3, AnimeID: 40, Score: 10},
	}, nil
}

func (s *fixtureSource) Anime(context.Context) ([]recommend.Anime, error) {
	return []recommend.Anime{
		{ID: 10, Name: "Cowboy Bebop", Type: "TV", Members: 1000},
		{ID: 20, Name: "Trigun", Type: "TV", Members: 500},
		{ID: 30, Name: "Akira", Type: "Movie", Members: 800},
		{ID: 40, Name: "Perfect Blue", Type: "Movie", Members: 300},
	}, nil
}

// countingStats returns fixed statistics and counts calls.
type countingStats struct {
	calls atomic.Int32
}

func (c *countingStats) Stats(context.Context, int, int) (*dataset.Stats, error) {
	c.calls.Add(1)
	return &dataset.Stats{Ratings: 7, Users: 3, Anime: 4}, nil
}

type testServer struct {
	handler *Handler
	engine  *recommend.Engine
	source  *fixtureSource
	stats   *countingStats
	perf    *middleware.PerformanceMonitor
	mux     http.Handler
}

type serverOptions struct {
	skipLoad     bool
	adminEnabled bool
	rateLimit    int
}

func newTestServer(t *testing.T, opts serverOptions) *testServer {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.Matrix.MinRatingsPerItem = 1
	cfg.Matrix.MaxRatingsPerUser = 100

	engine, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}

	src := &fixtureSource{}
	if !opts.skipLoad {
		if err := engine.Load(context.Background(), src); err != nil {
			t.Fatalf("Load() error = %v", err)
		}
	}

	stats := &countingStats{}
	perf := middleware.NewPerformanceMonitor(100, time.Second)
	handler := NewHandler(engine, src, stats, perf, HandlerConfig{Version: "test"})

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.RateLimitDisabled = opts.rateLimit == 0
	mwCfg.RateLimitRequests = opts.rateLimit

	router := NewRouter(handler, perf, RouterConfig{
		Middleware:     mwCfg,
		RequestTimeout: 5 * time.Second,
		AdminEnabled:   opts.adminEnabled,
	})

	return &testServer{
		handler: handler,
		engine:  engine,
		source:  src,
		stats:   stats,
		perf:    perf,
		mux:     router.SetupChi(),
	}
}

// envelope mirrors APIResponse with the data left raw.
type envelope struct {
	Status   string          `json:"status"`
	Data     json.RawMessage `json:"data"`
	Metadata Metadata        `json:"metadata"`
	Error    *APIError       `json:"error"`
}

func (s *testServer) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	rec := httptest.NewRecorder()
	s.mux.ServeHTTP(rec, httptest.NewRequest(method, target, nil))

	var env envelope
	body, err := io.ReadAll(rec.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("decode %s %s: %v (body %q)", method, target, err, body)
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, env.Data)
	}
}
