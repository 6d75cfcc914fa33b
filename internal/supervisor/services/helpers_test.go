// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/recommend"
)

// memorySource serves fixed ratings and counts Ratings calls.
type memorySource struct {
	ratings []recommend.Rating
	calls   atomic.Int32
	err     error
}

func (m *memorySource) Name() string { return "memory" }

func (m *memorySource) Ratings(context.Context) ([]recommend.Rating, error) {
	m.calls.Add(1)
	if m.err != nil {
		return nil, m.err
	}
	return m.ratings, nil
}

func (m *memorySource) Anime(context.Context) ([]recommend.Anime, error) {
	return nil, nil
}

// fixtureRatings gives user 1 five ratings, user 2 four, user 3 three and
// user 4 two, over five items.
func fixtureRatings() []recommend.Rating {
	return []recommend.Rating{
		{UserID: 1, AnimeID: 10, Score: 9}, {UserID: 1, AnimeID: 20, Score: 8},
		{UserID: 1, AnimeID: 30, Score: 7}, {UserID: 1, AnimeID: 40, Score: 6},
		{UserID: 1, AnimeID: 50, Score: 5},
		{UserID: 2, AnimeID: 10, Score: 8}, {UserID: 2, AnimeID: 20, Score: 9},
		{UserID: 2, AnimeID: 30, Score: 6}, {UserID: 2, AnimeID: 40, Score: 7},
		{UserID: 3, AnimeID: 10, Score: 10}, {UserID: 3, AnimeID: 20, Score: 4},
		{UserID: 3, AnimeID: 50, Score: 9},
		{UserID: 4, AnimeID: 30, Score: 3}, {UserID: 4, AnimeID: 40, Score: 10},
	}
}

func newTestEngine(t *testing.T) *recommend.Engine {
	t.Helper()

	cfg := recommend.DefaultConfig()
	cfg.Matrix.MinRatingsPerItem = 1
	cfg.Matrix.MaxRatingsPerUser = 100

	engine, err := recommend.NewEngine(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return engine
}

func newLoadedEngine(t *testing.T) *recommend.Engine {
	t.Helper()

	engine := newTestEngine(t)
	if err := engine.Load(context.Background(), &memorySource{ratings: fixtureRatings()}); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return engine
}
