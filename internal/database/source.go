// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package database

import (
	"context"
	"database/sql"
	"fmt"
	"html"
	"time"

	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Ratings returns every stored rating with sentinel rows excluded.
func (db *DB) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	if db.conn == nil {
		return nil, ErrNotOpen
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_id, anime_id, rating FROM ratings WHERE rating <> ?`, recommend.UnratedSentinel)
	if err != nil {
		metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	var ratings []recommend.Rating
	for rows.Next() {
		var r recommend.Rating
		if err := rows.Scan(&r.UserID, &r.AnimeID, &r.Score); err != nil {
			metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, r)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "ratings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}
	return ratings, nil
}

// Anime returns the stored metadata in file order, or nil when the table
// is empty.
func (db *DB) Anime(ctx context.Context) ([]recommend.Anime, error) {
	if db.conn == nil {
		return nil, ErrNotOpen
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	rows, err := db.conn.QueryContext(ctx,
		`SELECT anime_id, name, genre, type, episodes, rating, members FROM anime ORDER BY seq`)
	if err != nil {
		metrics.RecordDBQuery("select", "anime", time.Since(start), err)
		return nil, fmt.Errorf("query anime: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	var anime []recommend.Anime
	for rows.Next() {
		var (
			a        recommend.Anime
			episodes sql.NullInt64
			rating   sql.NullFloat64
		)
		if err := rows.Scan(&a.ID, &a.Name, &a.Genre, &a.Type, &episodes, &rating, &a.Members); err != nil {
			metrics.RecordDBQuery("select", "anime", time.Since(start), err)
			return nil, fmt.Errorf("scan anime: %w", err)
		}
		a.Name = html.UnescapeString(a.Name)
		if episodes.Valid {
			n := int(episodes.Int64)
			a.Episodes = &n
		}
		if rating.Valid {
			f := rating.Float64
			a.Rating = &f
		}
		anime = append(anime, a)
	}
	err = rows.Err()
	metrics.RecordDBQuery("select", "anime", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("iterate anime: %w", err)
	}
	return anime, nil
}

// PathResolver yields local paths of the dataset files, downloading them
// first if needed. dataset.CSVSource implements it.
type PathResolver interface {
	LocalPaths(ctx context.Context) (ratingsPath, animePath string, err error)
}

// Source is a recommend.DataSource backed by DuckDB. When built with a
// PathResolver, every Ratings call re-imports the files first so a
// snapshot reload picks up new data.
type Source struct {
	db    *DB
	paths PathResolver
}

// NewSource wraps db as a DataSource. paths may be nil to serve whatever
// the tables already hold.
func NewSource(db *DB, paths PathResolver) *Source {
	return &Source{db: db, paths: paths}
}

// Name identifies the source.
func (s *Source) Name() string {
	return "duckdb"
}

// Ratings imports the files, if configured, then returns the ratings.
func (s *Source) Ratings(ctx context.Context) ([]recommend.Rating, error) {
	if s.paths != nil {
		ratingsPath, animePath, err := s.paths.LocalPaths(ctx)
		if err != nil {
			return nil, err
		}
		if _, err := s.db.Import(ctx, ratingsPath, animePath); err != nil {
			return nil, err
		}
	}
	return s.db.Ratings(ctx)
}

// Anime returns the stored metadata, or nil when none was imported.
func (s *Source) Anime(ctx context.Context) ([]recommend.Anime, error) {
	anime, err := s.db.Anime(ctx)
	if err != nil {
		return nil, err
	}
	if len(anime) == 0 {
		return nil, nil
	}
	return anime, nil
}

// DB returns the underlying database.
func (s *Source) DB() *DB {
	return s.db
}
