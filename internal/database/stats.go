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

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Stats computes the exploratory statistics in SQL. The result matches
// dataset.Summarize over the same data, including tie ordering.
func (db *DB) Stats(ctx context.Context, minRatingsPerItem, maxRatingsPerUser int) (*dataset.Stats, error) {
	if db.conn == nil {
		return nil, ErrNotOpen
	}
	ctx, cancel := ensureContext(ctx)
	defer cancel()

	start := time.Now()
	stats, err := db.stats(ctx, minRatingsPerItem, maxRatingsPerUser)
	metrics.RecordDBQuery("stats", "ratings", time.Since(start), err)
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (db *DB) stats(ctx context.Context, minItem, maxUser int) (*dataset.Stats, error) {
	stats := &dataset.Stats{}
	sentinel := recommend.UnratedSentinel

	err := db.conn.QueryRowContext(ctx, `SELECT
			COUNT(*) FILTER (WHERE rating <> ?),
			COUNT(*) FILTER (WHERE rating = ?),
			COUNT(DISTINCT user_id) FILTER (WHERE rating <> ?),
			COUNT(DISTINCT anime_id) FILTER (WHERE rating <> ?)
		FROM ratings`, sentinel, sentinel, sentinel, sentinel,
	).Scan(&stats.Ratings, &stats.Unrated, &stats.Users, &stats.Anime)
	if err != nil {
		return nil, fmt.Errorf("count ratings: %w", err)
	}
	if stats.Users > 0 {
		stats.MeanRatingsPerUser = float64(stats.Ratings) / float64(stats.Users)
	}
	if stats.Anime > 0 {
		stats.MeanRatingsPerAnime = float64(stats.Ratings) / float64(stats.Anime)
	}

	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM anime`).Scan(&stats.CatalogSize); err != nil {
		return nil, fmt.Errorf("count anime: %w", err)
	}

	if stats.TypeCounts, err = db.labelCounts(ctx, "type", 0); err != nil {
		return nil, err
	}
	if stats.TopGenres, err = db.labelCounts(ctx, "genre", dataset.TopListSize); err != nil {
		return nil, err
	}
	if stats.RatingHistogram, err = db.histogram(ctx); err != nil {
		return nil, err
	}
	if stats.TopUsers, err = db.topUsers(ctx); err != nil {
		return nil, err
	}
	if stats.TopAnime, err = db.topAnime(ctx); err != nil {
		return nil, err
	}
	if stats.Filtered, err = db.filterSummary(ctx, minItem, maxUser); err != nil {
		return nil, err
	}
	return stats, nil
}

// labelCounts counts anime rows per non-empty value of column. The column
// name is always a constant from this file.
func (db *DB) labelCounts(ctx context.Context, column string, limit int) ([]dataset.Count, error) {
	query := fmt.Sprintf(`SELECT %[1]s, COUNT(*) AS n FROM anime
		WHERE %[1]s <> '' GROUP BY %[1]s ORDER BY n DESC, %[1]s ASC`, column)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("count anime by %s: %w", column, err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	out := []dataset.Count{}
	for rows.Next() {
		var c dataset.Count
		if err := rows.Scan(&c.Key, &c.Count); err != nil {
			return nil, fmt.Errorf("scan %s count: %w", column, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (db *DB) histogram(ctx context.Context) ([]dataset.RatingBucket, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT rating, COUNT(*) FROM ratings
		WHERE rating <> ? GROUP BY rating ORDER BY rating`, recommend.UnratedSentinel)
	if err != nil {
		return nil, fmt.Errorf("rating histogram: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	out := []dataset.RatingBucket{}
	for rows.Next() {
		var b dataset.RatingBucket
		if err := rows.Scan(&b.Rating, &b.Count); err != nil {
			return nil, fmt.Errorf("scan histogram: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (db *DB) topUsers(ctx context.Context) ([]dataset.UserCount, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT user_id, COUNT(*) AS n FROM ratings
		WHERE rating <> ? GROUP BY user_id ORDER BY n DESC, user_id ASC LIMIT ?`,
		recommend.UnratedSentinel, dataset.TopListSize)
	if err != nil {
		return nil, fmt.Errorf("top users: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	out := []dataset.UserCount{}
	for rows.Next() {
		var u dataset.UserCount
		if err := rows.Scan(&u.UserID, &u.Ratings); err != nil {
			return nil, fmt.Errorf("scan top user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// topAnime ranks before joining, so anime without metadata take a slot and
// are then dropped.
func (db *DB) topAnime(ctx context.Context) ([]dataset.AnimeCount, error) {
	rows, err := db.conn.QueryContext(ctx, `WITH top AS (
			SELECT anime_id, COUNT(*) AS n FROM ratings
			WHERE rating <> ? GROUP BY anime_id ORDER BY n DESC, anime_id ASC LIMIT ?
		), catalog AS (
			SELECT DISTINCT ON (anime_id) anime_id, name FROM anime ORDER BY anime_id, seq
		)
		SELECT top.anime_id, catalog.name, top.n
		FROM top JOIN catalog ON catalog.anime_id = top.anime_id
		ORDER BY top.n DESC, top.anime_id ASC`,
		recommend.UnratedSentinel, dataset.TopListSize)
	if err != nil {
		return nil, fmt.Errorf("top anime: %w", err)
	}
	defer closeWithLog(rows, &db.logger, "rows")

	out := []dataset.AnimeCount{}
	for rows.Next() {
		var a dataset.AnimeCount
		if err := rows.Scan(&a.AnimeID, &a.Name, &a.Ratings); err != nil {
			return nil, fmt.Errorf("scan top anime: %w", err)
		}
		a.Name = html.UnescapeString(a.Name)
		out = append(out, a)
	}
	return out, rows.Err()
}

func (db *DB) filterSummary(ctx context.Context, minItem, maxUser int) (dataset.FilterSummary, error) {
	fs := dataset.FilterSummary{MinRatingsPerItem: minItem, MaxRatingsPerUser: maxUser}
	sentinel := recommend.UnratedSentinel

	var ratings, users, anime sql.NullInt64
	err := db.conn.QueryRowContext(ctx, `WITH rated AS (
			SELECT user_id, anime_id FROM ratings WHERE rating <> ?
		), per_user AS (
			SELECT user_id, COUNT(*) AS n FROM rated GROUP BY user_id
		), per_anime AS (
			SELECT anime_id, COUNT(*) AS n FROM rated GROUP BY anime_id
		)
		SELECT
			(SELECT COUNT(*) FROM rated
				JOIN per_user USING (user_id)
				JOIN per_anime USING (anime_id)
				WHERE per_anime.n >= ? AND per_user.n <= ?),
			(SELECT COUNT(*) FROM per_user WHERE n <= ?),
			(SELECT COUNT(*) FROM per_anime WHERE n >= ?)`,
		sentinel, minItem, maxUser, maxUser, minItem,
	).Scan(&ratings, &users, &anime)
	if err != nil {
		return fs, fmt.Errorf("filter summary: %w", err)
	}

	fs.Ratings = int(ratings.Int64)
	fs.Users = int(users.Int64)
	fs.Anime = int(anime.Int64)
	return fs, nil
}
