// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/animerec/internal/dataset"
	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// ErrNoRatingsPath indicates Import was called without a ratings file.
var ErrNoRatingsPath = errors.New("ratings path is required")

// ImportReport counts the rows processed by Import.
type ImportReport struct {
	// Ratings is the number of stored rating rows, sentinels included.
	Ratings int `json:"ratings"`

	// Unrated is the number of stored sentinel rows.
	Unrated int `json:"unrated"`

	// InvalidRatings counts rating rows rejected by validation.
	InvalidRatings int `json:"invalid_ratings"`

	// Anime is the number of stored anime rows.
	Anime int `json:"anime"`

	// InvalidAnime counts anime rows rejected by validation.
	InvalidAnime int `json:"invalid_anime"`

	Duration time.Duration `json:"duration"`
}

// Rows are read as text and cast explicitly so a malformed row is counted
// as invalid instead of failing the whole file.
const ratingsSource = `SELECT
		TRY_CAST(user_id AS INTEGER) AS user_id,
		TRY_CAST(anime_id AS INTEGER) AS anime_id,
		TRY_CAST(rating AS INTEGER) AS rating
	FROM read_csv(%s, header = true, all_varchar = true, delim = ',', quote = '"', escape = '"')`

const ratingsValid = `user_id IS NOT NULL AND anime_id IS NOT NULL AND rating IS NOT NULL
	AND (rating = ? OR rating BETWEEN ? AND ?)`

const animeSource = `SELECT
		row_number() OVER () AS seq,
		TRY_CAST(anime_id AS INTEGER) AS anime_id,
		COALESCE(name, '') AS name,
		COALESCE(genre, '') AS genre,
		COALESCE(type, '') AS type,
		episodes AS raw_episodes,
		TRY_CAST(episodes AS INTEGER) AS episodes,
		rating AS raw_rating,
		TRY_CAST(rating AS DOUBLE) AS rating,
		members AS raw_members,
		TRY_CAST(members AS INTEGER) AS members
	FROM read_csv(%s, header = true, all_varchar = true, delim = ',', quote = '"', escape = '"')`

const animeValid = `anime_id IS NOT NULL
	AND (raw_episodes IS NULL OR raw_episodes = 'Unknown' OR episodes IS NOT NULL)
	AND (raw_rating IS NULL OR rating IS NOT NULL)
	AND (raw_members IS NULL OR members IS NOT NULL)`

// Import replaces the ratings and anime tables with the contents of the
// given CSV files. animePath may be empty, which leaves the anime table
// empty. Both tables are replaced in one transaction.
func (db *DB) Import(ctx context.Context, ratingsPath, animePath string) (*ImportReport, error) {
	if db.conn == nil {
		return nil, ErrNotOpen
	}
	if ratingsPath == "" {
		return nil, ErrNoRatingsPath
	}

	start := time.Now()
	report := &ImportReport{}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() //nolint:errcheck // rollback after failure is best-effort
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM ratings"); err != nil {
		return nil, fmt.Errorf("clear ratings: %w", err)
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM anime"); err != nil {
		return nil, fmt.Errorf("clear anime: %w", err)
	}

	ratingsSrc := fmt.Sprintf(ratingsSource, quoteLiteral(ratingsPath))
	queryStart := time.Now()
	var total int
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE %[2]s),
			COUNT(*) FILTER (WHERE (%[2]s) AND rating = ?)
		FROM (%[1]s)`, ratingsSrc, ratingsValid),
		recommend.UnratedSentinel, dataset.MinScore, dataset.MaxScore,
		recommend.UnratedSentinel, dataset.MinScore, dataset.MaxScore,
		recommend.UnratedSentinel,
	).Scan(&total, &report.Ratings, &report.Unrated)
	if err != nil {
		metrics.RecordDBQuery("import", "ratings", time.Since(queryStart), err)
		return nil, fmt.Errorf("scan %s: %w", ratingsPath, err)
	}
	report.InvalidRatings = total - report.Ratings

	_, err = tx.ExecContext(ctx, fmt.Sprintf(
		`INSERT INTO ratings SELECT user_id, anime_id, rating FROM (%s) WHERE %s`, ratingsSrc, ratingsValid),
		recommend.UnratedSentinel, dataset.MinScore, dataset.MaxScore)
	metrics.RecordDBQuery("import", "ratings", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", ratingsPath, err)
	}

	if animePath != "" {
		animeSrc := fmt.Sprintf(animeSource, quoteLiteral(animePath))
		queryStart = time.Now()
		err = tx.QueryRowContext(ctx, fmt.Sprintf(
			`SELECT COUNT(*), COUNT(*) FILTER (WHERE %s) FROM (%s)`, animeValid, animeSrc),
		).Scan(&total, &report.Anime)
		if err != nil {
			metrics.RecordDBQuery("import", "anime", time.Since(queryStart), err)
			return nil, fmt.Errorf("scan %s: %w", animePath, err)
		}
		report.InvalidAnime = total - report.Anime

		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			`INSERT INTO anime
			SELECT seq, anime_id, name, genre, type, episodes, rating, COALESCE(members, 0)
			FROM (%s) WHERE %s`, animeSrc, animeValid))
		metrics.RecordDBQuery("import", "anime", time.Since(queryStart), err)
		if err != nil {
			return nil, fmt.Errorf("import %s: %w", animePath, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import: %w", err)
	}

	report.Duration = time.Since(start)
	metrics.RecordDatasetRecords("ratings", report.Ratings-report.Unrated, report.Unrated, report.InvalidRatings)
	if animePath != "" {
		metrics.RecordDatasetRecords("anime", report.Anime, 0, report.InvalidAnime)
	}

	db.logger.Info().
		Str("ratings_file", ratingsPath).
		Str("anime_file", animePath).
		Int("ratings", report.Ratings).
		Int("unrated", report.Unrated).
		Int("invalid_ratings", report.InvalidRatings).
		Int("anime", report.Anime).
		Int("invalid_anime", report.InvalidAnime).
		Int64("duration_ms", report.Duration.Milliseconds()).
		Msg("dataset imported")

	return report, nil
}
