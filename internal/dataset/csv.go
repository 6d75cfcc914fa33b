// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/tomtom215/animerec/internal/recommend"
)

// Score bounds accepted in rating.csv besides the sentinel.
const (
	MinScore = 0
	MaxScore = 10
)

// unknownEpisodes is the anime.csv placeholder for an unknown episode count.
const unknownEpisodes = "Unknown"

// ctxCheckInterval is how many rows are parsed between context checks.
const ctxCheckInterval = 100_000

// ParseReport counts the outcome of parsing one file.
type ParseReport struct {
	// Rows is the number of data rows read, excluding the header.
	Rows int `json:"rows"`

	// Loaded is the number of rows returned.
	Loaded int `json:"loaded"`

	// Unrated is the number of sentinel ratings among Loaded.
	Unrated int `json:"unrated"`

	// Invalid is the number of rows skipped as unparseable.
	Invalid int `json:"invalid"`
}

// ErrMissingColumn indicates a required header is absent.
var ErrMissingColumn = errors.New("missing required column")

// columns maps header names to positions.
type columns map[string]int

func readHeader(r *csv.Reader, required ...string) (columns, error) {
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: %w", io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(columns, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}
	return cols, nil
}

// field returns the trimmed value of a column, or "" if the row is short
// or the column is absent.
func (c columns) field(record []string, name string) string {
	i, ok := c[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true
	return cr
}

// ParseRatings reads rating.csv. Sentinel records are returned and counted
// in ParseReport.Unrated; use StripUnrated to drop them.
func ParseRatings(ctx context.Context, r io.Reader) ([]recommend.Rating, ParseReport, error) {
	var report ParseReport

	cr := newReader(r)
	cols, err := readHeader(cr, "user_id", "anime_id", "rating")
	if err != nil {
		return nil, report, err
	}

	var ratings []recommend.Rating
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Rows++
		if report.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			report.Invalid++
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("read row %d: %w", report.Rows, err)
		}

		rating, ok := parseRating(cols, record)
		if !ok {
			report.Invalid++
			continue
		}
		if rating.IsUnrated() {
			report.Unrated++
		}
		ratings = append(ratings, rating)
	}

	report.Loaded = len(ratings)
	return ratings, report, nil
}

func parseRating(cols columns, record []string) (recommend.Rating, bool) {
	userID, err := strconv.Atoi(cols.field(record, "user_id"))
	if err != nil {
		return recommend.Rating{}, false
	}
	animeID, err := strconv.Atoi(cols.field(record, "anime_id"))
	if err != nil {
		return recommend.Rating{}, false
	}
	score, err := strconv.Atoi(cols.field(record, "rating"))
	if err != nil {
		return recommend.Rating{}, false
	}
	if score != recommend.UnratedSentinel && (score < MinScore || score > MaxScore) {
		return recommend.Rating{}, false
	}
	return recommend.Rating{UserID: userID, AnimeID: animeID, Score: score}, true
}

// ParseAnime reads anime.csv. Only anime_id and name are required.
func ParseAnime(ctx context.Context, r io.Reader) ([]recommend.Anime, ParseReport, error) {
	var report ParseReport

	cr := newReader(r)
	cols, err := readHeader(cr, "anime_id", "name")
	if err != nil {
		return nil, report, err
	}

	var anime []recommend.Anime
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		report.Rows++
		if report.Rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, report, err
			}
		}

		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			report.Invalid++
			continue
		}
		if err != nil {
			return nil, report, fmt.Errorf("read row %d: %w", report.Rows, err)
		}

		a, ok := parseAnime(cols, record)
		if !ok {
			report.Invalid++
			continue
		}
		anime = append(anime, a)
	}

	report.Loaded = len(anime)
	return anime, report, nil
}

func parseAnime(cols columns, record []string) (recommend.Anime, bool) {
	id, err := strconv.Atoi(cols.field(record, "anime_id"))
	if err != nil {
		return recommend.Anime{}, false
	}

	a := recommend.Anime{
		ID:    id,
		Name:  html.UnescapeString(cols.field(record, "name")),
		Genre: cols.field(record, "genre"),
		Type:  cols.field(record, "type"),
	}

	if ep := cols.field(record, "episodes"); ep != "" && ep != unknownEpisodes {
		n, err := strconv.Atoi(ep)
		if err != nil {
			return recommend.Anime{}, false
		}
		a.Episodes = &n
	}

	if rating := cols.field(record, "rating"); rating != "" {
		f, err := strconv.ParseFloat(rating, 64)
		if err != nil {
			return recommend.Anime{}, false
		}
		a.Rating = &f
	}

	if members := cols.field(record, "members"); members != "" {
		n, err := strconv.Atoi(members)
		if err != nil {
			return recommend.Anime{}, false
		}
		a.Members = n
	}

	return a, true
}

// StripUnrated removes sentinel records in place and returns the shortened
// slice along with the number removed.
func StripUnrated(ratings []recommend.Rating) ([]recommend.Rating, int) {
	kept := ratings[:0]
	for _, r := range ratings {
		if r.IsUnrated() {
			continue
		}
		kept = append(kept, r)
	}
	return kept, len(ratings) - len(kept)
}
