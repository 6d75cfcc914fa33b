// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"fmt"
	"time"
)

// UnratedSentinel marks a "watched but unrated" record in the ratings data.
const UnratedSentinel = -1

// Rating is a single (user, anime, score) record.
type Rating struct {
	// UserID is the anonymized user identifier.
	UserID int `json:"user_id"`

	// AnimeID is the anime identifier.
	AnimeID int `json:"anime_id"`

	// Score is the user's rating, 1-10, or UnratedSentinel.
	Score int `json:"rating"`
}

// IsUnrated reports whether the record carries the unrated sentinel.
func (r Rating) IsUnrated() bool {
	return r.Score == UnratedSentinel
}

// Anime is item metadata. It is used for display and category filtering,
// never for similarity.
type Anime struct {
	// ID is the anime identifier.
	ID int `json:"anime_id"`

	// Name is the display title.
	Name string `json:"name"`

	// Genre is the comma-separated genre list as published.
	Genre string `json:"genre,omitempty"`

	// Type is the category label (TV, Movie, OVA, Special, ONA, Music).
	Type string `json:"type,omitempty"`

	// Episodes is the episode count, nil when unknown.
	Episodes *int `json:"episodes,omitempty"`

	// Rating is the aggregate community rating, nil when missing.
	Rating *float64 `json:"rating,omitempty"`

	// Members is the community group size.
	Members int `json:"members"`
}

// UserSimilarity pairs a user with a similarity score in [-1, 1].
type UserSimilarity struct {
	UserID     int     `json:"user_id"`
	Similarity float64 `json:"similarity"`
}

// Recommendation is a ranked item with its neighbor-mean score.
type Recommendation struct {
	// AnimeID is the recommended item.
	AnimeID int `json:"anime_id"`

	// Name is the display title. Empty when no catalog was supplied.
	Name string `json:"name,omitempty"`

	// Type is the category label. Empty when no catalog was supplied.
	Type string `json:"type,omitempty"`

	// Score is the mean rating across the neighbor rows. Not normalized.
	Score float64 `json:"score"`
}

// Status describes the outcome of a similarity or recommendation call.
// Only StatusOK carries results; the others are normal empty outcomes.
type Status int

const (
	// StatusOK indicates results were computed.
	StatusOK Status = iota
	// StatusUserNotFound indicates the target user is not a matrix row.
	StatusUserNotFound
	// StatusNoNeighbors indicates there are no other users to compare with.
	StatusNoNeighbors
	// StatusNoCandidates indicates the target has no unseen items.
	StatusNoCandidates
)

// String returns the wire name for the status.
func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusUserNotFound:
		return "user_not_found"
	case StatusNoNeighbors:
		return "no_neighbors"
	case StatusNoCandidates:
		return "no_candidates"
	default:
		return "unknown"
	}
}

// Message returns a human-readable explanation suitable for display.
func (s Status) Message(userID int) string {
	switch s {
	case StatusUserNotFound:
		return fmt.Sprintf("User %d has no ratings.", userID)
	case StatusNoNeighbors:
		return "No other users with ratings."
	case StatusNoCandidates:
		return fmt.Sprintf("User %d has no unseen anime.", userID)
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	switch string(text) {
	case "ok":
		*s = StatusOK
	case "user_not_found":
		*s = StatusUserNotFound
	case "no_neighbors":
		*s = StatusNoNeighbors
	case "no_candidates":
		*s = StatusNoCandidates
	default:
		return fmt.Errorf("unknown status %q", string(text))
	}
	return nil
}

// DataSource supplies the ratings and metadata for a snapshot.
// Implementations must strip UnratedSentinel records.
type DataSource interface {
	// Name identifies the source in logs and status output.
	Name() string

	// Ratings returns every rating record.
	Ratings(ctx context.Context) ([]Rating, error)

	// Anime returns every metadata record.
	Anime(ctx context.Context) ([]Anime, error)
}

// ResultStore persists computed responses across restarts.
// Keys embed the snapshot fingerprint, so entries from older data are
// never returned for a newer snapshot.
type ResultStore interface {
	// Get returns the stored response, or ok=false if absent.
	Get(ctx context.Context, key string) (resp *Response, ok bool, err error)

	// Put stores a response under key.
	Put(ctx context.Context, key string, resp *Response) error
}

// Request is a recommendation request.
type Request struct {
	// UserID is the target user.
	UserID int `json:"user_id"`

	// K is the neighborhood size.
	// Defaults to Config.Limits.DefaultK if zero.
	K int `json:"k,omitempty"`

	// TopN is the number of recommendations to return.
	// Defaults to Config.Limits.DefaultTopN if zero.
	TopN int `json:"top_n,omitempty"`

	// Category restricts results to one anime type (e.g. "Movie").
	Category string `json:"category,omitempty"`

	// RequestID is a unique identifier for tracing.
	RequestID string `json:"request_id,omitempty"`
}

// Response is a recommendation response.
type Response struct {
	// Status is the outcome; only StatusOK has items.
	Status Status `json:"status"`

	// Message explains non-OK statuses.
	Message string `json:"message,omitempty"`

	// Items is the ranked recommendation list.
	Items []Recommendation `json:"items"`

	// Neighbors are the users the scores were averaged over.
	Neighbors []UserSimilarity `json:"neighbors"`

	// TotalCandidates is the number of unseen items that were scored.
	TotalCandidates int `json:"total_candidates"`

	// Metadata contains timing and diagnostic information.
	Metadata ResponseMetadata `json:"metadata"`
}

// ResponseMetadata contains timing and diagnostic information.
type ResponseMetadata struct {
	// RequestID is the unique request identifier.
	RequestID string `json:"request_id"`

	// UserID is the user the recommendations are for.
	UserID int `json:"user_id"`

	// K is the neighborhood size used.
	K int `json:"k"`

	// TopN is the result count requested.
	TopN int `json:"top_n"`

	// Category is the category filter applied, if any.
	Category string `json:"category,omitempty"`

	// LatencyMS is the total latency in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// CacheHit indicates whether the result was served from a cache layer.
	CacheHit bool `json:"cache_hit"`

	// Source is where the result came from: computed, memory or store.
	Source string `json:"source"`

	// SnapshotVersion is the engine snapshot the result was computed on.
	SnapshotVersion int64 `json:"snapshot_version"`

	// Fingerprint identifies the ratings data behind the snapshot.
	Fingerprint string `json:"fingerprint"`

	// LoadedAt is when the snapshot was built.
	LoadedAt time.Time `json:"loaded_at"`

	// Timestamp is when the response was generated.
	Timestamp time.Time `json:"timestamp"`
}

// Response sources.
const (
	SourceComputed = "computed"
	SourceMemory   = "memory"
	SourceStore    = "store"
)

// LoadStatus represents the state of snapshot loading.
type LoadStatus struct {
	// IsLoading indicates whether a rebuild is in progress.
	IsLoading bool `json:"is_loading"`

	// Loaded indicates whether any snapshot is available.
	Loaded bool `json:"loaded"`

	// Source names the data source of the current snapshot.
	Source string `json:"source,omitempty"`

	// SnapshotVersion is the current snapshot version.
	SnapshotVersion int64 `json:"snapshot_version"`

	// Fingerprint identifies the ratings data behind the snapshot.
	Fingerprint string `json:"fingerprint,omitempty"`

	// LoadedAt is when the current snapshot was built.
	LoadedAt time.Time `json:"loaded_at"`

	// LastLoadDurationMS is how long the last rebuild took.
	LastLoadDurationMS int64 `json:"last_load_duration_ms"`

	// LastError contains the last rebuild error, if any.
	LastError string `json:"last_error,omitempty"`

	// RatingCount is the number of ratings read from the source.
	RatingCount int `json:"rating_count"`

	// Users is the matrix row count.
	Users int `json:"users"`

	// Items is the matrix column count.
	Items int `json:"items"`

	// NonZero is the number of stored matrix cells.
	NonZero int `json:"non_zero"`

	// CatalogSize is the number of anime with metadata.
	CatalogSize int `json:"catalog_size"`
}

// Metrics contains engine counters for observability.
type Metrics struct {
	// RequestCount is the total number of recommendation requests.
	RequestCount int64 `json:"request_count"`

	// CacheHits is the number of in-memory cache hits.
	CacheHits int64 `json:"cache_hits"`

	// StoreHits is the number of persistent store hits.
	StoreHits int64 `json:"store_hits"`

	// CacheMisses is the number of requests computed from the matrix.
	CacheMisses int64 `json:"cache_misses"`

	// ErrorCount is the total number of errors.
	ErrorCount int64 `json:"error_count"`

	// LoadCount is the number of snapshots published.
	LoadCount int64 `json:"load_count"`
}
