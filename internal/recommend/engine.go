// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/cache"
	"github.com/tomtom215/animerec/internal/metrics"
)

// Snapshot is an immutable view of the data the engine serves from.
type Snapshot struct {
	// Matrix is the filtered rating matrix.
	Matrix *Matrix

	// Catalog is the metadata index, nil when the source had no metadata.
	Catalog *Catalog

	// Fingerprint identifies the matrix and catalog contents.
	Fingerprint string

	// Version increments with every published snapshot.
	Version int64

	// Source names the data source.
	Source string

	// RatingCount is the number of ratings read from the source.
	RatingCount int

	// LoadedAt is when the snapshot was published.
	LoadedAt time.Time
}

// Engine serves recommendations from the current snapshot.
// It is safe for concurrent use.
type Engine struct {
	config *Config
	logger zerolog.Logger

	snapshot atomic.Pointer[Snapshot]
	version  atomic.Int64

	// loadMu serializes rebuilds; readers never take it
	loadMu     sync.Mutex
	statusMu   sync.RWMutex
	loadStatus LoadStatus

	cache *cache.LRU[*Response]
	store ResultStore

	requestCount atomic.Int64
	cacheHits    atomic.Int64
	storeHits    atomic.Int64
	cacheMisses  atomic.Int64
	errorCount   atomic.Int64
	loadCount    atomic.Int64

	now func() time.Time
}

// NewEngine creates a new recommendation engine with no snapshot loaded.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg *Config, logger zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		now:    time.Now,
	}
	if cfg.Cache.Enabled {
		e.cache = cache.New[*Response](cfg.Cache.MaxEntries, cfg.Cache.TTL)
	}

	return e, nil
}

// SetResultStore attaches a persistent store consulted after the memory
// cache and written through on every successful computation.
func (e *Engine) SetResultStore(store ResultStore) {
	e.store = store
}

// Load reads the source, builds a new snapshot and publishes it.
// In-flight requests keep using the previous snapshot. Returns
// ErrLoadInProgress if another Load is running.
func (e *Engine) Load(ctx context.Context, src DataSource) error {
	if !e.loadMu.TryLock() {
		return ErrLoadInProgress
	}
	defer e.loadMu.Unlock()

	start := time.Now()
	e.setLoading(true)
	logger := e.logger.With().Str("source", src.Name()).Logger()
	logger.Info().Msg("loading snapshot")

	snap, err := e.buildSnapshot(ctx, src)
	duration := time.Since(start)
	e.finishLoad(duration, err)

	if err != nil {
		metrics.RecordSnapshotLoad(duration, 0, 0, 0, 0, err)
		logger.Error().Err(err).Msg("snapshot load failed")
		return err
	}

	e.publish(snap)
	metrics.RecordSnapshotLoad(duration, snap.Version, snap.Matrix.NumUsers(), snap.Matrix.NumItems(), snap.Matrix.NonZero(), nil)

	logger.Info().
		Int64("version", snap.Version).
		Str("fingerprint", snap.Fingerprint).
		Int("ratings", snap.RatingCount).
		Int("users", snap.Matrix.NumUsers()).
		Int("items", snap.Matrix.NumItems()).
		Int("non_zero", snap.Matrix.NonZero()).
		Int("catalog", snap.Catalog.Len()).
		Int64("duration_ms", duration.Milliseconds()).
		Msg("snapshot published")

	return nil
}

// buildSnapshot reads the source and builds an unpublished snapshot.
func (e *Engine) buildSnapshot(ctx context.Context, src DataSource) (*Snapshot, error) {
	ratings, err := src.Ratings(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ratings: %w", err)
	}

	anime, err := src.Anime(ctx)
	if err != nil {
		return nil, fmt.Errorf("load anime: %w", err)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m := BuildMatrix(ratings, e.config.Matrix.MinRatingsPerItem, e.config.Matrix.MaxRatingsPerUser)

	var catalog *Catalog
	if len(anime) > 0 {
		catalog = NewCatalog(anime)
	}

	return &Snapshot{
		Matrix:      m,
		Catalog:     catalog,
		Fingerprint: snapshotFingerprint(m, catalog, e.config.CandidatePolicy),
		Source:      src.Name(),
		RatingCount: len(ratings),
	}, nil
}

// publish stamps and stores the snapshot, then invalidates the memory cache.
func (e *Engine) publish(snap *Snapshot) {
	snap.Version = e.version.Add(1)
	snap.LoadedAt = e.now()
	e.snapshot.Store(snap)
	e.loadCount.Add(1)

	if e.cache != nil && e.config.Cache.InvalidateOnLoad {
		e.cache.Clear()
		e.logger.Debug().Msg("cache cleared")
	}
}

func (e *Engine) setLoading(loading bool) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()
	e.loadStatus.IsLoading = loading
}

func (e *Engine) finishLoad(duration time.Duration, err error) {
	e.statusMu.Lock()
	defer e.statusMu.Unlock()

	e.loadStatus.IsLoading = false
	e.loadStatus.LastLoadDurationMS = duration.Milliseconds()
	e.loadStatus.LastError = ""
	if err != nil {
		e.loadStatus.LastError = err.Error()
	}
}

// Snapshot returns the current snapshot, or nil before the first Load.
func (e *Engine) Snapshot() *Snapshot {
	return e.snapshot.Load()
}

// Recommend generates recommendations for a user.
//
// Non-OK statuses (unknown user, no neighbors, no candidates) are returned
// as a Response, not an error. Errors are reserved for invalid requests and
// a missing snapshot.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) Recommend(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	e.requestCount.Add(1)

	req, err := e.prepareRequest(req)
	if err != nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendError("invalid_request")
		return nil, err
	}

	snap := e.snapshot.Load()
	if snap == nil {
		e.errorCount.Add(1)
		metrics.RecordRecommendError("not_loaded")
		return nil, ErrNotLoaded
	}

	logger := e.createRequestLogger(req)
	logger.Debug().Msg("processing recommendation request")

	key := cacheKey(snap.Fingerprint, req)
	if resp := e.tryGetCachedResponse(ctx, key, req, snap, start, logger); resp != nil {
		return resp, nil
	}

	resp, err := e.compute(snap, req)
	if err != nil {
		e.errorCount.Add(1)
		if errors.Is(err, ErrCategoryWithoutCatalog) {
			metrics.RecordRecommendError("invalid_request")
		} else {
			metrics.RecordRecommendError("internal")
		}
		return nil, err
	}

	resp.Metadata = e.buildResponseMetadata(req, snap, start, SourceComputed)
	e.cacheResponse(ctx, key, resp, logger)
	metrics.RecordRecommendation("recommend", resp.Status.String(), time.Since(start))

	logger.Debug().
		Str("status", resp.Status.String()).
		Int("neighbors", len(resp.Neighbors)).
		Int("candidates", resp.TotalCandidates).
		Int("returned", len(resp.Items)).
		Int64("latency_ms", resp.Metadata.LatencyMS).
		Msg("recommendation complete")

	return resp, nil
}

// compute runs the neighbor search and scoring against a snapshot.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) compute(snap *Snapshot, req Request) (*Response, error) {
	neighbors, err := FindSimilarUsers(snap.Matrix, req.UserID, req.K)
	if err != nil {
		return nil, err
	}

	resp := &Response{
		Status:    neighbors.Status,
		Items:     []Recommendation{},
		Neighbors: neighbors.Similarities,
	}
	if resp.Neighbors == nil {
		resp.Neighbors = []UserSimilarity{}
	}
	if neighbors.Status != StatusOK {
		resp.Message = neighbors.Status.Message(req.UserID)
		return resp, nil
	}

	recs, err := Recommend(snap.Matrix, req.UserID, neighbors.UserIDs, req.TopN, RecommendOptions{
		Catalog:    snap.Catalog,
		Category:   req.Category,
		Candidates: e.config.CandidatePolicy,
	})
	if err != nil {
		return nil, err
	}

	resp.Status = recs.Status
	resp.Message = recs.Status.Message(req.UserID)
	resp.Items = recs.Items
	resp.TotalCandidates = recs.Candidates
	return resp, nil
}

// SimilarUsers returns the k nearest neighbors of a user in the current
// snapshot. k == 0 selects Config.Limits.DefaultK.
func (e *Engine) SimilarUsers(ctx context.Context, userID, k int) (*Neighbors, error) {
	start := time.Now()

	if k == 0 {
		k = e.config.Limits.DefaultK
	}
	if err := e.checkK(k); err != nil {
		metrics.RecordRecommendError("invalid_request")
		return nil, err
	}

	snap := e.snapshot.Load()
	if snap == nil {
		metrics.RecordRecommendError("not_loaded")
		return nil, ErrNotLoaded
	}

	neighbors, err := FindSimilarUsers(snap.Matrix, userID, k)
	if err != nil {
		return nil, err
	}

	metrics.RecordRecommendation("similar", neighbors.Status.String(), time.Since(start))
	if neighbors.Status != StatusOK {
		e.logger.Debug().
			Int("user_id", userID).
			Str("status", neighbors.Status.String()).
			Msg(neighbors.Status.Message(userID))
	}

	return neighbors, nil
}

// Anime returns metadata for an anime in the current snapshot.
func (e *Engine) Anime(id int) (Anime, bool) {
	snap := e.snapshot.Load()
	if snap == nil {
		return Anime{}, false
	}
	return snap.Catalog.Lookup(id)
}

// prepareRequest applies defaults, generates a request ID and rejects
// out-of-range values.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) prepareRequest(req Request) (Request, error) {
	if req.RequestID == "" {
		req.RequestID = generateRequestID()
	}

	if req.K == 0 {
		req.K = e.config.Limits.DefaultK
	}
	if err := e.checkK(req.K); err != nil {
		return req, err
	}

	if req.TopN == 0 {
		req.TopN = e.config.Limits.DefaultTopN
	}
	if req.TopN < 0 {
		return req, fmt.Errorf("%w: must be non-negative, got %d", ErrInvalidTopN, req.TopN)
	}
	if req.TopN > e.config.Limits.MaxTopN {
		return req, fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidTopN, req.TopN, e.config.Limits.MaxTopN)
	}

	req.Category = strings.TrimSpace(req.Category)
	return req, nil
}

func (e *Engine) checkK(k int) error {
	if k < 0 {
		return fmt.Errorf("%w: must be non-negative, got %d", ErrInvalidK, k)
	}
	if k > e.config.Limits.MaxK {
		return fmt.Errorf("%w: %d exceeds maximum %d", ErrInvalidK, k, e.config.Limits.MaxK)
	}
	return nil
}

// createRequestLogger creates a logger with request context.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) createRequestLogger(req Request) zerolog.Logger {
	return e.logger.With().
		Str("request_id", req.RequestID).
		Int("user_id", req.UserID).
		Int("k", req.K).
		Int("top_n", req.TopN).
		Str("category", req.Category).
		Logger()
}

// tryGetCachedResponse consults the memory cache, then the result store.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) tryGetCachedResponse(ctx context.Context, key string, req Request, snap *Snapshot, start time.Time, logger zerolog.Logger) *Response {
	if e.cache != nil {
		if cached, ok := e.cache.Get(key); ok {
			e.cacheHits.Add(1)
			metrics.RecordCacheHit(SourceMemory)
			logger.Debug().Msg("cache hit")
			return e.stampCachedResponse(cached, req, snap, start, SourceMemory)
		}
	}

	if e.store != nil {
		stored, ok, err := e.store.Get(ctx, key)
		switch {
		case err != nil:
			metrics.RecordRecommendError("store")
			logger.Warn().Err(err).Msg("result store read failed")
		case ok:
			e.storeHits.Add(1)
			metrics.RecordCacheHit(SourceStore)
			logger.Debug().Msg("result store hit")
			if e.cache != nil {
				e.cache.Add(key, stored)
			}
			return e.stampCachedResponse(stored, req, snap, start, SourceStore)
		}
	}

	e.cacheMisses.Add(1)
	metrics.RecordCacheMiss()
	return nil
}

// stampCachedResponse copies a cached response and refreshes the
// per-request metadata. Snapshot fields describe the serving snapshot, which
// for store hits may differ from the one that computed the result.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) stampCachedResponse(cached *Response, req Request, snap *Snapshot, start time.Time, source string) *Response {
	resp := copyResponse(cached)
	resp.Metadata.SnapshotVersion = snap.Version
	resp.Metadata.Fingerprint = snap.Fingerprint
	resp.Metadata.LoadedAt = snap.LoadedAt
	resp.Metadata.RequestID = req.RequestID
	resp.Metadata.CacheHit = true
	resp.Metadata.Source = source
	resp.Metadata.LatencyMS = time.Since(start).Milliseconds()
	resp.Metadata.Timestamp = e.now()
	metrics.RecordRecommendation("recommend", resp.Status.String(), time.Since(start))
	return resp
}

// cacheResponse stores the response in memory and, for OK results, in the
// result store.
func (e *Engine) cacheResponse(ctx context.Context, key string, resp *Response, logger zerolog.Logger) {
	if e.cache != nil {
		e.cache.Add(key, copyResponse(resp))
	}

	if e.store != nil && resp.Status == StatusOK {
		if err := e.store.Put(ctx, key, resp); err != nil {
			metrics.RecordRecommendError("store")
			logger.Warn().Err(err).Msg("result store write failed")
		}
	}
}

// buildResponseMetadata constructs response metadata.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (e *Engine) buildResponseMetadata(req Request, snap *Snapshot, start time.Time, source string) ResponseMetadata {
	return ResponseMetadata{
		RequestID:       req.RequestID,
		UserID:          req.UserID,
		K:               req.K,
		TopN:            req.TopN,
		Category:        req.Category,
		LatencyMS:       time.Since(start).Milliseconds(),
		CacheHit:        false,
		Source:          source,
		SnapshotVersion: snap.Version,
		Fingerprint:     snap.Fingerprint,
		LoadedAt:        snap.LoadedAt,
		Timestamp:       e.now(),
	}
}

// copyResponse returns a copy that shares no slices with resp.
func copyResponse(resp *Response) *Response {
	out := *resp
	out.Items = append([]Recommendation{}, resp.Items...)
	out.Neighbors = append([]UserSimilarity{}, resp.Neighbors...)
	return &out
}

// KeyPrefix starts every cache and store key.
const KeyPrefix = "rec:"

// SnapshotKeyPrefix returns the key prefix shared by every response
// computed from the snapshot with the given fingerprint.
func SnapshotKeyPrefix(fingerprint string) string {
	return KeyPrefix + fingerprint + ":"
}

// cacheKey returns the cache and store key for a prepared request.
//
//nolint:gocritic // hugeParam: req passed by value for simplicity
func cacheKey(fingerprint string, req Request) string {
	return fmt.Sprintf("%s%d:%d:%d:%s", SnapshotKeyPrefix(fingerprint), req.UserID, req.K, req.TopN, req.Category)
}

// CleanupCache drops expired memory cache entries and returns the count.
func (e *Engine) CleanupCache() int {
	if e.cache == nil {
		return 0
	}
	return e.cache.CleanupExpired()
}

// CacheStats returns memory cache counters.
func (e *Engine) CacheStats() cache.Stats {
	if e.cache == nil {
		return cache.Stats{}
	}
	return e.cache.Stats()
}

// GetStatus returns the current load status.
func (e *Engine) GetStatus() LoadStatus {
	e.statusMu.RLock()
	status := e.loadStatus
	e.statusMu.RUnlock()

	if snap := e.snapshot.Load(); snap != nil {
		status.Loaded = true
		status.Source = snap.Source
		status.SnapshotVersion = snap.Version
		status.Fingerprint = snap.Fingerprint
		status.LoadedAt = snap.LoadedAt
		status.RatingCount = snap.RatingCount
		status.Users = snap.Matrix.NumUsers()
		status.Items = snap.Matrix.NumItems()
		status.NonZero = snap.Matrix.NonZero()
		status.CatalogSize = snap.Catalog.Len()
	}

	return status
}

// GetMetrics returns the current engine counters.
func (e *Engine) GetMetrics() Metrics {
	return Metrics{
		RequestCount: e.requestCount.Load(),
		CacheHits:    e.cacheHits.Load(),
		StoreHits:    e.storeHits.Load(),
		CacheMisses:  e.cacheMisses.Load(),
		ErrorCount:   e.errorCount.Load(),
		LoadCount:    e.loadCount.Load(),
	}
}

// GetConfig returns a copy of the current configuration.
func (e *Engine) GetConfig() *Config {
	return e.config.Clone()
}

// generateRequestID generates a unique request ID for tracing.
func generateRequestID() string {
	return "rec-" + uuid.NewString()
}
