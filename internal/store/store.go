// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package store persists computed recommendation responses in BadgerDB so
// precomputed results survive restarts. It implements recommend.ResultStore.
//
// Keys are the engine's cache keys, which embed the snapshot fingerprint.
// Entries carry a native Badger TTL; Prune removes entries computed from
// other snapshots before they expire.
package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/animerec/internal/metrics"
	"github.com/tomtom215/animerec/internal/recommend"
)

// Errors
var (
	// ErrClosed is returned when the store is closed.
	ErrClosed = errors.New("result store is closed")

	// ErrEmptyKey is returned when an empty key is provided.
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrNilResponse is returned when Put is given a nil response.
	ErrNilResponse = errors.New("response cannot be nil")
)

// Config holds result store settings.
type Config struct {
	// Path is the directory where BadgerDB stores its files.
	Path string

	// InMemory keeps everything in memory. Path is ignored.
	InMemory bool

	// EntryTTL expires stored responses. 0 keeps them until pruned.
	EntryTTL time.Duration

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// Compression enables Snappy compression of value log entries.
	Compression bool

	// GCRatio is the value log discard ratio passed to RunValueLogGC.
	GCRatio float64

	// MemTableSize is the size of each memtable in bytes. 0 uses the
	// Badger default.
	MemTableSize int64

	// ValueLogFileSize is the size of each value log file in bytes. 0 uses
	// the Badger default.
	ValueLogFileSize int64
}

// DefaultConfig returns settings suitable for a precompute cache at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:             path,
		EntryTTL:         24 * time.Hour,
		Compression:      true,
		GCRatio:          0.5,
		MemTableSize:     16 << 20,
		ValueLogFileSize: 64 << 20,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return errors.New("store path is required")
	}
	if c.EntryTTL < 0 {
		return fmt.Errorf("entry TTL must be non-negative, got %v", c.EntryTTL)
	}
	if c.GCRatio <= 0 || c.GCRatio >= 1 {
		return fmt.Errorf("GC ratio must be in (0, 1), got %v", c.GCRatio)
	}
	return nil
}

// Stats reports store activity since Open.
type Stats struct {
	Writes  int64 `json:"writes"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Pruned  int64 `json:"pruned"`
	GCRuns  int64 `json:"gc_runs"`
	LSMSize int64 `json:"lsm_size_bytes"`
	VLog    int64 `json:"vlog_size_bytes"`
}

// entry is the stored value.
type entry struct {
	Response *recommend.Response `json:"response"`
	StoredAt time.Time           `json:"stored_at"`
}

// Store is a BadgerDB-backed recommend.ResultStore.
type Store struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool

	writes atomic.Int64
	hits   atomic.Int64
	misses atomic.Int64
	pruned atomic.Int64
	gcRuns atomic.Int64
}

// Open opens (or creates) the store.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid store config: %w", err)
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	if cfg.MemTableSize > 0 {
		opts.MemTableSize = cfg.MemTableSize
	}
	if cfg.ValueLogFileSize > 0 && !cfg.InMemory {
		opts.ValueLogFileSize = cfg.ValueLogFileSize
	}
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	s := &Store{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "store").Logger(),
	}

	s.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("entry_ttl", cfg.EntryTTL).
		Bool("compression", cfg.Compression).
		Msg("result store opened")
	return s, nil
}

func (s *Store) checkOpen() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// Get returns the response stored under key, or ok=false if absent or
// expired.
func (s *Store) Get(ctx context.Context, key string) (*recommend.Response, bool, error) {
	if err := s.checkOpen(); err != nil {
		return nil, false, err
	}
	if key == "" {
		return nil, false, ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var e entry
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("get %q: %w", key, err)
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	metrics.RecordStoreOperation("get", err)
	if err != nil {
		return nil, false, err
	}

	if !found || e.Response == nil {
		s.misses.Add(1)
		return nil, false, nil
	}
	s.hits.Add(1)
	return e.Response, true, nil
}

// Put stores resp under key with the configured TTL.
func (s *Store) Put(ctx context.Context, key string, resp *recommend.Response) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if key == "" {
		return ErrEmptyKey
	}
	if resp == nil {
		return ErrNilResponse
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(&entry{Response: resp, StoredAt: time.Now().UTC()})
	if err != nil {
		return fmt.Errorf("marshal response: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), data)
		if s.cfg.EntryTTL > 0 {
			e = e.WithTTL(s.cfg.EntryTTL)
		}
		return txn.SetEntry(e)
	})
	metrics.RecordStoreOperation("put", err)
	if err != nil {
		return fmt.Errorf("write to BadgerDB: %w", err)
	}

	s.writes.Add(1)
	return nil
}

// Count returns the number of live keys starting with prefix.
func (s *Store) Count(ctx context.Context, prefix string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	n := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if n%1000 == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			n++
		}
		return nil
	})
	metrics.RecordStoreOperation("count", err)
	return n, err
}

// Prune deletes every response key that does not belong to the snapshot
// with the given fingerprint and returns how many were removed.
func (s *Store) Prune(ctx context.Context, fingerprint string) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	keep := []byte(recommend.SnapshotKeyPrefix(fingerprint))
	var stale [][]byte
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(recommend.KeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if !bytes.HasPrefix(key, keep) {
				stale = append(stale, it.Item().KeyCopy(nil))
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordStoreOperation("prune", err)
		return 0, fmt.Errorf("scan stale keys: %w", err)
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range stale {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := wb.Delete(key); err != nil {
			metrics.RecordStoreOperation("prune", err)
			return 0, fmt.Errorf("delete stale key: %w", err)
		}
	}
	err = wb.Flush()
	metrics.RecordStoreOperation("prune", err)
	if err != nil {
		return 0, fmt.Errorf("flush deletes: %w", err)
	}

	s.pruned.Add(int64(len(stale)))
	if len(stale) > 0 {
		s.logger.Info().
			Str("fingerprint", fingerprint).
			Int("removed", len(stale)).
			Msg("pruned stale responses")
	}
	return len(stale), nil
}

// RunGC triggers BadgerDB value log garbage collection until nothing more
// can be reclaimed.
func (s *Store) RunGC() error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	if s.cfg.InMemory {
		return nil
	}

	defer s.gcRuns.Add(1)
	for {
		err := s.db.RunValueLogGC(s.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			break
		}
		if err != nil {
			metrics.RecordStoreOperation("gc", err)
			return fmt.Errorf("run GC: %w", err)
		}
	}
	metrics.RecordStoreOperation("gc", nil)
	return nil
}

// Stats returns activity counters and on-disk sizes.
func (s *Store) Stats() Stats {
	st := Stats{
		Writes: s.writes.Load(),
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
		Pruned: s.pruned.Load(),
		GCRuns: s.gcRuns.Load(),
	}
	if s.checkOpen() == nil {
		st.LSMSize, st.VLog = s.db.Size()
	}
	return st
}

// Close closes the underlying database. It is safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	s.logger.Info().Msg("result store closed")
	return nil
}
