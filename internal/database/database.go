// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // DuckDB driver
	"github.com/rs/zerolog"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// defaultTimeout bounds queries issued without a caller deadline.
const defaultTimeout = 30 * time.Second

// Config holds DuckDB settings.
type Config struct {
	// Path is the database file, or MemoryPath.
	Path string

	// MaxMemory caps DuckDB memory, e.g. "2GB".
	MaxMemory string

	// Threads is the DuckDB worker count. 0 uses NumCPU.
	Threads int
}

// ErrNotOpen is returned by operations on a closed database.
var ErrNotOpen = errors.New("database connection is nil")

// DB wraps a DuckDB connection holding the ratings and anime tables.
type DB struct {
	conn   *sql.DB
	cfg    Config
	logger zerolog.Logger
}

// Open opens (or creates) the database and ensures the schema exists.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Open(cfg Config, logger zerolog.Logger) (*DB, error) {
	if cfg.Path == "" {
		cfg.Path = MemoryPath
	}
	if cfg.MaxMemory == "" {
		cfg.MaxMemory = "2GB"
	}
	if cfg.Threads <= 0 {
		cfg.Threads = runtime.NumCPU()
	}

	if cfg.Path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	connStr := fmt.Sprintf("%s?access_mode=read_write&threads=%d&max_memory=%s&autoinstall_known_extensions=false&autoload_known_extensions=false",
		cfg.Path, cfg.Threads, cfg.MaxMemory)

	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db := &DB{
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "database").Logger(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	if err := conn.PingContext(ctx); err != nil {
		closeQuietly(conn)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.createTables(ctx); err != nil {
		closeQuietly(conn)
		return nil, err
	}

	db.logger.Info().
		Str("path", cfg.Path).
		Int("threads", cfg.Threads).
		Str("max_memory", cfg.MaxMemory).
		Msg("database opened")

	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS ratings (
		user_id INTEGER NOT NULL,
		anime_id INTEGER NOT NULL,
		rating INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS anime (
		seq BIGINT NOT NULL,
		anime_id INTEGER NOT NULL,
		name VARCHAR NOT NULL,
		genre VARCHAR NOT NULL,
		type VARCHAR NOT NULL,
		episodes INTEGER,
		rating DOUBLE,
		members INTEGER NOT NULL
	)`,
}

func (db *DB) createTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Close checkpoints and closes the connection.
func (db *DB) Close() error {
	if db.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	if err := db.Checkpoint(ctx); err != nil {
		db.logger.Warn().Err(err).Msg("Failed to checkpoint database before close")
	}
	cancel()

	err := db.conn.Close()
	db.conn = nil
	return err
}

// Ping checks if the database connection is alive.
func (db *DB) Ping(ctx context.Context) error {
	if db.conn == nil {
		return ErrNotOpen
	}
	return db.conn.PingContext(ctx)
}

// Checkpoint flushes the WAL into the database file.
func (db *DB) Checkpoint(ctx context.Context) error {
	if db.conn == nil {
		return ErrNotOpen
	}
	if _, err := db.conn.ExecContext(ctx, "CHECKPOINT"); err != nil {
		return fmt.Errorf("checkpoint failed: %w", err)
	}
	return nil
}

// Path returns the configured database path.
func (db *DB) Path() string {
	return db.cfg.Path
}

// ensureContext applies defaultTimeout when ctx has no deadline.
func ensureContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, defaultTimeout)
}
