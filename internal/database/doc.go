// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package database stores the rating and anime datasets in DuckDB.
//
// # Overview
//
// DuckDB ingests the published CSV files directly with read_csv, which is
// considerably faster than parsing them row by row in Go for the full
// 7.8 million row ratings file. Once imported, the tables serve two roles:
//
//   - a recommend.DataSource (see Source) that feeds the engine snapshot
//   - an analytical store for the exploratory statistics (see DB.Stats)
//
// # Files
//
//   - database.go: connection lifecycle and schema
//   - import.go: CSV ingestion with the same validation rules as package dataset
//   - source.go: DataSource implementation
//   - stats.go: exploratory statistics in SQL
//
// # Schema
//
//	ratings(user_id INTEGER, anime_id INTEGER, rating INTEGER)
//	anime(seq BIGINT, anime_id INTEGER, name VARCHAR, genre VARCHAR,
//	      type VARCHAR, episodes INTEGER, rating DOUBLE, members INTEGER)
//
// Sentinel (-1) ratings are kept in the ratings table so statistics can
// report them; every read path used for recommendations filters them out.
// The anime seq column records file order so duplicate IDs resolve to the
// first occurrence, matching recommend.NewCatalog.
//
// # Thread Safety
//
// DB is safe for concurrent use. Import replaces both tables inside one
// transaction, so readers see either the old or the new dataset.
package database
