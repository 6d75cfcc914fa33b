// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package recommend

import "errors"

var (
	// ErrInvalidK is returned for a negative or over-limit neighborhood size.
	ErrInvalidK = errors.New("invalid k")

	// ErrInvalidTopN is returned for a negative or over-limit result count.
	ErrInvalidTopN = errors.New("invalid top_n")

	// ErrCategoryWithoutCatalog is returned when a category filter is
	// requested but no catalog is available to join against.
	ErrCategoryWithoutCatalog = errors.New("category filter requires a catalog")

	// ErrNotLoaded is returned by the engine before the first snapshot.
	ErrNotLoaded = errors.New("no snapshot loaded")

	// ErrLoadInProgress is returned when a rebuild is already running.
	ErrLoadInProgress = errors.New("snapshot load already in progress")
)
