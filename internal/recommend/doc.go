// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package recommend implements user-based collaborative filtering over a
// rating matrix.
//
// # Architecture
//
// The package has two layers:
//
//   - Core: BuildMatrix, FindSimilarUsers and Recommend. These are pure
//     functions over an immutable Matrix. They perform no I/O and hold no
//     state between calls.
//   - Engine: a serving wrapper that owns the current Snapshot (Matrix plus
//     Catalog), swaps it atomically on reload, and layers request defaults,
//     caching, persistence and metrics on top of the core.
//
// # Matrix Semantics
//
// Rows are users whose total rating count is at most the activity threshold.
// Columns are items whose total rating count is at least the popularity
// threshold. Both counts are taken over ratings with the -1 sentinel removed.
// A missing cell reads as 0, which doubles as the "unseen" marker used to
// select recommendation candidates. Row and column identifiers ascend.
//
// The matrix is stored row-compressed with precomputed norms, but every
// accessor exposes the dense view.
//
// # Ranking
//
// Neighbors are ranked by cosine similarity, ties broken by ascending user
// ID. Items are scored by the plain mean of the neighbors' cells and ranked
// by score, ties broken by ascending item ID. Category filtering and catalog
// joins happen after ranking and before truncation, so retained items keep
// their global order.
//
// # Usage
//
//	m := recommend.BuildMatrix(ratings, 1000, 1000)
//
//	neighbors, err := recommend.FindSimilarUsers(m, userID, 5)
//	if err != nil {
//	    return err
//	}
//
//	recs, err := recommend.Recommend(m, userID, neighbors.UserIDs, 10, recommend.RecommendOptions{
//	    Catalog:  recommend.NewCatalog(anime),
//	    Category: "Movie",
//	})
//
// # Thread Safety
//
// Matrix and Catalog are immutable after construction and safe for
// concurrent readers. Engine is safe for concurrent use; Load serializes
// rebuilds and publishes the new snapshot with a single atomic store.
package recommend
