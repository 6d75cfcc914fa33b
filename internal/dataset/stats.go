// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package dataset

import (
	"sort"
	"strconv"

	"github.com/tomtom215/animerec/internal/recommend"
)

// TopListSize is the length of the ranked lists in Stats.
const TopListSize = 10

// Stats summarizes a dataset.
type Stats struct {
	// Ratings is the number of rating records after sentinel removal.
	Ratings int `json:"ratings"`

	// Unrated is the number of sentinel records removed.
	Unrated int `json:"unrated"`

	// Users is the number of distinct users with at least one rating.
	Users int `json:"users"`

	// Anime is the number of distinct rated anime.
	Anime int `json:"anime"`

	// CatalogSize is the number of metadata records.
	CatalogSize int `json:"catalog_size"`

	// TypeCounts counts catalog entries per type, most common first.
	TypeCounts []Count `json:"type_counts"`

	// TopGenres counts catalog entries per genre list, most common first.
	TopGenres []Count `json:"top_genres"`

	// RatingHistogram counts ratings per score, ascending by score.
	RatingHistogram []RatingBucket `json:"rating_histogram"`

	// MeanRatingsPerUser is the average number of ratings a user gave.
	MeanRatingsPerUser float64 `json:"mean_ratings_per_user"`

	// MeanRatingsPerAnime is the average number of ratings an anime received.
	MeanRatingsPerAnime float64 `json:"mean_ratings_per_anime"`

	// TopUsers are the users with the most ratings.
	TopUsers []UserCount `json:"top_users"`

	// TopAnime are the most rated anime that have catalog entries.
	TopAnime []AnimeCount `json:"top_anime"`

	// Filtered describes the data that survives the matrix filters.
	Filtered FilterSummary `json:"filtered"`
}

// Count is a labeled count.
type Count struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// RatingBucket is one histogram bar.
type RatingBucket struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// UserCount is a user and their rating count.
type UserCount struct {
	UserID  int `json:"user_id"`
	Ratings int `json:"ratings"`
}

// AnimeCount is an anime and the number of ratings it received.
type AnimeCount struct {
	AnimeID int    `json:"anime_id"`
	Name    string `json:"name"`
	Ratings int    `json:"ratings"`
}

// FilterSummary is the size of the data after the popularity and activity
// filters.
type FilterSummary struct {
	MinRatingsPerItem int `json:"min_ratings_per_item"`
	MaxRatingsPerUser int `json:"max_ratings_per_user"`

	// Ratings counts records whose user and anime both survive.
	Ratings int `json:"ratings"`

	// Users counts surviving users, including those left with no ratings.
	Users int `json:"users"`

	// Anime counts surviving anime.
	Anime int `json:"anime"`
}

// Summarize computes dataset statistics. Sentinel records in ratings are
// counted in Unrated and otherwise ignored. Ties in ranked lists are broken
// by ascending key.
func Summarize(ratings []recommend.Rating, anime []recommend.Anime, minRatingsPerItem, maxRatingsPerUser int) *Stats {
	stats := &Stats{CatalogSize: len(anime)}

	perUser := make(map[int]int)
	perAnime := make(map[int]int)
	histogram := make(map[int]int)
	for _, r := range ratings {
		if r.IsUnrated() {
			stats.Unrated++
			continue
		}
		stats.Ratings++
		perUser[r.UserID]++
		perAnime[r.AnimeID]++
		histogram[r.Score]++
	}

	stats.Users = len(perUser)
	stats.Anime = len(perAnime)
	if stats.Users > 0 {
		stats.MeanRatingsPerUser = float64(stats.Ratings) / float64(stats.Users)
	}
	if stats.Anime > 0 {
		stats.MeanRatingsPerAnime = float64(stats.Ratings) / float64(stats.Anime)
	}

	stats.RatingHistogram = make([]RatingBucket, 0, len(histogram))
	for score, n := range histogram {
		stats.RatingHistogram = append(stats.RatingHistogram, RatingBucket{Rating: score, Count: n})
	}
	sort.Slice(stats.RatingHistogram, func(i, j int) bool {
		return stats.RatingHistogram[i].Rating < stats.RatingHistogram[j].Rating
	})

	types := make(map[string]int)
	genres := make(map[string]int)
	for _, a := range anime {
		if a.Type != "" {
			types[a.Type]++
		}
		if a.Genre != "" {
			genres[a.Genre]++
		}
	}
	stats.TypeCounts = rankCounts(types, 0)
	stats.TopGenres = rankCounts(genres, TopListSize)

	for _, id := range topIDs(perUser, TopListSize) {
		stats.TopUsers = append(stats.TopUsers, UserCount{UserID: id, Ratings: perUser[id]})
	}
	if stats.TopUsers == nil {
		stats.TopUsers = []UserCount{}
	}

	// the most-rated list keeps only anime with metadata
	catalog := recommend.NewCatalog(anime)
	stats.TopAnime = []AnimeCount{}
	for _, id := range topIDs(perAnime, TopListSize) {
		a, ok := catalog.Lookup(id)
		if !ok {
			continue
		}
		stats.TopAnime = append(stats.TopAnime, AnimeCount{AnimeID: id, Name: a.Name, Ratings: perAnime[id]})
	}

	stats.Filtered = summarizeFilter(ratings, perUser, perAnime, minRatingsPerItem, maxRatingsPerUser)
	return stats
}

func summarizeFilter(ratings []recommend.Rating, perUser, perAnime map[int]int, minItem, maxUser int) FilterSummary {
	fs := FilterSummary{MinRatingsPerItem: minItem, MaxRatingsPerUser: maxUser}
	for _, n := range perAnime {
		if n >= minItem {
			fs.Anime++
		}
	}
	for _, n := range perUser {
		if n <= maxUser {
			fs.Users++
		}
	}
	for _, r := range ratings {
		if r.IsUnrated() {
			continue
		}
		if perAnime[r.AnimeID] >= minItem && perUser[r.UserID] <= maxUser {
			fs.Ratings++
		}
	}
	return fs
}

// rankCounts orders counts descending, ties by key. limit <= 0 keeps all.
func rankCounts(counts map[string]int, limit int) []Count {
	out := make([]Count, 0, len(counts))
	for k, n := range counts {
		out = append(out, Count{Key: k, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// topIDs returns up to limit IDs ordered by count descending, ties by ID.
func topIDs(counts map[int]int, limit int) []int {
	ids := make([]int, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if counts[ids[i]] != counts[ids[j]] {
			return counts[ids[i]] > counts[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids
}

// String renders a bucket as "score:count".
func (b RatingBucket) String() string {
	return strconv.Itoa(b.Rating) + ":" + strconv.Itoa(b.Count)
}
