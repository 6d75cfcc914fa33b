// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package validation

// Request structs for the HTTP API. Zero K or N selects the engine default;
// upper bounds come from configuration and are enforced by the engine.

// SimilarUsersRequest is GET /api/v1/users/{userID}/similar.
type SimilarUsersRequest struct {
	UserID int `json:"user_id" validate:"gte=0"`
	K      int `json:"k" validate:"gte=0"`
}

// RecommendationsRequest is GET /api/v1/users/{userID}/recommendations.
type RecommendationsRequest struct {
	UserID int    `json:"user_id" validate:"gte=0"`
	K      int    `json:"k" validate:"gte=0"`
	N      int    `json:"n" validate:"gte=0"`
	Type   string `json:"type" validate:"omitempty,max=32,animetype"`
}

// AnimeRequest is GET /api/v1/anime/{animeID}.
type AnimeRequest struct {
	AnimeID int `json:"anime_id" validate:"gte=0"`
}
