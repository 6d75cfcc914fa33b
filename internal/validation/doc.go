// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps a thread-safe singleton validator and translates its
// errors into the API's VALIDATION_ERROR envelope.
//
// # Request Types
//
// The HTTP handlers parse path and query parameters into one of:
//
//   - SimilarUsersRequest: user_id, k
//   - RecommendationsRequest: user_id, k, n, type
//   - AnimeRequest: anime_id
//
// Field names in errors are taken from the json tag, so a bad ?k=-1 is
// reported as "k must be greater than or equal to 0".
//
// # Custom Tags
//
//   - animetype: letters, digits, spaces and hyphens (TV, Movie, Music, ONA)
//
// # Usage
//
//	req := validation.RecommendationsRequest{UserID: id, K: k, N: n, Type: t}
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// # Error Format
//
//	// Single field error
//	{
//	    "code": "VALIDATION_ERROR",
//	    "message": "k must be greater than or equal to 0",
//	    "details": {"field": "k", "tag": "gte", "value": -1}
//	}
//
// Multiple failures are joined with "; " and listed under details.fields.
//
// # Thread Safety
//
// GetValidator and ValidateStruct are safe for concurrent use. The
// validator caches struct reflection information per type.
package validation
