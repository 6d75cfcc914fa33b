// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/animerec/internal/logging"
	"github.com/tomtom215/animerec/internal/recommend"
	"github.com/tomtom215/animerec/internal/validation"
)

// SimilarUsersResponse is the data of GET /api/v1/users/{userID}/similar.
type SimilarUsersResponse struct {
	UserID    int                        `json:"user_id"`
	K         int                        `json:"k"`
	Status    recommend.Status           `json:"status"`
	Message   string                     `json:"message,omitempty"`
	Neighbors []recommend.UserSimilarity `json:"neighbors"`
}

// SimilarUsers handles GET /api/v1/users/{userID}/similar?k=
func (h *Handler) SimilarUsers(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	userID, ok := parseIDParam(w, r, "userID", "user_id")
	if !ok {
		return
	}
	k, ok := parseIntQuery(w, r, "k")
	if !ok {
		return
	}

	req := validation.SimilarUsersRequest{UserID: userID, K: k}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}
	if req.K == 0 {
		req.K = h.engine.GetConfig().Limits.DefaultK
	}

	neighbors, err := h.engine.SimilarUsers(r.Context(), req.UserID, req.K)
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	data := SimilarUsersResponse{
		UserID:    req.UserID,
		K:         req.K,
		Status:    neighbors.Status,
		Message:   neighbors.Status.Message(req.UserID),
		Neighbors: neighbors.Similarities,
	}
	if data.Neighbors == nil {
		data.Neighbors = []recommend.UserSimilarity{}
	}

	respondSuccess(w, r, data, Metadata{QueryTimeMS: time.Since(start).Milliseconds()})
}

// Recommendations handles GET /api/v1/users/{userID}/recommendations?k=&n=&type=
func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID", "user_id")
	if !ok {
		return
	}
	k, ok := parseIntQuery(w, r, "k")
	if !ok {
		return
	}
	n, ok := parseIntQuery(w, r, "n")
	if !ok {
		return
	}

	req := validation.RecommendationsRequest{
		UserID: userID,
		K:      k,
		N:      n,
		Type:   r.URL.Query().Get("type"),
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	resp, err := h.engine.Recommend(r.Context(), recommend.Request{
		UserID:    req.UserID,
		K:         req.K,
		TopN:      req.N,
		Category:  req.Type,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
	if err != nil {
		h.respondEngineError(w, r, err)
		return
	}

	respondSuccess(w, r, resp, Metadata{
		QueryTimeMS: resp.Metadata.LatencyMS,
		Cached:      resp.Metadata.CacheHit,
	})
}

// Anime handles GET /api/v1/anime/{animeID}
func (h *Handler) Anime(w http.ResponseWriter, r *http.Request) {
	animeID, ok := parseIDParam(w, r, "animeID", "anime_id")
	if !ok {
		return
	}

	req := validation.AnimeRequest{AnimeID: animeID}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondValidationError(w, r, verr)
		return
	}

	if h.engine.Snapshot() == nil {
		h.respondEngineError(w, r, recommend.ErrNotLoaded)
		return
	}

	anime, found := h.engine.Anime(req.AnimeID)
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Anime not found", nil)
		return
	}

	respondSuccess(w, r, anime, Metadata{})
}

// respondEngineError maps engine errors to HTTP responses.
func (h *Handler) respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, recommend.ErrInvalidK),
		errors.Is(err, recommend.ErrInvalidTopN),
		errors.Is(err, recommend.ErrCategoryWithoutCatalog):
		respondError(w, r, http.StatusBadRequest, ErrCodeValidation, err.Error(), nil)
	case errors.Is(err, recommend.ErrNotLoaded):
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Recommendation data is still loading", err)
	case errors.Is(err, recommend.ErrLoadInProgress):
		respondError(w, r, http.StatusConflict, ErrCodeConflict, "A snapshot load is already running", nil)
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to process request", err)
	}
}
