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
)

// ReloadResponse is the data of POST /api/v1/admin/reload.
type ReloadResponse struct {
	Accepted bool                  `json:"accepted"`
	Status   *recommend.LoadStatus `json:"status,omitempty"`
}

// Reload handles POST /api/v1/admin/reload?wait=. Without wait the rebuild
// runs in the background and the handler answers 202. With wait=true the
// handler answers once the snapshot is published.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	if h.engine.GetStatus().IsLoading {
		h.respondEngineError(w, r, recommend.ErrLoadInProgress)
		return
	}

	if r.URL.Query().Get("wait") == "true" {
		start := time.Now()
		if err := h.engine.Load(r.Context(), h.source); err != nil {
			if errors.Is(err, recommend.ErrLoadInProgress) {
				h.respondEngineError(w, r, err)
				return
			}
			respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Snapshot reload failed", err)
			return
		}
		status := h.engine.GetStatus()
		respondSuccess(w, r, ReloadResponse{Accepted: true, Status: &status}, Metadata{
			QueryTimeMS: time.Since(start).Milliseconds(),
		})
		return
	}

	if !h.startReload(logging.RequestIDFromContext(r.Context())) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Server is shutting down", nil)
		return
	}

	respondJSON(w, r, http.StatusAccepted, &APIResponse{
		Status: "success",
		Data:   ReloadResponse{Accepted: true},
	})
}
