package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/srgjo27/ticket_storefront/internal/core/services"
)

const maxFavoriteChecks = 100

type FavoritesHandler struct {
	svc    *services.FavoritesService
	logger *slog.Logger
}

func NewFavoritesHandler(svc *services.FavoritesService, logger *slog.Logger) *FavoritesHandler {
	return &FavoritesHandler{svc: svc, logger: logger}
}

type ToggleFavoriteRequest struct {
	Favorited bool `json:"favorited"`
}

func (h *FavoritesHandler) Check(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}

	raw := r.URL.Query().Get("event_ids")
	if raw == "" {
		respondJSON(w, http.StatusOK, dataResponse{Data: []services.FavoriteStatus{}})
		return
	}

	parts := strings.Split(raw, ",")
	if len(parts) > maxFavoriteChecks {
		respondError(w, http.StatusBadRequest, "too_many_ids", "at most 100 event ids per request")
		return
	}

	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			respondError(w, http.StatusBadRequest, "invalid_event_ids", "event_ids must be a comma separated list of positive integers")
			return
		}
		ids = append(ids, id)
	}

	statuses, err := h.svc.Check(r.Context(), token, ids)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dataResponse{Data: statuses})
}

// Toggle expects the favorite state the client currently shows; an empty
// body means "not favorited".
func (h *FavoritesHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
		return
	}

	eventID, err := strconv.ParseInt(chi.URLParam(r, "eventID"), 10, 64)
	if err != nil || eventID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_event_id", "event id must be a positive integer")
		return
	}

	var req ToggleFavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	status, err := h.svc.Toggle(r.Context(), token, eventID, req.Favorited)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, status)
}
