package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/srgjo27/ticket_storefront/internal/core/domain"
	"github.com/srgjo27/ticket_storefront/internal/core/ports"
)

// CatalogHandler passes event, order and coupon reads through to the
// external API.
type CatalogHandler struct {
	catalog ports.CatalogAPI
	orders  ports.OrderAPI
	logger  *slog.Logger
}

func NewCatalogHandler(catalog ports.CatalogAPI, orders ports.OrderAPI, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, orders: orders, logger: logger}
}

type ValidateCouponRequest struct {
	Code       string  `json:"code"`
	EventID    int64   `json:"event_id"`
	OrderValue float64 `json:"order_value"`
}

func (h *CatalogHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := domain.EventFilter{
		Search:    q.Get("search"),
		Category:  q.Get("category"),
		City:      q.Get("city"),
		Sort:      q.Get("sort"),
		Direction: strings.ToLower(q.Get("direction")),
	}

	if filter.Direction != "" && filter.Direction != "asc" && filter.Direction != "desc" {
		respondError(w, http.StatusBadRequest, "invalid_direction", "direction must be asc or desc")
		return
	}

	var ok bool
	if filter.Page, ok = positiveQueryInt(w, q.Get("page"), "page"); !ok {
		return
	}
	if filter.PerPage, ok = positiveQueryInt(w, q.Get("per_page"), "per_page"); !ok {
		return
	}

	page, err := h.catalog.ListEvents(r.Context(), filter)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, page)
}

func (h *CatalogHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	event, err := h.catalog.GetEvent(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dataResponse{Data: event})
}

func (h *CatalogHandler) GetOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.orders.GetOrder(r.Context(), chi.URLParam(r, "hash"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, dataResponse{Data: order})
}

func (h *CatalogHandler) ValidateCoupon(w http.ResponseWriter, r *http.Request) {
	var req ValidateCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.Code = strings.TrimSpace(req.Code)
	if req.Code == "" || req.EventID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_request", "code and event_id are required")
		return
	}

	res, err := h.orders.ValidateCoupon(r.Context(), req.Code, req.EventID, req.OrderValue)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, res)
}

func positiveQueryInt(w http.ResponseWriter, raw, name string) (int, bool) {
	if raw == "" {
		return 0, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		respondError(w, http.StatusBadRequest, "invalid_"+name, name+" must be a positive integer")
		return 0, false
	}
	return n, true
}
