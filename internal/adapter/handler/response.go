package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/srgjo27/ticket_storefront/internal/core/domain"
)

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
	Field string `json:"field,omitempty"`
}

type dataResponse struct {
	Data any `json:"data"`
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// writeError maps domain and upstream errors to HTTP responses.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var (
		validation *domain.ValidationError
		failed     *domain.CheckoutFailedError
		apiErr     *domain.APIError
	)

	switch {
	case errors.As(err, &validation):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error: validation.Message,
			Code:  "validation_failed",
			Field: validation.Field,
		})
	case errors.Is(err, domain.ErrCrossEventConflict):
		respondError(w, http.StatusConflict, "cross_event_conflict", err.Error())
	case errors.Is(err, domain.ErrSubmissionInFlight):
		respondError(w, http.StatusConflict, "submission_in_flight", err.Error())
	case errors.Is(err, domain.ErrInvalidQuantity):
		respondError(w, http.StatusBadRequest, "invalid_quantity", err.Error())
	case errors.Is(err, domain.ErrUnknownAttendeeField):
		respondError(w, http.StatusBadRequest, "unknown_field", err.Error())
	case errors.Is(err, domain.ErrTierNotFound):
		respondError(w, http.StatusNotFound, "tier_not_found", err.Error())
	case errors.As(err, &failed):
		respondError(w, http.StatusBadGateway, "checkout_failed", failed.Message)
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
	case errors.As(err, &apiErr):
		switch apiErr.StatusCode {
		case http.StatusNotFound:
			respondError(w, http.StatusNotFound, "not_found", upstreamMessage(apiErr, "not found"))
		case http.StatusUnauthorized:
			respondError(w, http.StatusUnauthorized, "unauthenticated", upstreamMessage(apiErr, "unauthenticated"))
		case http.StatusForbidden:
			respondError(w, http.StatusForbidden, "permission_denied", upstreamMessage(apiErr, "permission denied"))
		default:
			logger.Warn("upstream api error", "status", apiErr.StatusCode, "error", err)
			respondError(w, http.StatusBadGateway, "upstream_error", upstreamMessage(apiErr, "upstream service error"))
		}
	default:
		logger.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func upstreamMessage(apiErr *domain.APIError, fallback string) string {
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
