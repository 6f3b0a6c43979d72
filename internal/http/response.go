package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/fjod/go_meals/internal/cart"
	"github.com/fjod/go_meals/internal/checkout"
	"github.com/fjod/go_meals/internal/contact"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/sony/gobreaker/v2"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError converts service errors to HTTP status codes. Validation
// failures carry the message shown to the visitor.
func handleServiceError(ctx context.Context, w http.ResponseWriter, log *slog.Logger, err error) {
	var verr *checkout.ValidationError

	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusUnprocessableEntity, ErrorResponse{
			Error:   verr.Message,
			Code:    "validation_failed",
			Details: verr.Err.Error(),
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", checkout.EmptyCartMessage)
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, contact.ErrMissingFields):
		respondError(w, http.StatusUnprocessableEntity, "validation_failed", contact.MissingFieldsMessage)
	case errors.Is(err, cart.ErrUnknownProduct):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, cart.ErrMissingProfile):
		respondError(w, http.StatusBadRequest, "missing_profile", err.Error())
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		respondError(w, http.StatusServiceUnavailable, "service_unavailable", "storage is unavailable, try again shortly")
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusGatewayTimeout, "timeout", "request timed out")
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "not_found", err.Error())
	default:
		log.ErrorContext(ctx, "request failed", "error", err, "request_id", getRequestID(ctx))
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
