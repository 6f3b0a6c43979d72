package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/fjod/go_meals/internal/checkout"
)

type CheckoutHandler struct {
	checkout *checkout.Service
	timeout  time.Duration
	log      *slog.Logger
}

func NewCheckoutHandler(svc *checkout.Service, timeout time.Duration, log *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		timeout:  timeout,
		log:      log,
	}
}

type CheckoutResponseDTO struct {
	OrderID         string `json:"order_id"`
	State           string `json:"state"`
	Total           string `json:"total"`
	Notice          string `json:"notice"`
	RedirectURL     string `json:"redirect_url"`
	RedirectAfterMS int64  `json:"redirect_after_ms"`
}

// GET /api/v1/checkout
func (h *CheckoutHandler) Review(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	sum, err := h.checkout.Review(ctx, getProfileIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, sum)
}

// POST /api/v1/checkout
func (h *CheckoutHandler) Submit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var form checkout.Form
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	rec, err := h.checkout.Submit(ctx, getProfileIDFromContext(r.Context()), form)
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	setRefresh(w, rec.RedirectAfter, rec.RedirectURL)
	respondJSON(w, http.StatusCreated, CheckoutResponseDTO{
		OrderID:         rec.OrderID,
		State:           rec.State.String(),
		Total:           rec.Total,
		Notice:          rec.Notice,
		RedirectURL:     rec.RedirectURL,
		RedirectAfterMS: rec.RedirectAfter.Milliseconds(),
	})
}

// setRefresh lets a plain browser follow the handoff after the delay without
// any script on the page.
func setRefresh(w http.ResponseWriter, after time.Duration, url string) {
	secs := strconv.FormatFloat(after.Seconds(), 'f', -1, 64)
	w.Header().Set("Refresh", secs+"; url="+url)
}
