package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fjod/go_meals/internal/cart"
	"github.com/fjod/go_meals/internal/view"
	"github.com/go-chi/chi/v5"
)

type CartHandler struct {
	carts   *cart.Service
	view    *view.Renderer
	timeout time.Duration
	log     *slog.Logger
}

func NewCartHandler(carts *cart.Service, renderer *view.Renderer, timeout time.Duration, log *slog.Logger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		view:    renderer,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	ProductID string `json:"product_id"`
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Get(ctx, getProfileIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view.Render(c))
}

// GET /api/v1/cart/fragment
func (h *CartHandler) GetFragment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Get(ctx, getProfileIDFromContext(r.Context()))
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	body, err := h.view.HTML(c)
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	req.ProductID = strings.TrimSpace(req.ProductID)
	if req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	c, err := h.carts.AddProduct(ctx, getProfileIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusCreated, h.view.Render(c))
}

// POST /api/v1/cart/items/{product_id}/increment
func (h *CartHandler) IncrementItem(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, cart.Increment)
}

// POST /api/v1/cart/items/{product_id}/decrement
func (h *CartHandler) DecrementItem(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, cart.Decrement)
}

// DELETE /api/v1/cart/items/{product_id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	h.apply(w, r, cart.Remove)
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	c, err := h.carts.Apply(ctx, getProfileIDFromContext(r.Context()), cart.Clear())
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view.Render(c))
}

// apply runs a per-line action. Unknown IDs are a no-op, matching the cart
// controls which only exist for lines already in the cart.
func (h *CartHandler) apply(w http.ResponseWriter, r *http.Request, action func(id string) cart.Action) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	productID := chi.URLParam(r, "product_id")
	if productID == "" {
		respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id is required")
		return
	}

	c, err := h.carts.Apply(ctx, getProfileIDFromContext(r.Context()), action(productID))
	if err != nil {
		handleServiceError(ctx, w, h.log, err)
		return
	}

	respondJSON(w, http.StatusOK, h.view.Render(c))
}
