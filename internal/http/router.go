package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Cart     *CartHandler
	Products *ProductHandler
	Checkout *CheckoutHandler
	Contact  *ContactHandler
	Metrics  http.Handler
}

func NewRouter(h Handlers, requestTimeout time.Duration) chi.Router {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if h.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/products", h.Products.Get)
		r.Post("/contact", h.Contact.Submit)

		r.Group(func(r chi.Router) {
			r.Use(ProfileMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.GetCart)
				r.Delete("/", h.Cart.ClearCart)
				r.Get("/fragment", h.Cart.GetFragment)
				r.Post("/items", h.Cart.AddItem)
				r.Post("/items/{product_id}/increment", h.Cart.IncrementItem)
				r.Post("/items/{product_id}/decrement", h.Cart.DecrementItem)
				r.Delete("/items/{product_id}", h.Cart.RemoveItem)
			})

			r.Get("/checkout", h.Checkout.Review)
			r.Post("/checkout", h.Checkout.Submit)
		})
	})

	return r
}
