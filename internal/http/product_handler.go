package http

import (
	"net/http"

	"github.com/fjod/go_meals/internal/catalog"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/money"
)

type ProductHandler struct {
	catalog *catalog.Catalog
	money   money.Formatter
}

func NewProductHandler(c *catalog.Catalog, f money.Formatter) *ProductHandler {
	return &ProductHandler{
		catalog: c,
		money:   f,
	}
}

type ProductResponse struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description,omitempty"`
	Price        string `json:"price"`
	DisplayPrice string `json:"display_price"`
	Category     string `json:"category"`
	ImageURL     string `json:"image_url,omitempty"`
}

type ProductsResponse struct {
	Products []ProductResponse `json:"products"`
}

// GET /api/v1/products?q=&category=
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	found := h.catalog.Filter(query.Get("q"), domain.ParseCategory(query.Get("category")))

	products := make([]ProductResponse, len(found))
	for i, p := range found {
		products[i] = ProductResponse{
			ID:           p.ID,
			Name:         p.Name,
			Description:  p.Description,
			Price:        p.Price.String(),
			DisplayPrice: h.money.Format(p.Price),
			Category:     string(p.Category),
			ImageURL:     p.ImageURL,
		}
	}

	respondJSON(w, http.StatusOK, &ProductsResponse{Products: products})
}
