package catalog

import (
	"context"
	"strings"

	"github.com/fjod/go_meals/internal/domain"
)

// Catalog is the static product collection the storefront shows. It is built
// once at startup and read-only afterwards.
type Catalog struct {
	products []domain.Product
	byID     map[string]int
}

// New indexes products by ID; on duplicate IDs the first product wins.
func New(products []domain.Product) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, dup := c.byID[p.ID]; dup {
			continue
		}
		c.byID[p.ID] = len(c.products)
		c.products = append(c.products, p)
	}
	return c
}

// FromRepository snapshots every product in the repository.
func FromRepository(ctx context.Context, repo *Repository) (*Catalog, error) {
	products, err := repo.GetAllProducts(ctx)
	if err != nil {
		return nil, err
	}
	return New(products), nil
}

func (c *Catalog) All() []domain.Product {
	out := make([]domain.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Get(id string) (domain.Product, bool) {
	i, ok := c.byID[id]
	if !ok {
		return domain.Product{}, false
	}
	return c.products[i], true
}

func (c *Catalog) Len() int {
	return len(c.products)
}

func (c *Catalog) Filter(query string, category domain.Category) []domain.Product {
	return Filter(c.products, query, category)
}

// Filter keeps the products whose name contains query, ignoring case, and whose
// category equals category. CategoryAll skips the category test. Order is preserved.
func Filter(products []domain.Product, query string, category domain.Category) []domain.Product {
	q := strings.ToLower(query)

	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		if category != domain.CategoryAll && p.Category != category {
			continue
		}
		out = append(out, p)
	}
	return out
}
