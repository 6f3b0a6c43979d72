package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

type Category string

const (
	CategoryCakes    Category = "cakes"
	CategoryPastries Category = "pastries"
	CategoryDrinks   Category = "drinks"
	CategoryFood     Category = "food"
	CategoryExtras   Category = "extras"

	// CategoryAll is a selector value, never a product's category.
	CategoryAll Category = "all"
)

var Categories = []Category{
	CategoryCakes,
	CategoryPastries,
	CategoryDrinks,
	CategoryFood,
	CategoryExtras,
}

func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory normalizes a selector value. An empty value selects all.
func ParseCategory(s string) Category {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return CategoryAll
	}
	return Category(s)
}

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Category    Category        `json:"category"`
	ImageURL    string          `json:"image_url,omitempty"`
}
