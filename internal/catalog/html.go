package catalog

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/shopspring/decimal"
)

// CardError describes a product card that could not be read.
type CardError struct {
	Index  int
	ID     string
	Reason string
}

func (e CardError) Error() string {
	return fmt.Sprintf("product card %d (%q): %s", e.Index, e.ID, e.Reason)
}

// LoadHTML reads the product collection from a pre-rendered storefront page.
// Each `.product-card` must carry data-id and data-price attributes, an h3 name
// and one category CSS class. The displayed price text is never parsed.
// Unreadable cards are skipped and reported.
func LoadHTML(r io.Reader) ([]domain.Product, []CardError, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse catalog page: %w", err)
	}

	var (
		products []domain.Product
		problems []CardError
	)

	doc.Find(".product-card").Each(func(i int, s *goquery.Selection) {
		p, reason := readCard(s)
		if reason != "" {
			problems = append(problems, CardError{Index: i, ID: p.ID, Reason: reason})
			return
		}
		products = append(products, p)
	})

	return products, problems, nil
}

func readCard(s *goquery.Selection) (domain.Product, string) {
	p := domain.Product{
		ID:          strings.TrimSpace(s.AttrOr("data-id", "")),
		Name:        strings.TrimSpace(s.Find("h3").First().Text()),
		Description: strings.TrimSpace(s.Find(".description").First().Text()),
	}

	if p.ID == "" {
		return p, "missing data-id"
	}
	if p.Name == "" {
		return p, "missing name"
	}

	rawPrice, ok := s.Attr("data-price")
	if !ok {
		return p, "missing data-price"
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rawPrice))
	if err != nil || price.IsNegative() {
		return p, fmt.Sprintf("invalid data-price %q", rawPrice)
	}
	p.Price = price

	for _, cls := range strings.Fields(s.AttrOr("class", "")) {
		if c := domain.Category(cls); c.IsValid() {
			p.Category = c
			break
		}
	}
	if p.Category == "" {
		return p, "missing category class"
	}

	if img := s.Find("img").First(); img.Length() > 0 {
		p.ImageURL = img.AttrOr("data-src", img.AttrOr("src", ""))
	}

	return p, ""
}
