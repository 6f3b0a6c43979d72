package view

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/money"
)

const EmptyCartMessage = "Your cart is empty"

type Line struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// CartView is everything the cart widget and badge display. It holds no state of
// its own and is rebuilt from the cart on every change.
type CartView struct {
	Lines        []Line `json:"lines"`
	Empty        bool   `json:"empty"`
	EmptyMessage string `json:"empty_message,omitempty"`
	Total        string `json:"total"`
	Count        int    `json:"count"`
	ShowBadge    bool   `json:"show_badge"`
}

type Renderer struct {
	money money.Formatter
	tmpl  *template.Template
}

func NewRenderer(f money.Formatter) *Renderer {
	return &Renderer{
		money: f,
		tmpl:  template.Must(template.New("cart").Parse(cartTemplate)),
	}
}

func (r *Renderer) Render(c domain.Cart) CartView {
	v := CartView{
		Lines: make([]Line, 0, len(c.Items)),
		Total: r.money.Format(c.Total()),
		Count: c.ItemCount(),
	}
	v.ShowBadge = v.Count > 0

	if c.IsEmpty() {
		v.Empty = true
		v.EmptyMessage = EmptyCartMessage
		return v
	}

	for _, item := range c.Items {
		v.Lines = append(v.Lines, Line{
			ID:        item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: r.money.Format(item.UnitPrice),
			Subtotal:  r.money.Format(item.Subtotal()),
		})
	}
	return v
}

// HTML renders the cart list widget.
func (r *Renderer) HTML(c domain.Cart) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, r.Render(c)); err != nil {
		return nil, fmt.Errorf("render cart: %w", err)
	}
	return buf.Bytes(), nil
}

const cartTemplate = `<ul id="cart-items">
{{- if .Empty}}
  <li class="empty-cart-message">{{.EmptyMessage}}</li>
{{- else}}
{{- range .Lines}}
  <li class="cart-item" data-id="{{.ID}}">
    <div class="cart-item-info"><span>{{.Name}}</span><span>{{.Subtotal}}</span></div>
    <div class="cart-item-controls">
      <button class="quantity-btn minus">-</button>
      <span class="quantity">{{.Quantity}}</span>
      <button class="quantity-btn plus">+</button>
      <button class="remove-btn">Remove</button>
    </div>
  </li>
{{- end}}
{{- end}}
</ul>
<div class="cart-total"><span id="cart-total-price">{{.Total}}</span></div>
{{- if .ShowBadge}}
<span id="cart-count">{{.Count}}</span>
{{- end}}
`
