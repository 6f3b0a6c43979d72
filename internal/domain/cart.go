package domain

import "github.com/shopspring/decimal"

type LineItem struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
}

// Subtotal is unit price times quantity.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Cart keeps line items in insertion order, at most one per ID.
type Cart struct {
	Items []LineItem `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

func (c Cart) Find(id string) (LineItem, bool) {
	for _, item := range c.Items {
		if item.ID == id {
			return item, true
		}
	}
	return LineItem{}, false
}

func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemCount is the sum of quantities, not the number of lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, item := range c.Items {
		n += item.Quantity
	}
	return n
}

// Clone returns a copy that shares no backing array with c.
func (c Cart) Clone() Cart {
	if c.Items == nil {
		return Cart{}
	}
	items := make([]LineItem, len(c.Items))
	copy(items, c.Items)
	return Cart{Items: items}
}
