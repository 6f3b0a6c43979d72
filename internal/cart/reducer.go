package cart

import (
	"github.com/fjod/go_meals/internal/domain"
	"github.com/shopspring/decimal"
)

type ActionKind string

const (
	ActionAdd       ActionKind = "add"
	ActionIncrement ActionKind = "increment"
	ActionDecrement ActionKind = "decrement"
	ActionRemove    ActionKind = "remove"
	ActionClear     ActionKind = "clear"
)

// Action is one user intent against the cart. Name and Price are only read by ActionAdd.
type Action struct {
	Kind  ActionKind
	ID    string
	Name  string
	Price decimal.Decimal
}

func Add(id, name string, price decimal.Decimal) Action {
	return Action{Kind: ActionAdd, ID: id, Name: name, Price: price}
}

func Increment(id string) Action { return Action{Kind: ActionIncrement, ID: id} }
func Decrement(id string) Action { return Action{Kind: ActionDecrement, ID: id} }
func Remove(id string) Action    { return Action{Kind: ActionRemove, ID: id} }
func Clear() Action              { return Action{Kind: ActionClear} }

// Reduce applies a to c and returns the resulting cart. c is never modified.
// Actions naming an ID that is not in the cart leave it unchanged.
func Reduce(c domain.Cart, a Action) domain.Cart {
	next := c.Clone()

	switch a.Kind {
	case ActionAdd:
		if i := indexOf(next, a.ID); i >= 0 {
			next.Items[i].Quantity++
			return next
		}
		next.Items = append(next.Items, domain.LineItem{
			ID:        a.ID,
			Name:      a.Name,
			UnitPrice: a.Price,
			Quantity:  1,
		})

	case ActionIncrement:
		if i := indexOf(next, a.ID); i >= 0 {
			next.Items[i].Quantity++
		}

	case ActionDecrement:
		i := indexOf(next, a.ID)
		if i < 0 {
			return next
		}
		if next.Items[i].Quantity > 1 {
			next.Items[i].Quantity--
			return next
		}
		next.Items = removeAt(next.Items, i)

	case ActionRemove:
		if i := indexOf(next, a.ID); i >= 0 {
			next.Items = removeAt(next.Items, i)
		}

	case ActionClear:
		return domain.Cart{}
	}

	return next
}

func indexOf(c domain.Cart, id string) int {
	for i, item := range c.Items {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(items []domain.LineItem, i int) []domain.LineItem {
	return append(items[:i], items[i+1:]...)
}
