package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/shopspring/decimal"
)

// StorageKey is where the serialized line items live in durable storage.
const StorageKey = "cart"

// Listener is notified with the applied action and the resulting cart after
// every successful mutation.
type Listener func(ctx context.Context, a Action, c domain.Cart)

// Store is the cart of a single profile, mirrored into storage after every mutation.
// It is not safe for concurrent use; Service serializes access per profile.
type Store struct {
	storage   storage.Storage
	cart      domain.Cart
	listeners []Listener
}

// Load reads the persisted cart. A missing key yields an empty cart.
func Load(ctx context.Context, s storage.Storage) (*Store, error) {
	st := &Store{storage: s}

	raw, err := s.Get(ctx, StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return st, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	items, err := Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	st.cart = normalize(items)
	return st, nil
}

// Subscribe registers l to be called after each mutation.
func (s *Store) Subscribe(l Listener) {
	s.listeners = append(s.listeners, l)
}

// Dispatch reduces a into the current cart, persists and notifies listeners.
func (s *Store) Dispatch(ctx context.Context, a Action) error {
	next := Reduce(s.cart, a)

	if err := s.persist(ctx, next, a.Kind == ActionClear); err != nil {
		return err
	}

	s.cart = next
	for _, l := range s.listeners {
		l(ctx, a, next.Clone())
	}
	return nil
}

func (s *Store) AddItem(ctx context.Context, id, name string, price decimal.Decimal) error {
	return s.Dispatch(ctx, Add(id, name, price))
}

func (s *Store) IncrementItem(ctx context.Context, id string) error {
	return s.Dispatch(ctx, Increment(id))
}

func (s *Store) DecrementItem(ctx context.Context, id string) error {
	return s.Dispatch(ctx, Decrement(id))
}

func (s *Store) RemoveItem(ctx context.Context, id string) error {
	return s.Dispatch(ctx, Remove(id))
}

// Clear empties the cart and removes its storage key.
func (s *Store) Clear(ctx context.Context) error {
	return s.Dispatch(ctx, Clear())
}

// Cart returns a snapshot of the current cart.
func (s *Store) Cart() domain.Cart {
	return s.cart.Clone()
}

func (s *Store) Items() []domain.LineItem {
	return s.cart.Clone().Items
}

func (s *Store) Total() decimal.Decimal {
	return s.cart.Total()
}

func (s *Store) ItemCount() int {
	return s.cart.ItemCount()
}

func (s *Store) persist(ctx context.Context, c domain.Cart, clear bool) error {
	if clear {
		if err := s.storage.Delete(ctx, StorageKey); err != nil {
			return fmt.Errorf("clear cart: %w", err)
		}
		return nil
	}

	raw, err := Encode(c.Items)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, StorageKey, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}
	return nil
}

// Encode serializes line items as a JSON array, "[]" when empty.
func Encode(items []domain.LineItem) ([]byte, error) {
	if items == nil {
		items = []domain.LineItem{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("marshal cart failed: %w", err)
	}
	return raw, nil
}

func Decode(raw []byte) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return items, nil
}

// normalize restores the cart invariants on data read back from storage:
// positive quantities and one line per ID, first occurrence wins the position.
func normalize(items []domain.LineItem) domain.Cart {
	var c domain.Cart
	for _, item := range items {
		if item.ID == "" || item.Quantity < 1 {
			continue
		}
		if i := indexOf(c, item.ID); i >= 0 {
			c.Items[i].Quantity += item.Quantity
			continue
		}
		c.Items = append(c.Items, item)
	}
	return c
}
