package cart

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/metrics"
	"github.com/fjod/go_meals/internal/storage"
	"golang.org/x/sync/singleflight"
)

var (
	ErrUnknownProduct = errors.New("product not found in catalog")
	ErrMissingProfile = errors.New("profile id is required")
)

// ProductLookup resolves catalog entries by ID.
type ProductLookup interface {
	Get(id string) (domain.Product, bool)
}

const lockStripes = 64

// Service owns the carts of all profiles. Operations on one profile run one at a
// time, which gives each profile the single-threaded view of its cart that a
// browser tab has.
type Service struct {
	storage  storage.Storage
	products ProductLookup
	metrics  *metrics.Metrics
	log      *slog.Logger

	locks [lockStripes]sync.Mutex
	sfg   singleflight.Group // collapses concurrent reads of the same profile
}

func NewService(s storage.Storage, products ProductLookup, m *metrics.Metrics, log *slog.Logger) *Service {
	if log == nil {
		log = slog.Default()
	}
	return &Service{
		storage:  s,
		products: products,
		metrics:  m,
		log:      log,
	}
}

// Get returns the profile's current cart.
func (s *Service) Get(ctx context.Context, profileID string) (domain.Cart, error) {
	if profileID == "" {
		return domain.Cart{}, ErrMissingProfile
	}

	// the flight is shared; one caller going away must not fail the others
	flightCtx := context.WithoutCancel(ctx)
	v, err, _ := s.sfg.Do(profileID, func() (interface{}, error) {
		st, err := Load(flightCtx, s.profileStorage(profileID))
		if err != nil {
			return nil, err
		}
		return st.Cart(), nil
	})
	if err != nil {
		return domain.Cart{}, err
	}

	return v.(domain.Cart).Clone(), nil
}

// AddProduct adds one unit of a catalog product, taking name and price from the catalog.
func (s *Service) AddProduct(ctx context.Context, profileID, productID string) (domain.Cart, error) {
	p, ok := s.products.Get(productID)
	if !ok {
		return domain.Cart{}, ErrUnknownProduct
	}
	return s.Apply(ctx, profileID, Add(p.ID, p.Name, p.Price))
}

// Apply dispatches a single action and returns the resulting cart.
func (s *Service) Apply(ctx context.Context, profileID string, a Action) (domain.Cart, error) {
	var out domain.Cart
	err := s.Update(ctx, profileID, func(st *Store) error {
		if err := st.Dispatch(ctx, a); err != nil {
			return err
		}
		out = st.Cart()
		return nil
	})
	if err != nil {
		return domain.Cart{}, err
	}
	return out, nil
}

// Update loads the profile's store and runs fn while holding the profile lock,
// so fn can read and mutate the cart atomically with respect to other requests.
func (s *Service) Update(ctx context.Context, profileID string, fn func(*Store) error) error {
	if profileID == "" {
		return ErrMissingProfile
	}

	mu := &s.locks[xxhash.Sum64String(profileID)%lockStripes]
	mu.Lock()
	defer mu.Unlock()

	st, err := Load(ctx, s.profileStorage(profileID))
	if err != nil {
		return err
	}
	st.Subscribe(func(ctx context.Context, a Action, c domain.Cart) {
		s.changed(ctx, profileID, a, c)
	})
	return fn(st)
}

// changed observes every mutation made through the service, including the
// clear issued by checkout.
func (s *Service) changed(ctx context.Context, profileID string, a Action, c domain.Cart) {
	s.metrics.CartMutation(string(a.Kind))
	s.log.DebugContext(ctx, "cart updated",
		"profile_id", profileID,
		"action", string(a.Kind),
		"product_id", a.ID,
		"item_count", c.ItemCount())
}

// ProfileStorage exposes the namespaced storage of a profile to collaborators
// that keep their own keys next to the cart.
func (s *Service) ProfileStorage(profileID string) storage.Storage {
	return s.profileStorage(profileID)
}

func (s *Service) profileStorage(profileID string) storage.Storage {
	return storage.Namespace(s.storage, profileID)
}
