package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fjod/go_meals/internal/cart"
	"github.com/fjod/go_meals/internal/config"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/handoff"
	"github.com/fjod/go_meals/internal/metrics"
	"github.com/fjod/go_meals/internal/money"
	"github.com/fjod/go_meals/internal/orderlog"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/google/uuid"
)

// SubmittedNotice is shown while the handoff delay runs.
const SubmittedNotice = "Order submitted successfully! Redirecting to WhatsApp..."

type SummaryLine struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Quantity int    `json:"quantity"`
	Amount   string `json:"amount"`
}

// Summary is the review page: items and totals, or the empty-cart notice.
type Summary struct {
	State    domain.CheckoutState `json:"state"`
	Lines    []SummaryLine        `json:"lines"`
	Subtotal string               `json:"subtotal,omitempty"`
	Total    string               `json:"total,omitempty"`
	Message  string               `json:"message,omitempty"`
	CanPay   bool                 `json:"can_pay"`
}

type Receipt struct {
	OrderID       string               `json:"order_id"`
	State         domain.CheckoutState `json:"state"`
	Total         string               `json:"total"`
	Notice        string               `json:"notice"`
	Message       string               `json:"message"`
	RedirectURL   string               `json:"redirect_url"`
	RedirectAfter time.Duration        `json:"-"`
}

type Options struct {
	Shop          config.Shop
	RedirectDelay time.Duration
	Now           func() time.Time
	NewID         func() string
}

// mirrorer is implemented by order sinks that copy committed records to
// best-effort destinations, such as orderlog.FanOut.
type mirrorer interface {
	Mirror(ctx context.Context, s storage.Storage, rec domain.OrderRecord)
}

type Service struct {
	carts    *cart.Service
	orders   orderlog.Sink
	handoffs *handoff.Dispatcher
	money    money.Formatter
	opts     Options
	metrics  *metrics.Metrics
	log      *slog.Logger

	mirrors sync.WaitGroup
}

func NewService(carts *cart.Service, orders orderlog.Sink, handoffs *handoff.Dispatcher,
	m *metrics.Metrics, log *slog.Logger, opts Options) *Service {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.New().String() }
	}
	if log == nil {
		log = slog.Default()
	}

	return &Service{
		carts:    carts,
		orders:   orders,
		handoffs: handoffs,
		money:    money.NewFormatter(opts.Shop.CurrencySymbol),
		opts:     opts,
		metrics:  m,
		log:      log,
	}
}

// Review returns the checkout summary for the profile's current cart.
func (s *Service) Review(ctx context.Context, profileID string) (Summary, error) {
	c, err := s.carts.Get(ctx, profileID)
	if err != nil {
		return Summary{}, err
	}

	state := domain.CheckoutStateOf(c)
	sum := Summary{State: state, Lines: []SummaryLine{}}
	if state == domain.CheckoutStateEmpty {
		sum.Message = EmptyCartMessage
		return sum, nil
	}

	for _, item := range c.Items {
		sum.Lines = append(sum.Lines, SummaryLine{
			ID:       item.ID,
			Label:    fmt.Sprintf("%s x%d", item.Name, item.Quantity),
			Quantity: item.Quantity,
			Amount:   s.money.Format(item.Subtotal()),
		})
	}
	sum.Subtotal = s.money.Format(c.Total())
	sum.Total = sum.Subtotal
	sum.CanPay = true
	return sum, nil
}

// Submit moves a reviewing checkout to Submitted: the order record is appended,
// the cart cleared and the messaging handoff scheduled. Any failure before the
// record is written leaves the cart untouched. Mirror copies of the record run
// only after the cart is cleared and never fail the submission.
func (s *Service) Submit(ctx context.Context, profileID string, form Form) (Receipt, error) {
	form = form.Normalize()

	var rec domain.OrderRecord
	err := s.carts.Update(ctx, profileID, func(st *cart.Store) error {
		c := st.Cart()

		from := domain.CheckoutStateOf(c)
		if from == domain.CheckoutStateEmpty {
			return ErrEmptyCart
		}
		if !domain.CanTransition(from, domain.CheckoutStateSubmitted) {
			return ErrIllegalTransition
		}
		if err := form.Validate(); err != nil {
			return err
		}

		rec = s.newRecord(form, c)
		if err := s.orders.Append(ctx, s.carts.ProfileStorage(profileID), rec); err != nil {
			return fmt.Errorf("append order record: %w", err)
		}
		// the record is written; the cart must follow even if the caller gives up
		return st.Clear(context.WithoutCancel(ctx))
	})
	if err != nil {
		s.metrics.Checkout(outcome(err))
		return Receipt{}, err
	}

	if m, ok := s.orders.(mirrorer); ok {
		st := s.carts.ProfileStorage(profileID)
		s.mirrors.Add(1)
		go func() {
			defer s.mirrors.Done()
			m.Mirror(ctx, st, rec)
		}()
	}

	msg := OrderMessage(s.opts.Shop, form, rec, s.money)
	link := handoff.Link(s.opts.Shop.WhatsAppNumber, msg)
	s.handoffs.Schedule(s.opts.RedirectDelay, link)

	s.metrics.Checkout("submitted")
	s.log.InfoContext(ctx, "checkout submitted",
		"profile_id", profileID,
		"order_id", rec.ID,
		"items", len(rec.Items),
		"total", rec.Total.String(),
		"delivery_option", string(rec.DeliveryOption))

	return Receipt{
		OrderID:       rec.ID,
		State:         domain.CheckoutStateSubmitted,
		Total:         s.money.Format(rec.Total),
		Notice:        SubmittedNotice,
		Message:       msg,
		RedirectURL:   link,
		RedirectAfter: s.opts.RedirectDelay,
	}, nil
}

// Wait blocks until every in-flight mirror write has finished.
func (s *Service) Wait() {
	s.mirrors.Wait()
}

func (s *Service) newRecord(form Form, c domain.Cart) domain.OrderRecord {
	rec := domain.OrderRecord{
		ID:             s.opts.NewID(),
		Name:           form.Name,
		Email:          form.Email,
		Phone:          form.Phone,
		OrderDate:      s.opts.Now().UTC(),
		Items:          c.Clone().Items,
		Total:          c.Total(),
		DeliveryOption: form.DeliveryOption,
	}
	if form.DeliveryAddress != "" {
		addr := form.DeliveryAddress
		rec.DeliveryAddress = &addr
	}
	return rec
}

func outcome(err error) string {
	var verr *ValidationError
	switch {
	case errors.Is(err, ErrEmptyCart):
		return "blocked"
	case errors.As(err, &verr):
		return "invalid"
	default:
		return "error"
	}
}
