package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/fjod/go_meals/internal/cart"
	"github.com/fjod/go_meals/internal/config"
	"github.com/fjod/go_meals/internal/domain"
	"github.com/fjod/go_meals/internal/handoff"
	"github.com/fjod/go_meals/internal/money"
	"github.com/fjod/go_meals/internal/orderlog"
	"github.com/fjod/go_meals/internal/storage"
	"github.com/fjod/go_meals/pkg/logger"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCatalog map[string]domain.Product

func (m mockCatalog) Get(id string) (domain.Product, bool) {
	p, ok := m[id]
	return p, ok
}

type scheduled struct {
	delay time.Duration
	f     func()
}

type fakeScheduler struct {
	calls []scheduled
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) {
	s.calls = append(s.calls, scheduled{d, f})
}

type recordingOpener struct {
	urls []string
}

func (o *recordingOpener) Open(_ context.Context, u string) error {
	o.urls = append(o.urls, u)
	return nil
}

type failingSink struct{}

func (failingSink) Append(context.Context, storage.Storage, domain.OrderRecord) error {
	return errors.New("disk full")
}

type fixture struct {
	svc    *Service
	carts  *cart.Service
	kv     *storage.MemoryStore
	sched  *fakeScheduler
	opener *recordingOpener
}

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func testShop() config.Shop {
	return config.Shop{
		Name:           "Delikrafts Meals",
		WhatsAppNumber: "2348000000000",
		CurrencySymbol: "N",
	}
}

func newFixture(t *testing.T, sink orderlog.Sink) *fixture {
	t.Helper()
	kv := storage.NewMemoryStore()
	f := newFixtureOn(t, kv, sink)
	f.kv = kv
	return f
}

func newFixtureOn(t *testing.T, kv storage.Storage, sink orderlog.Sink) *fixture {
	t.Helper()

	products := mockCatalog{
		"cake-1":  {ID: "cake-1", Name: "Chocolate Cake", Price: decimal.NewFromInt(15000), Category: domain.CategoryCakes},
		"drink-1": {ID: "drink-1", Name: "Zobo", Price: decimal.NewFromInt(1000), Category: domain.CategoryDrinks},
	}
	carts := cart.NewService(kv, products, nil, logger.Discard())

	sched := &fakeScheduler{}
	opener := &recordingOpener{}
	dispatcher := handoff.NewDispatcher(sched, opener, nil, logger.Discard())

	svc := NewService(carts, sink, dispatcher, nil, logger.Discard(), Options{
		Shop:          testShop(),
		RedirectDelay: 1500 * time.Millisecond,
		Now:           func() time.Time { return fixedNow },
		NewID:         func() string { return "order-1" },
	})

	return &fixture{svc: svc, carts: carts, sched: sched, opener: opener}
}

func validForm() Form {
	return Form{
		Name:  "Ada",
		Email: "ada@example.com",
		Phone: "08012345678",
	}
}

func (f *fixture) fill(t *testing.T, profile string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.carts.AddProduct(ctx, profile, "cake-1")
	require.NoError(t, err)
	_, err = f.carts.AddProduct(ctx, profile, "drink-1")
	require.NoError(t, err)
	_, err = f.carts.AddProduct(ctx, profile, "drink-1")
	require.NoError(t, err)
}

func (f *fixture) orderLog(t *testing.T, profile string) []domain.OrderRecord {
	t.Helper()
	raw, err := f.carts.ProfileStorage(profile).Get(context.Background(), orderlog.StorageKey)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)

	var records []domain.OrderRecord
	require.NoError(t, json.Unmarshal(raw, &records))
	return records
}

func TestReview_EmptyCart(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})

	sum, err := f.svc.Review(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutStateEmpty, sum.State)
	assert.Equal(t, EmptyCartMessage, sum.Message)
	assert.Empty(t, sum.Lines)
	assert.False(t, sum.CanPay)
}

func TestReview_ListsItemsAndTotals(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")

	sum, err := f.svc.Review(context.Background(), "p1")
	require.NoError(t, err)

	assert.Equal(t, domain.CheckoutStateReviewing, sum.State)
	require.Len(t, sum.Lines, 2)
	assert.Equal(t, "Chocolate Cake x1", sum.Lines[0].Label)
	assert.Equal(t, "N15,000", sum.Lines[0].Amount)
	assert.Equal(t, "Zobo x2", sum.Lines[1].Label)
	assert.Equal(t, "N2,000", sum.Lines[1].Amount)
	assert.Equal(t, "N17,000", sum.Subtotal)
	assert.Equal(t, "N17,000", sum.Total)
	assert.True(t, sum.CanPay)
}

func TestSubmit_EmptyCartIsBlocked(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})

	_, err := f.svc.Submit(context.Background(), "p1", validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)

	assert.Empty(t, f.kv.Keys())
	assert.Empty(t, f.sched.calls)
}

func TestSubmit_InvalidEmailChangesNothing(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")
	before, err := f.carts.Get(context.Background(), "p1")
	require.NoError(t, err)

	form := validForm()
	form.Email = "foo@bar"
	_, err = f.svc.Submit(context.Background(), "p1", form)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrInvalidEmail)
	assert.Equal(t, "Please enter a valid email address.", verr.Message)

	after, err := f.carts.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Nil(t, f.orderLog(t, "p1"))
	assert.Empty(t, f.sched.calls)
}

func TestSubmit_Success(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")
	ctx := context.Background()

	rec, err := f.svc.Submit(ctx, "p1", validForm())
	require.NoError(t, err)

	assert.Equal(t, "order-1", rec.OrderID)
	assert.Equal(t, domain.CheckoutStateSubmitted, rec.State)
	assert.Equal(t, "N17,000", rec.Total)
	assert.Equal(t, SubmittedNotice, rec.Notice)
	assert.Equal(t, 1500*time.Millisecond, rec.RedirectAfter)
	assert.True(t, strings.HasPrefix(rec.RedirectURL, "https://wa.me/2348000000000?text="))

	records := f.orderLog(t, "p1")
	require.Len(t, records, 1)
	got := records[0]
	assert.Equal(t, "order-1", got.ID)
	assert.Equal(t, "Ada", got.Name)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.True(t, got.OrderDate.Equal(fixedNow))
	assert.Equal(t, domain.DeliveryPickup, got.DeliveryOption)
	assert.Nil(t, got.DeliveryAddress)
	require.Len(t, got.Items, 2)
	assert.Equal(t, 2, got.Items[1].Quantity)
	assert.True(t, got.Total.Equal(decimal.NewFromInt(17000)))

	c, err := f.carts.Get(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	_, err = f.kv.Get(ctx, "profile:p1:"+cart.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSubmit_SchedulesHandoff(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")

	rec, err := f.svc.Submit(context.Background(), "p1", validForm())
	require.NoError(t, err)

	require.Len(t, f.sched.calls, 1)
	assert.Equal(t, 1500*time.Millisecond, f.sched.calls[0].delay)
	assert.Empty(t, f.opener.urls, "handoff must wait for the delay")

	f.sched.calls[0].f()
	assert.Equal(t, []string{rec.RedirectURL}, f.opener.urls)

	u, err := url.Parse(rec.RedirectURL)
	require.NoError(t, err)
	assert.Equal(t, rec.Message, u.Query().Get("text"))
}

func TestSubmit_SecondSubmitIsBlocked(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")

	_, err := f.svc.Submit(context.Background(), "p1", validForm())
	require.NoError(t, err)
	_, err = f.svc.Submit(context.Background(), "p1", validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, f.orderLog(t, "p1"), 1)
}

func TestSubmit_OrderLogAppends(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		f.fill(t, "p1")
		_, err := f.svc.Submit(ctx, "p1", validForm())
		require.NoError(t, err)
	}

	assert.Len(t, f.orderLog(t, "p1"), 2)
}

func TestSubmit_DeliveryRecordsAddress(t *testing.T) {
	f := newFixture(t, orderlog.KVSink{})
	f.fill(t, "p1")

	form := validForm()
	form.DeliveryOption = domain.DeliveryDelivery
	form.DeliveryAddress = "  12 Allen Avenue, Ikeja  "
	form.AdditionalPhone = "08098765432"

	rec, err := f.svc.Submit(context.Background(), "p1", form)
	require.NoError(t, err)

	records := f.orderLog(t, "p1")
	require.Len(t, records, 1)
	require.NotNil(t, records[0].DeliveryAddress)
	assert.Equal(t, "12 Allen Avenue, Ikeja", *records[0].DeliveryAddress)
	assert.Contains(t, rec.Message, "- Delivery Address: 12 Allen Avenue, Ikeja")
	assert.Contains(t, rec.Message, "- Additional Contact: 08098765432")
}

func TestSubmit_SinkFailureKeepsCart(t *testing.T) {
	f := newFixture(t, failingSink{})
	f.fill(t, "p1")

	_, err := f.svc.Submit(context.Background(), "p1", validForm())
	require.Error(t, err)

	c, err := f.carts.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, 3, c.ItemCount())
	assert.Empty(t, f.sched.calls)
}

type failingMirror struct {
	calls chan struct{}
}

func (m failingMirror) Append(context.Context, storage.Storage, domain.OrderRecord) error {
	m.calls <- struct{}{}
	return errors.New("broker down")
}

// stalledMirror holds every write until its context ends.
type stalledMirror struct {
	done chan error
}

func (m stalledMirror) Append(ctx context.Context, _ storage.Storage, _ domain.OrderRecord) error {
	<-ctx.Done()
	m.done <- ctx.Err()
	return ctx.Err()
}

func TestSubmit_MirrorFailureStillCommits(t *testing.T) {
	mirror := failingMirror{calls: make(chan struct{}, 1)}
	f := newFixture(t, orderlog.FanOut{
		Primary: orderlog.KVSink{},
		Mirrors: map[string]orderlog.Sink{"kafka": mirror},
		Log:     logger.Discard(),
	})
	f.fill(t, "p1")

	_, err := f.svc.Submit(context.Background(), "p1", validForm())
	require.NoError(t, err)
	f.svc.Wait()

	assert.Len(t, mirror.calls, 1)
	assert.Len(t, f.orderLog(t, "p1"), 1)
	c, err := f.carts.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestSubmit_StalledMirrorDoesNotHoldCheckout(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	mirror := stalledMirror{done: make(chan error, 1)}
	f := newFixtureOn(t, storage.NewRedisStorage(client, "test:"), orderlog.FanOut{
		Primary:       orderlog.KVSink{},
		Mirrors:       map[string]orderlog.Sink{"kafka": mirror},
		MirrorTimeout: 100 * time.Millisecond,
		Log:           logger.Discard(),
	})
	f.fill(t, "p1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	rec, err := f.svc.Submit(ctx, "p1", validForm())
	require.NoError(t, err)
	assert.Equal(t, domain.CheckoutStateSubmitted, rec.State)
	cancel()

	c, err := f.carts.Get(context.Background(), "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	_, err = f.carts.ProfileStorage("p1").Get(context.Background(), cart.StorageKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Len(t, f.orderLog(t, "p1"), 1)

	f.svc.Wait()
	assert.ErrorIs(t, <-mirror.done, context.DeadlineExceeded, "mirror runs on its own deadline, not the request's")

	_, err = f.svc.Submit(context.Background(), "p1", validForm())
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Len(t, f.orderLog(t, "p1"), 1)
}

func TestForm_Validate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*Form)
		want error
	}{
		{"valid", func(*Form) {}, nil},
		{"missing name", func(f *Form) { f.Name = "   " }, ErrMissingFields},
		{"missing phone", func(f *Form) { f.Phone = "" }, ErrMissingFields},
		{"email without dot", func(f *Form) { f.Email = "foo@bar" }, ErrInvalidEmail},
		{"email with space", func(f *Form) { f.Email = "a b@c.com" }, ErrInvalidEmail},
		{"short phone", func(f *Form) { f.Phone = "12345" }, ErrInvalidPhone},
		{"phone with letters", func(f *Form) { f.Phone = "0801234567a" }, ErrInvalidPhone},
		{"formatted phone", func(f *Form) { f.Phone = "+234 (801) 234-5678" }, nil},
		{"unknown option", func(f *Form) { f.DeliveryOption = "drone" }, ErrInvalidDeliveryOption},
		{"delivery without address", func(f *Form) { f.DeliveryOption = domain.DeliveryDelivery }, ErrAddressRequired},
		{"delivery without contact phone", func(f *Form) {
			f.DeliveryOption = domain.DeliveryDelivery
			f.DeliveryAddress = "12 Allen Avenue"
		}, ErrDeliveryPhoneRequired},
		{"delivery complete", func(f *Form) {
			f.DeliveryOption = domain.DeliveryDelivery
			f.DeliveryAddress = "12 Allen Avenue"
			f.AdditionalPhone = "08098765432"
		}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := validForm()
			tt.edit(&form)
			err := form.Normalize().Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOrderMessage(t *testing.T) {
	shop := testShop()
	shop.BankName = "Kuda"
	shop.BankAccountName = "Delikrafts"
	shop.BankAccountNumber = "0123456789"

	rec := domain.OrderRecord{
		Items: []domain.LineItem{
			{ID: "cake-1", Name: "Chocolate Cake", UnitPrice: decimal.NewFromInt(15000), Quantity: 1},
			{ID: "drink-1", Name: "Zobo", UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
		},
		Total: decimal.NewFromInt(17000),
	}
	form := validForm().Normalize()

	msg := OrderMessage(shop, form, rec, money.NewFormatter("N"))

	assert.True(t, strings.HasPrefix(msg, "Hello! My name is Ada and I would like to place an order from Delikrafts Meals."))
	assert.Contains(t, msg, "- Items: Chocolate Cake x1 (N15,000), Zobo x2 (N2,000)")
	assert.Contains(t, msg, "- Subtotal: N17,000")
	assert.Contains(t, msg, "- Order Option: pickup")
	assert.NotContains(t, msg, "Delivery Address")
	assert.Contains(t, msg, "Account Number: 0123456789")
	assert.True(t, strings.HasSuffix(msg, "Thank you!"))
}
