package order

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/notification"
	"github.com/soukmarket/souk-api/internal/domain/payment"
	"github.com/soukmarket/souk-api/internal/domain/product"
)

func d(v string) decimal.Decimal {
	return decimal.RequireFromString(v)
}

// --- Mock implementations ---

type mockOrderRepo struct {
	finalized   *Order
	couponCode  string
	finalizeErr error

	byID map[string]*Order

	statusUpdates map[string]Status
	markedPaid    []string
	committed     []*Order
	commitErr     error
}

func newMockOrderRepo(existing ...*Order) *mockOrderRepo {
	byID := make(map[string]*Order, len(existing))
	for _, o := range existing {
		byID[o.ID] = o
	}
	return &mockOrderRepo{byID: byID, statusUpdates: make(map[string]Status)}
}

func (m *mockOrderRepo) FinalizeCheckout(_ context.Context, o *Order, couponCode string) error {
	if m.finalizeErr != nil {
		return m.finalizeErr
	}
	m.finalized = o
	m.couponCode = couponCode
	m.byID[o.ID] = o
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockOrderRepo) ListForUser(_ context.Context, userID string) ([]Order, error) {
	var out []Order
	for _, o := range m.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id string, st Status) error {
	m.statusUpdates[id] = st
	return nil
}

func (m *mockOrderRepo) MarkPaid(_ context.Context, id string) error {
	m.markedPaid = append(m.markedPaid, id)
	return nil
}

func (m *mockOrderRepo) CommitStock(_ context.Context, o *Order) error {
	if m.commitErr != nil {
		return m.commitErr
	}
	m.committed = append(m.committed, o)
	return nil
}

type mockCartRepo struct {
	cart *cart.Cart
	err  error
}

func (m *mockCartRepo) Get(_ context.Context, _ string) (*cart.Cart, error) {
	return m.cart, m.err
}

func (m *mockCartRepo) Save(_ context.Context, c *cart.Cart) error {
	m.cart = c
	return nil
}

type mockProductRepo struct {
	byID map[string]product.Product
}

func newMockProductRepo(products ...product.Product) *mockProductRepo {
	byID := make(map[string]product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return &mockProductRepo{byID: byID}
}

func (m *mockProductRepo) List(_ context.Context) ([]product.Product, error) {
	out := make([]product.Product, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, p)
	}
	return out, nil
}

func (m *mockProductRepo) GetByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return &p, nil
}

func (m *mockProductRepo) GetByIDs(_ context.Context, ids []string) ([]product.Product, error) {
	var out []product.Product
	for _, id := range ids {
		if p, ok := m.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) Create(_ context.Context, p *product.Product) error {
	m.byID[p.ID] = *p
	return nil
}

func (m *mockProductRepo) SetActive(_ context.Context, id string, active bool) error {
	p := m.byID[id]
	p.Active = active
	m.byID[id] = p
	return nil
}

type mockCouponRepo struct {
	byCode map[string]*coupon.Coupon
}

func (m *mockCouponRepo) Create(_ context.Context, _ *coupon.Coupon) error { return nil }

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*coupon.Coupon, error) {
	c, ok := m.byCode[code]
	if !ok {
		return nil, coupon.ErrNotFound
	}
	return c, nil
}

func (m *mockCouponRepo) GetByID(_ context.Context, _ string) (*coupon.Coupon, error) {
	return nil, coupon.ErrNotFound
}

func (m *mockCouponRepo) List(_ context.Context) ([]coupon.Coupon, error) { return nil, nil }

func (m *mockCouponRepo) Update(_ context.Context, _ *coupon.Coupon) error { return nil }

func (m *mockCouponRepo) SoftDelete(_ context.Context, _ string) (*coupon.Coupon, error) {
	return nil, coupon.ErrNotFound
}

type mockGateway struct {
	err   error
	calls int
}

func (m *mockGateway) Authorize(_ context.Context, _ string) error {
	m.calls++
	return m.err
}

// capturePublisher records published events synchronously.
type capturePublisher struct {
	events []notification.Event
}

func (p *capturePublisher) Publish(_ context.Context, ev notification.Event) {
	p.events = append(p.events, ev)
}

// --- Helpers ---

type fixture struct {
	svc      *Service
	orders   *mockOrderRepo
	carts    *mockCartRepo
	products *mockProductRepo
	coupons  *mockCouponRepo
	gateway  *mockGateway
	events   *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	products := newMockProductRepo(
		product.Product{ID: "p1", Title: "Brass Lamp", Price: d("45"), Stock: 20, SellerID: "seller-1", Active: true},
		product.Product{ID: "p2", Title: "Berber Rug", Price: d("180"), Stock: 5, SellerID: "seller-1", Active: true},
	)
	f := &fixture{
		orders:   newMockOrderRepo(),
		carts:    &mockCartRepo{},
		products: products,
		coupons:  &mockCouponRepo{byCode: make(map[string]*coupon.Coupon)},
		gateway:  &mockGateway{},
		events:   &capturePublisher{},
	}
	f.svc = NewService(f.orders, f.carts, f.products, f.coupons, f.gateway, f.events)
	f.svc.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *fixture) withCart(items ...cart.Item) {
	c := &cart.Cart{UserID: "user-1", Items: items}
	c.RecalcTotal()
	f.carts.cart = c
}

func (f *fixture) withCoupon(c *coupon.Coupon) {
	f.coupons.byCode[c.Code] = c
}

func liveCoupon(code string, typ coupon.Type, discount string) *coupon.Coupon {
	return &coupon.Coupon{
		ID:             "coupon-" + code,
		Code:           code,
		Type:           typ,
		Discount:       decimal.RequireFromString(discount),
		ExpirationDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		SellerID:       "seller-1",
		UsesLeft:       10,
	}
}

// --- Checkout ---

func TestCheckout(t *testing.T) {
	t.Run("no cart at all", func(t *testing.T) {
		f := newFixture(t)
		f.carts.err = cart.ErrNotFound

		_, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("cart with no lines", func(t *testing.T) {
		f := newFixture(t)
		f.withCart()

		_, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.ErrorIs(t, err, ErrEmptyCart)
	})

	t.Run("all cart lines stale", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "gone", Quantity: 1, Price: d("10")})

		_, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.ErrorIs(t, err, ErrStaleCartItems)
		assert.Nil(t, f.orders.finalized)
	})

	t.Run("stale lines are dropped, live ones survive", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(
			cart.Item{ProductID: "p1", Quantity: 2, Price: d("45")},
			cart.Item{ProductID: "gone", Quantity: 1, Price: d("10")},
		)

		o, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.NoError(t, err)
		require.Len(t, o.Items, 1)
		assert.Equal(t, "p1", o.Items[0].ProductID)
		assert.True(t, d("90").Equal(o.Total), "expected total 90, got %s", o.Total)
	})

	t.Run("plain checkout without coupon", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(
			cart.Item{ProductID: "p1", Quantity: 2, Price: d("45")}, // 90
			cart.Item{ProductID: "p2", Quantity: 1, Price: d("10")}, // 10
		)

		o, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.NoError(t, err)

		assert.True(t, d("100").Equal(o.Total))
		assert.True(t, o.DiscountApplied.IsZero())
		assert.Empty(t, o.CouponID)
		assert.Equal(t, StatusPending, o.Status)
		assert.Equal(t, PaymentUnpaid, o.PaymentStatus)

		// Persisted through the transactional boundary with no coupon code.
		require.NotNil(t, f.orders.finalized)
		assert.Empty(t, f.orders.couponCode)

		// ORDER_PASS event to the buyer.
		require.Len(t, f.events.events, 1)
		assert.Equal(t, notification.EventOrderPlaced, f.events.events[0].Type)
		assert.Equal(t, "user-1", f.events.events[0].RecipientID)
		assert.Equal(t, o.ID, f.events.events[0].OrderID)
	})

	t.Run("snapshot copies title and seller, price from cart", func(t *testing.T) {
		f := newFixture(t)
		// Cart captured the price at 40; the live product says 45. The
		// captured price wins.
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("40")})

		o, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.NoError(t, err)

		require.Len(t, o.Items, 1)
		assert.Equal(t, "Brass Lamp", o.Items[0].Title)
		assert.Equal(t, "seller-1", o.Items[0].SellerID)
		assert.True(t, d("40").Equal(o.Items[0].Price))
		assert.True(t, d("40").Equal(o.Total))
	})

	t.Run("order is immutable once the cart moves on", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(
			cart.Item{ProductID: "p1", Quantity: 2, Price: d("45")}, // 90
			cart.Item{ProductID: "p2", Quantity: 1, Price: d("10")}, // 10
		)

		o, err := f.svc.Checkout(context.Background(), "user-1", "")
		require.NoError(t, err)
		require.True(t, d("100").Equal(o.Total))

		// The shopper keeps shopping: existing lines are rewritten in
		// place and a new one is added.
		c := f.carts.cart
		c.Items[0].Quantity = 99
		c.Items[0].Price = d("1")
		c.Items = append(c.Items, cart.Item{ProductID: "p2", Quantity: 3, Price: d("180")})
		c.RecalcTotal()
		require.NoError(t, f.carts.Save(context.Background(), c))

		stored, err := f.orders.GetByID(context.Background(), o.ID)
		require.NoError(t, err)
		require.Len(t, stored.Items, 2)
		assert.Equal(t, 2, stored.Items[0].Quantity)
		assert.True(t, d("45").Equal(stored.Items[0].Price))
		assert.True(t, d("100").Equal(stored.Total))
	})

	t.Run("percentage coupon discounts the total", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 2, Price: d("50")}) // 100
		f.withCoupon(liveCoupon("SAVE10", coupon.TypePercentage, "10"))

		o, err := f.svc.Checkout(context.Background(), "user-1", "save10")
		require.NoError(t, err)

		assert.True(t, d("90").Equal(o.Total), "expected 90, got %s", o.Total)
		assert.True(t, d("10").Equal(o.DiscountApplied))
		assert.Equal(t, "coupon-SAVE10", o.CouponID)
		assert.Equal(t, "SAVE10", f.orders.couponCode)
	})

	t.Run("fixed coupon larger than total clamps at zero", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("30")})
		f.withCoupon(liveCoupon("FLAT50", coupon.TypeFixed, "50"))

		o, err := f.svc.Checkout(context.Background(), "user-1", "FLAT50")
		require.NoError(t, err)

		assert.True(t, o.Total.IsZero(), "expected 0, got %s", o.Total)
		assert.True(t, d("50").Equal(o.DiscountApplied))
	})

	t.Run("unknown coupon code", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("45")})

		_, err := f.svc.Checkout(context.Background(), "user-1", "NOPE")
		require.ErrorIs(t, err, coupon.ErrNotFound)
		assert.Nil(t, f.orders.finalized)
		assert.Empty(t, f.events.events)
	})

	t.Run("expired coupon aborts checkout", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("45")})

		expired := liveCoupon("OLD", coupon.TypePercentage, "10")
		expired.ExpirationDate = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		f.withCoupon(expired)

		_, err := f.svc.Checkout(context.Background(), "user-1", "OLD")
		require.ErrorIs(t, err, coupon.ErrExpired)
		assert.Nil(t, f.orders.finalized)
	})

	t.Run("product-scoped coupon must match a line", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("45")})

		scoped := liveCoupon("RUGONLY", coupon.TypePercentage, "20")
		scoped.ProductID = "p2"
		f.withCoupon(scoped)

		_, err := f.svc.Checkout(context.Background(), "user-1", "RUGONLY")
		require.ErrorIs(t, err, coupon.ErrNotApplicable)
	})

	t.Run("lost coupon decrement race surfaces as exhausted", func(t *testing.T) {
		f := newFixture(t)
		f.withCart(cart.Item{ProductID: "p1", Quantity: 1, Price: d("45")})
		f.withCoupon(liveCoupon("SAVE10", coupon.TypePercentage, "10"))
		f.orders.finalizeErr = coupon.ErrExhausted

		_, err := f.svc.Checkout(context.Background(), "user-1", "SAVE10")
		require.ErrorIs(t, err, coupon.ErrExhausted)
		assert.Empty(t, f.events.events, "no event when the transaction rolls back")
	})
}

// --- Status machine ---

func TestSetStatus(t *testing.T) {
	existing := &Order{ID: "order-1", UserID: "user-1", Status: StatusPending}

	t.Run("rejects unknown status", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = existing

		_, err := f.svc.SetStatus(context.Background(), "order-1", Status("bogus"))
		require.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.SetStatus(context.Background(), "missing", StatusShipped)
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("transition emits ORDER_UPDATED to the owner", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = existing

		o, err := f.svc.SetStatus(context.Background(), "order-1", StatusShipped)
		require.NoError(t, err)
		assert.Equal(t, StatusShipped, o.Status)
		assert.Equal(t, StatusShipped, f.orders.statusUpdates["order-1"])

		require.Len(t, f.events.events, 1)
		ev := f.events.events[0]
		assert.Equal(t, notification.EventOrderUpdated, ev.Type)
		assert.Equal(t, "user-1", ev.RecipientID)
		assert.Equal(t, string(StatusShipped), ev.NewStatus)
	})

	t.Run("cancel is allowed from any state", func(t *testing.T) {
		for _, from := range []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered} {
			f := newFixture(t)
			f.orders.byID["order-1"] = &Order{ID: "order-1", UserID: "user-1", Status: from}

			o, err := f.svc.SetStatus(context.Background(), "order-1", StatusCancelled)
			require.NoError(t, err, "cancel from %s", from)
			assert.Equal(t, StatusCancelled, o.Status)
		}
	})
}

// --- Payment ---

func TestConfirmPayment(t *testing.T) {
	t.Run("success marks the order paid and notifies", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = &Order{ID: "order-1", UserID: "user-1", Status: StatusPending, PaymentStatus: PaymentUnpaid}

		o, err := f.svc.ConfirmPayment(context.Background(), "order-1")
		require.NoError(t, err)

		assert.Equal(t, StatusPaid, o.Status)
		assert.Equal(t, PaymentPaid, o.PaymentStatus)
		assert.Equal(t, []string{"order-1"}, f.orders.markedPaid)
		assert.Equal(t, 1, f.gateway.calls)

		require.Len(t, f.events.events, 1)
		assert.Equal(t, notification.EventOrderUpdated, f.events.events[0].Type)
	})

	t.Run("declined payment leaves the order untouched", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = &Order{ID: "order-1", UserID: "user-1"}
		f.gateway.err = payment.ErrDeclined

		_, err := f.svc.ConfirmPayment(context.Background(), "order-1")
		require.ErrorIs(t, err, payment.ErrDeclined)
		assert.Empty(t, f.orders.markedPaid)
		assert.Empty(t, f.events.events)
	})

	t.Run("gateway timeout is distinct from a decline", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = &Order{ID: "order-1", UserID: "user-1"}
		f.gateway.err = payment.ErrTimeout

		_, err := f.svc.ConfirmPayment(context.Background(), "order-1")
		require.ErrorIs(t, err, payment.ErrTimeout)
		require.NotErrorIs(t, err, payment.ErrDeclined)
		assert.Empty(t, f.orders.markedPaid)
	})

	t.Run("unknown order never reaches the gateway", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.ConfirmPayment(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Zero(t, f.gateway.calls)
	})
}

// --- Stock commit ---

func TestCommitStock(t *testing.T) {
	paidOrder := func() *Order {
		return &Order{
			ID:            "order-1",
			UserID:        "user-1",
			Status:        StatusPaid,
			PaymentStatus: PaymentPaid,
			Items: []Item{
				{ProductID: "p1", Title: "Brass Lamp", Quantity: 2, Price: d("45")},
			},
		}
	}

	t.Run("unpaid order is rejected", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = &Order{ID: "order-1", Status: StatusPending, PaymentStatus: PaymentUnpaid}

		err := f.svc.CommitStock(context.Background(), "order-1")
		require.ErrorIs(t, err, ErrPaymentNotConfirmed)
		assert.Empty(t, f.orders.committed)
	})

	t.Run("paid order commits", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = paidOrder()

		err := f.svc.CommitStock(context.Background(), "order-1")
		require.NoError(t, err)
		require.Len(t, f.orders.committed, 1)
		assert.Equal(t, "order-1", f.orders.committed[0].ID)
	})

	t.Run("insufficient stock names the product", func(t *testing.T) {
		f := newFixture(t)
		f.orders.byID["order-1"] = paidOrder()
		f.orders.commitErr = &InsufficientStockError{ProductID: "p1", ProductTitle: "Brass Lamp"}

		err := f.svc.CommitStock(context.Background(), "order-1")

		var stockErr *InsufficientStockError
		require.ErrorAs(t, err, &stockErr)
		assert.Equal(t, "p1", stockErr.ProductID)
		assert.Contains(t, err.Error(), "Brass Lamp")
	})

	t.Run("unknown order", func(t *testing.T) {
		f := newFixture(t)

		err := f.svc.CommitStock(context.Background(), "missing")
		require.ErrorIs(t, err, ErrNotFound)
	})
}
