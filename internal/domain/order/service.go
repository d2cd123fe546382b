package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/notification"
	"github.com/soukmarket/souk-api/internal/domain/payment"
	"github.com/soukmarket/souk-api/internal/domain/product"
)

// Service is the checkout orchestrator and order status machine.
type Service struct {
	orders   Repository
	carts    cart.Repository
	products product.Repository
	coupons  coupon.Repository
	gateway  payment.Gateway
	events   notification.Publisher
	now      func() time.Time
}

// NewService creates an order Service with the required collaborators.
func NewService(
	orders Repository,
	carts cart.Repository,
	products product.Repository,
	coupons coupon.Repository,
	gateway payment.Gateway,
	events notification.Publisher,
) *Service {
	return &Service{
		orders:   orders,
		carts:    carts,
		products: products,
		coupons:  coupons,
		gateway:  gateway,
		events:   events,
		now:      time.Now,
	}
}

// Checkout converts the user's cart into an immutable order. Line items
// whose product no longer exists are dropped; prices are the ones captured
// at add-to-cart time. When a coupon code is given it is validated and its
// remaining uses are decremented inside the same transaction that persists
// the order and clears the cart, so a failure anywhere rolls back all three.
func (s *Service) Checkout(ctx context.Context, userID, couponCode string) (*Order, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, cart.ErrNotFound) {
			return nil, ErrEmptyCart
		}
		return nil, errors.Wrap(err, "load cart")
	}
	if len(c.Items) == 0 {
		return nil, ErrEmptyCart
	}

	items, err := s.snapshotItems(ctx, c.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrStaleCartItems
	}

	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	discount := decimal.Zero
	appliedCode := ""
	couponID := ""
	if couponCode != "" {
		cp, err := s.validateCoupon(ctx, couponCode, items)
		if err != nil {
			return nil, err
		}
		if discount, err = coupon.DiscountFor(cp, total); err != nil {
			return nil, err
		}
		appliedCode = cp.Code
		couponID = cp.ID
	}

	total = total.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	o := &Order{
		ID:              uuid.New().String(),
		UserID:          userID,
		Items:           items,
		Total:           total.Round(2),
		DiscountApplied: discount.Round(2),
		CouponID:        couponID,
		Status:          StatusPending,
		PaymentStatus:   PaymentUnpaid,
	}
	if err := s.orders.FinalizeCheckout(ctx, o, appliedCode); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notification.Event{
		Type:        notification.EventOrderPlaced,
		RecipientID: userID,
		OrderID:     o.ID,
	})
	return o, nil
}

// snapshotItems copies cart lines into order items, dropping lines whose
// product no longer exists and stamping each with the product's title and
// seller.
func (s *Service) snapshotItems(ctx context.Context, lines []cart.Item) ([]Item, error) {
	ids := make([]string, len(lines))
	for i, it := range lines {
		ids[i] = it.ProductID
	}

	fetched, err := s.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "get products")
	}
	byID := make(map[string]product.Product, len(fetched))
	for _, p := range fetched {
		byID[p.ID] = p
	}

	items := make([]Item, 0, len(lines))
	for _, it := range lines {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		items = append(items, Item{
			ProductID: it.ProductID,
			Title:     p.Title,
			Quantity:  it.Quantity,
			Price:     it.Price,
			SellerID:  p.SellerID,
		})
	}
	return items, nil
}

func (s *Service) validateCoupon(ctx context.Context, code string, items []Item) (*coupon.Coupon, error) {
	cp, err := s.coupons.FindByCode(ctx, coupon.NormalizeCode(code))
	if err != nil {
		return nil, err
	}

	couponItems := make([]coupon.Item, len(items))
	for i, it := range items {
		couponItems[i] = coupon.Item{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
		}
	}
	if err := coupon.Validate(cp, couponItems, s.now()); err != nil {
		return nil, err
	}
	return cp, nil
}

// GetByID returns one order.
func (s *Service) GetByID(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// ListForUser returns the user's orders, newest first.
func (s *Service) ListForUser(ctx context.Context, userID string) ([]Order, error) {
	return s.orders.ListForUser(ctx, userID)
}

// SetStatus moves the order to newStatus. Transitions are deliberately
// permissive: any known status can be set from any current state, including
// cancelled from anywhere. Every transition emits an ORDER_UPDATED event to
// the order's owner.
func (s *Service) SetStatus(ctx context.Context, orderID string, newStatus Status) (*Order, error) {
	if !ValidStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, errors.Wrap(err, "update status")
	}
	o.Status = newStatus

	s.events.Publish(ctx, notification.Event{
		Type:        notification.EventOrderUpdated,
		RecipientID: o.UserID,
		OrderID:     o.ID,
		NewStatus:   string(newStatus),
	})
	return o, nil
}

// ConfirmPayment runs the payment gateway for the order and, on success,
// marks it paid. This is the only path that touches PaymentStatus. The
// gateway outcome is bounded by ctx; an expired deadline surfaces
// payment.ErrTimeout.
func (s *Service) ConfirmPayment(ctx context.Context, orderID string) (*Order, error) {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := s.gateway.Authorize(ctx, orderID); err != nil {
		return nil, err
	}

	if err := s.orders.MarkPaid(ctx, orderID); err != nil {
		return nil, errors.Wrap(err, "mark paid")
	}
	o.Status = StatusPaid
	o.PaymentStatus = PaymentPaid

	s.events.Publish(ctx, notification.Event{
		Type:        notification.EventOrderUpdated,
		RecipientID: o.UserID,
		OrderID:     o.ID,
		NewStatus:   string(StatusPaid),
	})
	return o, nil
}

// CommitStock decrements product stock for every line of a paid order. The
// whole commit is all-or-nothing: when one line cannot be covered, the
// decrements already applied in the same call are rolled back and the
// offending product is named in the error.
func (s *Service) CommitStock(ctx context.Context, orderID string) error {
	o, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return err
	}

	if o.Status != StatusPaid && o.PaymentStatus != PaymentPaid {
		return ErrPaymentNotConfirmed
	}

	return s.orders.CommitStock(ctx, o)
}
