// Package order implements the checkout orchestrator, the order status
// machine, and the paid-order stock commit.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Status is an order lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// ValidStatus reports whether s is one of the five known states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// PaymentStatus tracks whether the order has been paid for.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

var (
	// ErrEmptyCart is returned when checkout finds no cart or no line items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStaleCartItems is returned when every cart line references a
	// product that no longer exists.
	ErrStaleCartItems = errors.New("products in the cart no longer exist")
	// ErrNotFound is returned when the order does not exist.
	ErrNotFound = errors.New("order not found")
	// ErrInvalidStatus rejects unknown status values.
	ErrInvalidStatus = errors.New("invalid order status")
	// ErrPaymentNotConfirmed gates the stock commit on payment.
	ErrPaymentNotConfirmed = errors.New("payment is not confirmed yet")
)

// InsufficientStockError names the first product whose stock cannot cover
// its ordered quantity.
type InsufficientStockError struct {
	ProductID    string
	ProductTitle string
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q does not have enough stock", e.ProductTitle)
}

// Item is an order line: a snapshot copied from the cart at checkout time,
// never a live reference.
type Item struct {
	ProductID string
	Title     string
	Quantity  int
	Price     decimal.Decimal
	SellerID  string
}

// Order is the immutable record produced by checkout. Only Status and
// PaymentStatus change after creation.
type Order struct {
	ID              string
	UserID          string
	Items           []Item
	Total           decimal.Decimal
	DiscountApplied decimal.Decimal
	CouponID        string
	Status          Status
	PaymentStatus   PaymentStatus
	CreatedAt       time.Time
}

// Repository defines persistence operations for orders.
type Repository interface {
	// FinalizeCheckout atomically persists the order, decrements the
	// applied coupon's remaining uses (guarded by uses_left > 0), and
	// empties the user's cart. couponCode is the normalized code, empty
	// when no coupon applies. A lost decrement race surfaces as
	// coupon.ErrExhausted and nothing is persisted.
	FinalizeCheckout(ctx context.Context, o *Order, couponCode string) error
	GetByID(ctx context.Context, id string) (*Order, error)
	ListForUser(ctx context.Context, userID string) ([]Order, error)
	UpdateStatus(ctx context.Context, id string, st Status) error
	// MarkPaid sets status and payment_status to paid in one write.
	MarkPaid(ctx context.Context, id string) error
	// CommitStock decrements product stock for every order line in one
	// transaction, each guarded by stock >= quantity. The first line that
	// cannot be covered aborts the whole commit with
	// *InsufficientStockError.
	CommitStock(ctx context.Context, o *Order) error
}
