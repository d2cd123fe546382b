// Package coupon implements discount codes: validation against a cart,
// discount calculation, and the management CRUD.
package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Type enumerates the supported discount strategies.
type Type string

const (
	// TypePercentage discounts a percentage of the cart total.
	TypePercentage Type = "percentage"
	// TypeFixed discounts a flat amount.
	TypeFixed Type = "fixed"
)

var (
	// ErrNotFound is returned when no live coupon matches the code or id.
	ErrNotFound = errors.New("coupon not found")
	// ErrExpired is returned when the coupon's expiration date has passed.
	ErrExpired = errors.New("coupon expired")
	// ErrExhausted is returned when the coupon has no uses left.
	ErrExhausted = errors.New("coupon usage limit reached")
	// ErrNotApplicable is returned when a product-scoped coupon does not
	// match any product in the cart.
	ErrNotApplicable = errors.New("coupon does not apply to the products in the cart")
	// ErrCodeExists is returned on creation with a duplicate code.
	ErrCodeExists = errors.New("coupon code already exists")
	// ErrAlreadyDeleted is returned when soft-deleting a deleted coupon.
	ErrAlreadyDeleted = errors.New("coupon already deleted")
	// ErrInvalidPercentage rejects percentage discounts above 100.
	ErrInvalidPercentage = errors.New("invalid discount value, must be below 100%")
)

// Coupon is a discount code with usage-count and expiration constraints.
// UsesLeft is decremented exclusively by the checkout transaction, with a
// uses_left > 0 predicate so it can never go negative.
type Coupon struct {
	ID             string
	Code           string
	Type           Type
	Discount       decimal.Decimal
	ExpirationDate time.Time
	ProductID      string // optional: restricts the coupon to one product
	Categories     []string
	SellerID       string
	UsesLeft       int
	DeletedAt      *time.Time
	CreatedAt      time.Time
}

// NormalizeCode upper-cases and trims a user-supplied coupon code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Repository defines persistence operations for coupons.
type Repository interface {
	Create(ctx context.Context, c *Coupon) error
	// FindByCode returns the live (not soft-deleted) coupon with the given
	// normalized code, or ErrNotFound.
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	GetByID(ctx context.Context, id string) (*Coupon, error)
	List(ctx context.Context) ([]Coupon, error)
	Update(ctx context.Context, c *Coupon) error
	// SoftDelete stamps deleted_at; ErrAlreadyDeleted when already stamped.
	SoftDelete(ctx context.Context, id string) (*Coupon, error)
}
