// Package cart implements the per-user mutable shopping cart.
package cart

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrItemNotFound is returned when the cart has no line for the product.
	ErrItemNotFound = errors.New("cart item not found")
	// ErrNotFound is returned when the user has no cart yet.
	ErrNotFound = errors.New("cart not found")
	// ErrInvalidQuantity is returned for non-positive quantities.
	ErrInvalidQuantity = errors.New("quantity must be greater than 0")
)

// Item is one cart line. Price is captured at add time and stays fixed even
// if the product's live price changes afterwards.
type Item struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Cart is a user's pre-checkout collection of product lines with a
// denormalized total kept in sync with the lines.
type Cart struct {
	UserID string
	Items  []Item
	Total  decimal.Decimal
}

// RecalcTotal recomputes the denormalized total from the line items.
func (c *Cart) RecalcTotal() {
	sum := decimal.Zero
	for _, it := range c.Items {
		sum = sum.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	c.Total = sum
}

// Repository defines persistence operations for carts.
type Repository interface {
	// Get returns the user's cart, or ErrNotFound when none exists.
	Get(ctx context.Context, userID string) (*Cart, error)
	// Save upserts the cart document (items and total).
	Save(ctx context.Context, c *Cart) error
}
