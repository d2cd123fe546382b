package coupon

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is a cart line as seen by the coupon engine.
type Item struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

// Validate checks whether the coupon can be applied to the given items at
// the given instant. Check order matters: expiration is reported before
// exhaustion, exhaustion before product scope.
func Validate(c *Coupon, items []Item, now time.Time) error {
	if c.ExpirationDate.Before(now) {
		return ErrExpired
	}
	if c.UsesLeft <= 0 {
		return ErrExhausted
	}
	if c.ProductID != "" {
		for _, it := range items {
			if it.ProductID == c.ProductID {
				return nil
			}
		}
		return ErrNotApplicable
	}
	return nil
}

// DiscountFor computes the discount amount the coupon grants on the given
// total. Percentage coupons take total*discount/100; fixed coupons take the
// flat amount. Clamping the resulting order total at zero is the caller's
// concern.
func DiscountFor(c *Coupon, total decimal.Decimal) (decimal.Decimal, error) {
	switch c.Type {
	case TypePercentage:
		return total.Mul(c.Discount).Div(hundred).Round(2), nil
	case TypeFixed:
		return c.Discount.Round(2), nil
	default:
		return decimal.Zero, errors.Errorf("unsupported coupon type: %q", c.Type)
	}
}
