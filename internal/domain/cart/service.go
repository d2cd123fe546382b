package cart

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/soukmarket/souk-api/internal/domain/product"
)

// Service owns cart mutations. Carts are created lazily on first add and
// emptied (never deleted) by checkout.
type Service struct {
	carts    Repository
	products product.Repository
}

// NewService creates a cart Service.
func NewService(carts Repository, products product.Repository) *Service {
	return &Service{carts: carts, products: products}
}

// Get returns the user's cart, or ErrNotFound when none exists yet.
func (s *Service) Get(ctx context.Context, userID string) (*Cart, error) {
	return s.carts.Get(ctx, userID)
}

// Add puts qty units of the product into the user's cart, capturing the
// product's current price. Adding an already-present product merges into
// the existing line without touching its captured price.
func (s *Service) Add(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return nil, errors.Wrap(err, "load cart")
		}
		c = &Cart{UserID: userID}
	}

	merged := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		c.Items = append(c.Items, Item{
			ProductID: productID,
			Quantity:  qty,
			Price:     p.Price,
		})
	}

	c.RecalcTotal()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// UpdateItem replaces the quantity of an existing line.
func (s *Service) UpdateItem(ctx context.Context, userID, productID string, qty int) (*Cart, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}

	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = qty
			found = true
			break
		}
	}
	if !found {
		return nil, ErrItemNotFound
	}

	c.RecalcTotal()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}

// RemoveItem deletes a line from the cart.
func (s *Service) RemoveItem(ctx context.Context, userID, productID string) (*Cart, error) {
	c, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	kept := c.Items[:0]
	found := false
	for _, it := range c.Items {
		if it.ProductID == productID {
			found = true
			continue
		}
		kept = append(kept, it)
	}
	if !found {
		return nil, ErrItemNotFound
	}
	c.Items = kept

	c.RecalcTotal()
	if err := s.carts.Save(ctx, c); err != nil {
		return nil, errors.Wrap(err, "save cart")
	}
	return c, nil
}
