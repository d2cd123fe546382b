package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/cart"
)

const (
	getCartSQL = `SELECT user_id, items, total FROM carts WHERE user_id = $1`

	saveCartSQL = `INSERT INTO carts (user_id, items, total, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (user_id) DO UPDATE SET items = $2, total = $3, updated_at = now()`
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL. Each cart
// is one row with its line items in a JSONB document.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// Get returns the user's cart, or cart.ErrNotFound when none exists.
func (r *CartRepository) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	rows, err := r.pool.Query(ctx, getCartSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCart)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("getting cart for user %q: %w", userID, err)
	}
	return &c, nil
}

// Save upserts the cart document.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_, err := r.pool.Exec(ctx, saveCartSQL, c.UserID, encodeCartItems(c.Items), c.Total)
	if err != nil {
		return fmt.Errorf("saving cart for user %q: %w", c.UserID, err)
	}
	return nil
}

func scanCart(row pgx.CollectableRow) (cart.Cart, error) {
	var (
		c     cart.Cart
		items []byte
		total decimal.Decimal
	)
	if err := row.Scan(&c.UserID, &items, &total); err != nil {
		return c, err
	}
	c.Total = total

	decoded, err := decodeCartItems(items)
	if err != nil {
		return c, fmt.Errorf("decoding cart items: %w", err)
	}
	c.Items = decoded
	return c, nil
}
