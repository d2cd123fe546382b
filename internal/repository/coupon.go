package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukmarket/souk-api/internal/domain/coupon"
)

const (
	couponColumns = `id, code, type, discount, expiration_date,
		COALESCE(product_id, ''), categories, seller_id, uses_left, deleted_at, created_at`

	createCouponSQL = `INSERT INTO coupons
		(id, code, type, discount, expiration_date, product_id, categories, seller_id, uses_left)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9)`

	findCouponByCodeSQL = `SELECT ` + couponColumns + `
		FROM coupons WHERE code = UPPER($1) AND deleted_at IS NULL`

	getCouponByIDSQL = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

	listCouponsSQL = `SELECT ` + couponColumns + ` FROM coupons ORDER BY created_at DESC`

	updateCouponSQL = `UPDATE coupons SET code = $2, type = $3, discount = $4,
		expiration_date = $5, product_id = NULLIF($6, ''), categories = $7,
		seller_id = $8, uses_left = $9
		WHERE id = $1 AND deleted_at IS NULL`

	softDeleteCouponSQL = `UPDATE coupons SET deleted_at = now()
		WHERE id = $1 AND deleted_at IS NULL`

	// The uses_left > 0 predicate makes the decrement conditional: two
	// concurrent checkouts racing for the last use cannot both win.
	decrementCouponUsesSQL = `UPDATE coupons SET uses_left = uses_left - 1
		WHERE code = $1 AND uses_left > 0 AND deleted_at IS NULL`

	uniqueViolationCode = "23505"
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// Create persists a new coupon. A duplicate code surfaces as
// coupon.ErrCodeExists.
func (r *CouponRepository) Create(ctx context.Context, c *coupon.Coupon) error {
	_, err := r.pool.Exec(ctx, createCouponSQL,
		c.ID, c.Code, string(c.Type), c.Discount, c.ExpirationDate,
		c.ProductID, c.Categories, c.SellerID, c.UsesLeft,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return coupon.ErrCodeExists
		}
		return fmt.Errorf("creating coupon %q: %w", c.Code, err)
	}
	return nil
}

// FindByCode looks up a live coupon by its normalized code.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, findCouponByCodeSQL, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon by code %q: %w", code, err)
	}
	return &c, nil
}

// GetByID returns one coupon, soft-deleted or not.
func (r *CouponRepository) GetByID(ctx context.Context, id string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, getCouponByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting coupon %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("getting coupon %q: %w", id, err)
	}
	return &c, nil
}

// List returns all coupons, newest first.
func (r *CouponRepository) List(ctx context.Context) ([]coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, listCouponsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing coupons: %w", err)
	}
	return pgx.CollectRows(rows, scanCoupon)
}

// Update replaces the coupon's mutable fields.
func (r *CouponRepository) Update(ctx context.Context, c *coupon.Coupon) error {
	tag, err := r.pool.Exec(ctx, updateCouponSQL,
		c.ID, c.Code, string(c.Type), c.Discount, c.ExpirationDate,
		c.ProductID, c.Categories, c.SellerID, c.UsesLeft,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return coupon.ErrCodeExists
		}
		return fmt.Errorf("updating coupon %q: %w", c.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return coupon.ErrNotFound
	}
	return nil
}

// SoftDelete stamps deleted_at once. Deleting an already-deleted coupon is
// a conflict, never a timestamp overwrite.
func (r *CouponRepository) SoftDelete(ctx context.Context, id string) (*coupon.Coupon, error) {
	tag, err := r.pool.Exec(ctx, softDeleteCouponSQL, id)
	if err != nil {
		return nil, fmt.Errorf("deleting coupon %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		c, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if c.DeletedAt != nil {
			return nil, coupon.ErrAlreadyDeleted
		}
		return nil, coupon.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var (
		c   coupon.Coupon
		typ string
	)
	err := row.Scan(
		&c.ID, &c.Code, &typ, &c.Discount, &c.ExpirationDate,
		&c.ProductID, &c.Categories, &c.SellerID, &c.UsesLeft,
		&c.DeletedAt, &c.CreatedAt,
	)
	c.Type = coupon.Type(typ)
	return c, err
}
