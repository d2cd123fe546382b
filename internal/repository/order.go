package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/order"
)

const (
	orderColumns = `id, user_id, items, total, discount_applied,
		COALESCE(coupon_id, ''), status, payment_status, created_at`

	createOrderSQL = `INSERT INTO orders
		(id, user_id, items, total, discount_applied, coupon_id, status, payment_status)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8)`

	getOrderByIDSQL = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	listOrdersForUserSQL = `SELECT ` + orderColumns + `
		FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	updateOrderStatusSQL = `UPDATE orders SET status = $2 WHERE id = $1`

	markOrderPaidSQL = `UPDATE orders SET status = 'paid', payment_status = 'paid' WHERE id = $1`

	clearCartSQL = `UPDATE carts SET items = '[]', total = 0, updated_at = now()
		WHERE user_id = $1`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// FinalizeCheckout persists the order, spends one coupon use, and empties
// the user's cart in a single transaction. The coupon decrement carries a
// uses_left > 0 predicate; losing that race rolls the whole checkout back
// with coupon.ErrExhausted, so an order is never created against a spent
// coupon and a coupon use is never charged for an order that failed to save.
func (r *OrderRepository) FinalizeCheckout(ctx context.Context, o *order.Order, couponCode string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning checkout transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, createOrderSQL,
		o.ID, o.UserID, encodeOrderItems(o.Items), o.Total, o.DiscountApplied,
		o.CouponID, string(o.Status), string(o.PaymentStatus),
	)
	if err != nil {
		return fmt.Errorf("creating order %q: %w", o.ID, err)
	}

	if couponCode != "" {
		tag, err := tx.Exec(ctx, decrementCouponUsesSQL, couponCode)
		if err != nil {
			return fmt.Errorf("decrementing uses for coupon %q: %w", couponCode, err)
		}
		if tag.RowsAffected() == 0 {
			return coupon.ErrExhausted
		}
	}

	if _, err := tx.Exec(ctx, clearCartSQL, o.UserID); err != nil {
		return fmt.Errorf("clearing cart for user %q: %w", o.UserID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing checkout for order %q: %w", o.ID, err)
	}
	return nil
}

// GetByID returns one order.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, fmt.Errorf("getting order %q: %w", id, err)
	}
	return &o, nil
}

// ListForUser returns the user's orders, newest first.
func (r *OrderRepository) ListForUser(ctx context.Context, userID string) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersForUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing orders for user %q: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanOrder)
}

// UpdateStatus writes the new status.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, st order.Status) error {
	tag, err := r.pool.Exec(ctx, updateOrderStatusSQL, id, string(st))
	if err != nil {
		return fmt.Errorf("updating status for order %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// MarkPaid sets status and payment_status to paid in one write.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, markOrderPaidSQL, id)
	if err != nil {
		return fmt.Errorf("marking order %q paid: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrNotFound
	}
	return nil
}

// CommitStock decrements stock for every order line inside one transaction.
// Each UPDATE carries a stock >= quantity predicate; the first line that
// cannot be covered aborts with *order.InsufficientStockError and rolls back
// the decrements already applied in this call.
func (r *OrderRepository) CommitStock(ctx context.Context, o *order.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning stock transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, it := range o.Items {
		tag, err := tx.Exec(ctx, decrementStockSQL, it.ProductID, it.Quantity)
		if err != nil {
			return fmt.Errorf("decrementing stock for product %q: %w", it.ProductID, err)
		}
		if tag.RowsAffected() == 0 {
			return &order.InsufficientStockError{
				ProductID:    it.ProductID,
				ProductTitle: it.Title,
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing stock for order %q: %w", o.ID, err)
	}
	return nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o             order.Order
		items         []byte
		status        string
		paymentStatus string
	)
	if err := row.Scan(
		&o.ID, &o.UserID, &items, &o.Total, &o.DiscountApplied,
		&o.CouponID, &status, &paymentStatus, &o.CreatedAt,
	); err != nil {
		return o, err
	}
	o.Status = order.Status(status)
	o.PaymentStatus = order.PaymentStatus(paymentStatus)

	decoded, err := decodeOrderItems(items)
	if err != nil {
		return o, fmt.Errorf("decoding order items: %w", err)
	}
	o.Items = decoded
	return o, nil
}
