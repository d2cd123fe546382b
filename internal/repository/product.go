package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukmarket/souk-api/internal/domain/product"
)

const (
	listProductsSQL = `SELECT id, title, description, price, stock, seller_id, active, deleted_at, created_at
		FROM products WHERE deleted_at IS NULL ORDER BY created_at DESC`

	getProductByIDSQL = `SELECT id, title, description, price, stock, seller_id, active, deleted_at, created_at
		FROM products WHERE id = $1 AND deleted_at IS NULL`

	getProductsByIDsSQL = `SELECT id, title, description, price, stock, seller_id, active, deleted_at, created_at
		FROM products WHERE id = ANY($1) AND deleted_at IS NULL`

	createProductSQL = `INSERT INTO products (id, title, description, price, stock, seller_id, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	setProductActiveSQL = `UPDATE products SET active = $2 WHERE id = $1 AND deleted_at IS NULL`

	// Applied per order line inside the stock-commit transaction; the
	// stock >= qty predicate keeps the counter from going negative.
	decrementStockSQL = `UPDATE products SET stock = stock - $2
		WHERE id = $1 AND stock >= $2 AND deleted_at IS NULL`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all live products, newest first.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single live product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetByIDs returns live products matching any of the given IDs.
func (r *ProductRepository) GetByIDs(ctx context.Context, ids []string) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductsByIDsSQL, ids)
	if err != nil {
		return nil, fmt.Errorf("getting products by ids: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.pool.Exec(ctx, createProductSQL,
		p.ID, p.Title, p.Description, p.Price, p.Stock, p.SellerID, p.Active,
	)
	if err != nil {
		return fmt.Errorf("creating product %q: %w", p.ID, err)
	}
	return nil
}

// SetActive flips the product's visibility flag.
func (r *ProductRepository) SetActive(ctx context.Context, id string, active bool) error {
	tag, err := r.pool.Exec(ctx, setProductActiveSQL, id, active)
	if err != nil {
		return fmt.Errorf("activating product %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrNotFound
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Price, &p.Stock,
		&p.SellerID, &p.Active, &p.DeletedAt, &p.CreatedAt,
	)
	return p, err
}
