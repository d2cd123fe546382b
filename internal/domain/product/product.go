package product

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist or has
// been soft-deleted.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item offered by a seller. Stock is owned by
// the inventory ledger: it is mutated only through the conditional decrements
// inside the order stock-commit transaction, never by a plain
// read-modify-write.
type Product struct {
	ID          string
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
	SellerID    string
	Active      bool
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

// Repository defines persistence operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	SetActive(ctx context.Context, id string, active bool) error
}
