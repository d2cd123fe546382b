package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/notification"
)

// Sentinel validation errors for product creation.
var (
	ErrTitleRequired = errors.New("title is required")
	ErrNegativePrice = errors.New("price must not be negative")
	ErrNegativeStock = errors.New("stock must not be negative")
)

// CreateRequest holds the input for submitting a new product.
type CreateRequest struct {
	Title       string
	Description string
	Price       decimal.Decimal
	Stock       int
}

// Service owns product submission and approval. New products start inactive
// and become visible only after an admin approves them; both steps notify
// the seller.
type Service struct {
	products Repository
	events   notification.Publisher
}

// NewService creates a product Service.
func NewService(products Repository, events notification.Publisher) *Service {
	return &Service{products: products, events: events}
}

// Create persists a new, not-yet-approved product for the seller and emits
// a NEW_PRODUCT event to them.
func (s *Service) Create(ctx context.Context, sellerID string, req CreateRequest) (*Product, error) {
	switch {
	case req.Title == "":
		return nil, ErrTitleRequired
	case req.Price.IsNegative():
		return nil, ErrNegativePrice
	case req.Stock < 0:
		return nil, ErrNegativeStock
	}

	p := &Product{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Stock:       req.Stock,
		SellerID:    sellerID,
		Active:      false,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}

	s.events.Publish(ctx, notification.Event{
		Type:        notification.EventNewProduct,
		RecipientID: sellerID,
		ProductID:   p.ID,
		ProductName: p.Title,
	})
	return p, nil
}

// Approve marks a product active and emits a PRODUCT_APPROVED event to its
// seller.
func (s *Service) Approve(ctx context.Context, id string) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.products.SetActive(ctx, id, true); err != nil {
		return nil, errors.Wrap(err, "activate product")
	}
	p.Active = true

	s.events.Publish(ctx, notification.Event{
		Type:        notification.EventProductApproved,
		RecipientID: p.SellerID,
		ProductID:   p.ID,
		ProductName: p.Title,
	})
	return p, nil
}
