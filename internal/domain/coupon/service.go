package coupon

import (
	"context"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest holds the input for creating or updating a coupon.
type CreateRequest struct {
	Code           string
	Type           Type
	Discount       decimal.Decimal
	ExpirationDate time.Time
	ProductID      string
	Categories     []string
	SellerID       string
	UsesLeft       int
}

// Sentinel validation errors for coupon management.
var (
	ErrCodeRequired    = errors.New("coupon code is required")
	ErrInvalidType     = errors.New("coupon type must be percentage or fixed")
	ErrInvalidDiscount = errors.New("discount must be greater than 0")
	ErrInvalidUsesLeft = errors.New("uses left cannot be negative")
	ErrSellerRequired  = errors.New("seller is required")
	ErrExpDateRequired = errors.New("expiration date is required")
)

// Service owns the coupon management CRUD. Checkout-time validation and the
// uses_left decrement live in the order checkout path, not here.
type Service struct {
	coupons Repository
}

// NewService creates a coupon Service.
func NewService(coupons Repository) *Service {
	return &Service{coupons: coupons}
}

// ValidationError aggregates every failed check on a CreateRequest, so one
// round trip reports all of them. errors.Is still matches the individual
// sentinels through Unwrap.
type ValidationError struct {
	Errs []error
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error { return e.Errs }

func validate(req CreateRequest) error {
	var errs []error
	if NormalizeCode(req.Code) == "" {
		errs = append(errs, ErrCodeRequired)
	}
	if req.Type != TypePercentage && req.Type != TypeFixed {
		errs = append(errs, ErrInvalidType)
	}
	switch {
	case !req.Discount.IsPositive():
		errs = append(errs, ErrInvalidDiscount)
	case req.Type == TypePercentage && req.Discount.GreaterThan(hundred):
		errs = append(errs, ErrInvalidPercentage)
	}
	if req.ExpirationDate.IsZero() {
		errs = append(errs, ErrExpDateRequired)
	}
	if req.SellerID == "" {
		errs = append(errs, ErrSellerRequired)
	}
	if req.UsesLeft < 0 {
		errs = append(errs, ErrInvalidUsesLeft)
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Errs: errs}
}

// Create validates and persists a new coupon. Codes are stored
// upper-normalized; duplicates surface as ErrCodeExists.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Coupon, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	c := &Coupon{
		ID:             uuid.New().String(),
		Code:           NormalizeCode(req.Code),
		Type:           req.Type,
		Discount:       req.Discount,
		ExpirationDate: req.ExpirationDate,
		ProductID:      req.ProductID,
		Categories:     req.Categories,
		SellerID:       req.SellerID,
		UsesLeft:       req.UsesLeft,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetByID returns one coupon.
func (s *Service) GetByID(ctx context.Context, id string) (*Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

// List returns all coupons, including soft-deleted ones.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.coupons.List(ctx)
}

// Update replaces the coupon's mutable fields. UsesLeft can be edited here
// but never below zero (validated); the checkout decrement path is separate.
func (s *Service) Update(ctx context.Context, id string, req CreateRequest) (*Coupon, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Code = NormalizeCode(req.Code)
	c.Type = req.Type
	c.Discount = req.Discount
	c.ExpirationDate = req.ExpirationDate
	c.ProductID = req.ProductID
	c.Categories = req.Categories
	c.SellerID = req.SellerID
	c.UsesLeft = req.UsesLeft

	if err := s.coupons.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SoftDelete stamps the coupon deleted. Deleting twice is a conflict, not a
// silent success.
func (s *Service) SoftDelete(ctx context.Context, id string) (*Coupon, error) {
	return s.coupons.SoftDelete(ctx, id)
}
