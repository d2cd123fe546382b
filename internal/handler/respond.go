package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/notification"
	"github.com/soukmarket/souk-api/internal/domain/order"
	"github.com/soukmarket/souk-api/internal/domain/payment"
	"github.com/soukmarket/souk-api/internal/domain/product"
)

// envelope is the uniform response shape for every API endpoint.
type envelope struct {
	Success bool   `json:"success"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data"`
}

func respond(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		Success: status < 400,
		Status:  status,
		Message: message,
		Data:    data,
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	respond(w, status, message, nil)
}

// respondDomainError maps domain errors to HTTP responses. Validation and
// not-found errors become client responses with their own message; anything
// unrecognized is logged and collapsed into a generic 500.
func respondDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	var (
		stockErr      *order.InsufficientStockError
		validationErr *coupon.ValidationError
	)

	switch {
	// 404
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, cart.ErrItemNotFound):
		respondError(w, http.StatusNotFound, err.Error())

	// 409
	case errors.Is(err, coupon.ErrCodeExists),
		errors.Is(err, coupon.ErrAlreadyDeleted),
		errors.Is(err, notification.ErrAlreadyDeleted):
		respondError(w, http.StatusConflict, err.Error())

	// 400: coupon management failures arrive aggregated, with every failed
	// check joined into one message.
	case errors.As(err, &validationErr):
		respondError(w, http.StatusBadRequest, validationErr.Error())

	// 400
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrStaleCartItems),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrPaymentNotConfirmed),
		errors.Is(err, coupon.ErrExpired),
		errors.Is(err, coupon.ErrExhausted),
		errors.Is(err, coupon.ErrNotApplicable),
		errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, product.ErrTitleRequired),
		errors.Is(err, product.ErrNegativePrice),
		errors.Is(err, product.ErrNegativeStock):
		respondError(w, http.StatusBadRequest, err.Error())

	case errors.As(err, &stockErr):
		respondError(w, http.StatusBadRequest, stockErr.Error())

	case errors.Is(err, payment.ErrTimeout):
		respondError(w, http.StatusGatewayTimeout, err.Error())

	case errors.Is(err, payment.ErrDeclined):
		respondError(w, http.StatusBadRequest, err.Error())

	default:
		zctx.From(ctx).Error("Unhandled error", zap.Error(err))
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}

func decodeBody(r *http.Request, dst any) error {
	defer func() { _ = r.Body.Close() }()
	return json.NewDecoder(r.Body).Decode(dst)
}
