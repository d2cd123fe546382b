// Package handler exposes the REST surface of the API and maps domain
// results and errors onto the response envelope.
package handler

import (
	"net/http"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/notification"
	"github.com/soukmarket/souk-api/internal/domain/order"
	"github.com/soukmarket/souk-api/internal/domain/product"
)

// Handler holds the domain services behind the REST endpoints.
type Handler struct {
	orders        *order.Service
	carts         *cart.Service
	coupons       *coupon.Service
	products      *product.Service
	catalog       product.Repository
	notifications notification.Repository
}

// NewHandler constructs a Handler with the required domain dependencies.
func NewHandler(
	orders *order.Service,
	carts *cart.Service,
	coupons *coupon.Service,
	products *product.Service,
	catalog product.Repository,
	notifications notification.Repository,
) *Handler {
	return &Handler{
		orders:        orders,
		carts:         carts,
		coupons:       coupons,
		products:      products,
		catalog:       catalog,
		notifications: notifications,
	}
}

// Register mounts every API route on the mux. sec authenticates requests;
// role-restricted routes are additionally wrapped with sec.RequireRole.
func (h *Handler) Register(mux *http.ServeMux, sec *Security) {
	authed := func(fn http.HandlerFunc) http.Handler { return sec.Authenticate(fn) }
	admin := func(fn http.HandlerFunc) http.Handler { return sec.Authenticate(sec.RequireAdmin(fn)) }

	mux.Handle("POST /api/orders", authed(h.placeOrder))
	mux.Handle("GET /api/orders", authed(h.listOrders))
	mux.Handle("POST /api/orders/simulate-payment", authed(h.simulatePayment))
	mux.Handle("PUT /api/orders", authed(h.commitStock))
	mux.Handle("PUT /api/orders/{orderId}/status", admin(h.updateOrderStatus))

	mux.Handle("POST /api/cart", authed(h.addToCart))
	mux.Handle("GET /api/cart", authed(h.getCart))
	mux.Handle("PUT /api/cart/{productId}", authed(h.updateCartItem))
	mux.Handle("DELETE /api/cart/{productId}", authed(h.removeCartItem))

	mux.Handle("POST /api/coupons", admin(h.createCoupon))
	mux.Handle("GET /api/coupons", authed(h.listCoupons))
	mux.Handle("GET /api/coupons/{id}", authed(h.getCoupon))
	mux.Handle("PUT /api/coupons/{id}", admin(h.updateCoupon))
	mux.Handle("DELETE /api/coupons/{id}", admin(h.deleteCoupon))

	mux.Handle("GET /api/notifications", authed(h.listNotifications))
	mux.Handle("PATCH /api/notifications/{id}/read", authed(h.markNotificationRead))
	mux.Handle("PATCH /api/notifications/read/all", authed(h.markAllNotificationsRead))
	mux.Handle("DELETE /api/notifications/{id}", authed(h.deleteNotification))

	mux.Handle("GET /api/products", authed(h.listProducts))
	mux.Handle("GET /api/products/{id}", authed(h.getProduct))
	mux.Handle("POST /api/products", authed(h.createProduct))
	mux.Handle("POST /api/products/{id}/approve", admin(h.approveProduct))
}
