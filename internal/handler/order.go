package handler

import (
	"net/http"

	"github.com/soukmarket/souk-api/internal/domain/order"
)

type placeOrderRequest struct {
	CouponCode string `json:"couponCode"`
}

// placeOrder converts the caller's cart into an order, optionally applying
// a coupon code.
func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if r.ContentLength != 0 {
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	o, err := h.orders.Checkout(r.Context(), identity(r).UserID, req.CouponCode)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusCreated, "order created successfully", toOrderDTO(o))
}

// listOrders returns the caller's orders, newest first.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListForUser(r.Context(), identity(r).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	out := make([]orderDTO, len(orders))
	for i := range orders {
		out[i] = toOrderDTO(&orders[i])
	}
	respond(w, http.StatusOK, "orders retrieved successfully", out)
}

type orderIDRequest struct {
	OrderID string `json:"orderId"`
}

// simulatePayment runs the payment gateway for the order and marks it paid
// on success.
func (h *Handler) simulatePayment(w http.ResponseWriter, r *http.Request) {
	var req orderIDRequest
	if err := decodeBody(r, &req); err != nil || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "order ID is required")
		return
	}

	o, err := h.orders.ConfirmPayment(r.Context(), req.OrderID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "payment simulated successfully", toOrderDTO(o))
}

// commitStock decrements product stock for a paid order.
func (h *Handler) commitStock(w http.ResponseWriter, r *http.Request) {
	var req orderIDRequest
	if err := decodeBody(r, &req); err != nil || req.OrderID == "" {
		respondError(w, http.StatusBadRequest, "order ID is required")
		return
	}

	if err := h.orders.CommitStock(r.Context(), req.OrderID); err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "stock updated successfully after payment", nil)
}

type updateStatusRequest struct {
	NewStatus string `json:"newStatus"`
}

// updateOrderStatus moves the order to a new status (admin only).
func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := r.PathValue("orderId")

	var req updateStatusRequest
	if err := decodeBody(r, &req); err != nil || req.NewStatus == "" {
		respondError(w, http.StatusBadRequest, "order ID and new status are required")
		return
	}

	o, err := h.orders.SetStatus(r.Context(), orderID, order.Status(req.NewStatus))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "order status updated to "+req.NewStatus, toOrderDTO(o))
}
