package handler

import (
	"net/http"
)

type addToCartRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// addToCart puts a product into the caller's cart, creating the cart on
// first use.
func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	var req addToCartRequest
	if err := decodeBody(r, &req); err != nil || req.ProductID == "" {
		respondError(w, http.StatusBadRequest, "product ID and quantity are required")
		return
	}

	c, err := h.carts.Add(r.Context(), identity(r).UserID, req.ProductID, req.Quantity)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "product added to cart successfully", toCartDTO(c))
}

// getCart returns the caller's cart.
func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.Get(r.Context(), identity(r).UserID)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "cart retrieved successfully", toCartDTO(c))
}

type updateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// updateCartItem replaces the quantity of one cart line.
func (h *Handler) updateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateCartItemRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "quantity is required")
		return
	}

	c, err := h.carts.UpdateItem(r.Context(), identity(r).UserID, r.PathValue("productId"), req.Quantity)
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "cart item updated successfully", toCartDTO(c))
}

// removeCartItem deletes one line from the caller's cart.
func (h *Handler) removeCartItem(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveItem(r.Context(), identity(r).UserID, r.PathValue("productId"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "cart item removed successfully", toCartDTO(c))
}
