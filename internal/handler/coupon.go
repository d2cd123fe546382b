package handler

import (
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/coupon"
)

type couponRequest struct {
	Code           string    `json:"code"`
	Type           string    `json:"type"`
	Discount       float64   `json:"discount"`
	ExpirationDate time.Time `json:"expirationDate"`
	ProductID      string    `json:"productId"`
	Categories     []string  `json:"categories"`
	SellerID       string    `json:"sellerId"`
	UsesLeft       int       `json:"usesLeft"`
}

func (req couponRequest) toDomain() coupon.CreateRequest {
	return coupon.CreateRequest{
		Code:           req.Code,
		Type:           coupon.Type(req.Type),
		Discount:       decimal.NewFromFloat(req.Discount),
		ExpirationDate: req.ExpirationDate,
		ProductID:      req.ProductID,
		Categories:     req.Categories,
		SellerID:       req.SellerID,
		UsesLeft:       req.UsesLeft,
	}
}

// createCoupon creates a discount code (admin only).
func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.coupons.Create(r.Context(), req.toDomain())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusCreated, "coupon created successfully", toCouponDTO(c))
}

// listCoupons returns all coupons.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	out := make([]couponDTO, len(coupons))
	for i := range coupons {
		out[i] = toCouponDTO(&coupons[i])
	}
	respond(w, http.StatusOK, "coupons retrieved successfully", out)
}

// getCoupon returns one coupon by id.
func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "coupon retrieved successfully", toCouponDTO(c))
}

// updateCoupon replaces a coupon's fields (admin only).
func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	var req couponRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.coupons.Update(r.Context(), r.PathValue("id"), req.toDomain())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "coupon updated successfully", toCouponDTO(c))
}

// deleteCoupon soft-deletes a coupon (admin only).
func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.coupons.SoftDelete(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "coupon deleted successfully", toCouponDTO(c))
}
