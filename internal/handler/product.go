package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/soukmarket/souk-api/internal/domain/product"
)

// listProducts returns the full catalog.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}

	out := make([]productDTO, len(products))
	for i := range products {
		out[i] = toProductDTO(&products[i])
	}
	respond(w, http.StatusOK, "products retrieved successfully", out)
}

// getProduct returns one product by id.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "product retrieved successfully", toProductDTO(p))
}

type createProductRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// createProduct submits a new product for the calling seller. The product
// stays inactive until an admin approves it.
func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	p, err := h.products.Create(r.Context(), identity(r).UserID, product.CreateRequest{
		Title:       req.Title,
		Description: req.Description,
		Price:       decimal.NewFromFloat(req.Price),
		Stock:       req.Stock,
	})
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusCreated, "product created successfully", toProductDTO(p))
}

// approveProduct activates a pending product (admin only).
func (h *Handler) approveProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.products.Approve(r.Context(), r.PathValue("id"))
	if err != nil {
		respondDomainError(r.Context(), w, err)
		return
	}
	respond(w, http.StatusOK, "product approved successfully", toProductDTO(p))
}
