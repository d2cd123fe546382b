package handler

import (
	"time"

	"github.com/soukmarket/souk-api/internal/domain/cart"
	"github.com/soukmarket/souk-api/internal/domain/coupon"
	"github.com/soukmarket/souk-api/internal/domain/notification"
	"github.com/soukmarket/souk-api/internal/domain/order"
	"github.com/soukmarket/souk-api/internal/domain/product"
)

// Wire representations. Money travels as float64 in responses; exact
// decimal values stay internal.

type orderItemDTO struct {
	ProductID string  `json:"productId"`
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
	SellerID  string  `json:"sellerId"`
}

type orderDTO struct {
	ID              string         `json:"id"`
	UserID          string         `json:"userId"`
	Items           []orderItemDTO `json:"items"`
	Total           float64        `json:"total"`
	DiscountApplied float64        `json:"discountApplied"`
	CouponID        string         `json:"couponId,omitempty"`
	Status          string         `json:"status"`
	PaymentStatus   string         `json:"paymentStatus"`
	CreatedAt       time.Time      `json:"createdAt"`
}

func toOrderDTO(o *order.Order) orderDTO {
	items := make([]orderItemDTO, len(o.Items))
	for i, it := range o.Items {
		items[i] = orderItemDTO{
			ProductID: it.ProductID,
			Title:     it.Title,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
			SellerID:  it.SellerID,
		}
	}
	return orderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		Total:           o.Total.InexactFloat64(),
		DiscountApplied: o.DiscountApplied.InexactFloat64(),
		CouponID:        o.CouponID,
		Status:          string(o.Status),
		PaymentStatus:   string(o.PaymentStatus),
		CreatedAt:       o.CreatedAt,
	}
}

type cartItemDTO struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	Price     float64 `json:"price"`
}

type cartDTO struct {
	UserID string        `json:"userId"`
	Items  []cartItemDTO `json:"items"`
	Total  float64       `json:"total"`
}

func toCartDTO(c *cart.Cart) cartDTO {
	items := make([]cartItemDTO, len(c.Items))
	for i, it := range c.Items {
		items[i] = cartItemDTO{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price.InexactFloat64(),
		}
	}
	return cartDTO{UserID: c.UserID, Items: items, Total: c.Total.InexactFloat64()}
}

type couponDTO struct {
	ID             string     `json:"id"`
	Code           string     `json:"code"`
	Type           string     `json:"type"`
	Discount       float64    `json:"discount"`
	ExpirationDate time.Time  `json:"expirationDate"`
	ProductID      string     `json:"productId,omitempty"`
	Categories     []string   `json:"categories"`
	SellerID       string     `json:"sellerId"`
	UsesLeft       int        `json:"usesLeft"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

func toCouponDTO(c *coupon.Coupon) couponDTO {
	return couponDTO{
		ID:             c.ID,
		Code:           c.Code,
		Type:           string(c.Type),
		Discount:       c.Discount.InexactFloat64(),
		ExpirationDate: c.ExpirationDate,
		ProductID:      c.ProductID,
		Categories:     c.Categories,
		SellerID:       c.SellerID,
		UsesLeft:       c.UsesLeft,
		DeletedAt:      c.DeletedAt,
		CreatedAt:      c.CreatedAt,
	}
}

type notificationDTO struct {
	ID          string     `json:"id"`
	RecipientID string     `json:"recipientId"`
	Title       string     `json:"title"`
	Message     string     `json:"message"`
	EntityType  string     `json:"entityType,omitempty"`
	EntityID    string     `json:"entityId,omitempty"`
	IsRead      bool       `json:"isRead"`
	ReadAt      *time.Time `json:"readAt,omitempty"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toNotificationDTO(n *notification.Notification) notificationDTO {
	return notificationDTO{
		ID:          n.ID,
		RecipientID: n.RecipientID,
		Title:       n.Title,
		Message:     n.Message,
		EntityType:  n.EntityType,
		EntityID:    n.EntityID,
		IsRead:      n.IsRead,
		ReadAt:      n.ReadAt,
		DeletedAt:   n.DeletedAt,
		CreatedAt:   n.CreatedAt,
	}
}

type productDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	SellerID    string    `json:"sellerId"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toProductDTO(p *product.Product) productDTO {
	return productDTO{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		SellerID:    p.SellerID,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
	}
}
