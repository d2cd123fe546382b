package notification

import (
	"context"
	"fmt"
)

// EventType enumerates the domain events the dispatcher understands.
type EventType string

const (
	EventOrderPlaced     EventType = "ORDER_PASS"
	EventOrderUpdated    EventType = "ORDER_UPDATED"
	EventNewProduct      EventType = "NEW_PRODUCT"
	EventProductApproved EventType = "PRODUCT_APPROVED"
)

// Event is a domain occurrence fanned out to notification records. Exactly
// the fields relevant to the event type are set.
type Event struct {
	Type        EventType
	RecipientID string
	OrderID     string
	NewStatus   string
	ProductID   string
	ProductName string
}

// Publisher accepts domain events for asynchronous, best-effort delivery.
// Publish never blocks the caller on persistence and never returns delivery
// failures; producers treat it as fire-and-forget.
type Publisher interface {
	Publish(ctx context.Context, ev Event)
}

// render builds the stored notification for an event. The zero ID is filled
// in by the dispatcher.
func render(ev Event) *Notification {
	switch ev.Type {
	case EventOrderPlaced:
		return &Notification{
			RecipientID: ev.RecipientID,
			Title:       "New order placed!",
			Message:     fmt.Sprintf("Order %q has been placed.", ev.OrderID),
			EntityType:  "Order",
			EntityID:    ev.OrderID,
		}
	case EventOrderUpdated:
		return &Notification{
			RecipientID: ev.RecipientID,
			Title:       "Order status updated!",
			Message:     fmt.Sprintf("Order %q has been updated. New status: %q.", ev.OrderID, ev.NewStatus),
			EntityType:  "Order",
			EntityID:    ev.OrderID,
		}
	case EventNewProduct:
		return &Notification{
			RecipientID: ev.RecipientID,
			Title:       "New product submitted!",
			Message:     fmt.Sprintf("Product %q has been added to the shop and awaits approval.", ev.ProductName),
			EntityType:  "Product",
			EntityID:    ev.ProductID,
		}
	case EventProductApproved:
		return &Notification{
			RecipientID: ev.RecipientID,
			Title:       "Product approved!",
			Message:     fmt.Sprintf("Your product %q has been approved and is now visible in the shop.", ev.ProductName),
			EntityType:  "Product",
			EntityID:    ev.ProductID,
		}
	default:
		return nil
	}
}
