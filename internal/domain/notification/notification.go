// Package notification turns domain events into persisted, per-recipient
// notification records and exposes the recipient-scoped read side.
package notification

import (
	"context"
	"time"

	"github.com/go-faster/errors"
)

var (
	// ErrNotFound is returned when a notification does not exist or belongs
	// to a different recipient.
	ErrNotFound = errors.New("notification not found")
	// ErrAlreadyDeleted is returned when soft-deleting a notification that
	// already carries a deletion timestamp.
	ErrAlreadyDeleted = errors.New("notification already deleted")
)

// Notification is a persisted message addressed to a single recipient.
type Notification struct {
	ID          string
	RecipientID string
	Title       string
	Message     string
	EntityType  string
	EntityID    string
	IsRead      bool
	ReadAt      *time.Time
	DeletedAt   *time.Time
	CreatedAt   time.Time
}

// Page holds pagination metadata returned alongside a notification list.
type Page struct {
	Total       int
	Page        int
	Pages       int
	UnreadCount int
}

// ListParams controls the recipient-scoped notification listing.
type ListParams struct {
	Page       int
	Limit      int
	UnreadOnly bool
}

// Repository defines persistence operations for notifications. All read and
// mutate operations except Create are scoped to a recipient: a caller can
// never touch another user's notifications.
type Repository interface {
	Create(ctx context.Context, n *Notification) error
	List(ctx context.Context, recipientID string, p ListParams) ([]Notification, Page, error)
	MarkRead(ctx context.Context, recipientID, id string) (*Notification, error)
	MarkAllRead(ctx context.Context, recipientID string) (int, error)
	SoftDelete(ctx context.Context, recipientID, id string) (*Notification, error)
}
