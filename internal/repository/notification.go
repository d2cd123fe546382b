package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/soukmarket/souk-api/internal/domain/notification"
)

const (
	notificationColumns = `id, recipient_id, title, message,
		COALESCE(entity_type, ''), COALESCE(entity_id, ''),
		is_read, read_at, deleted_at, created_at`

	createNotificationSQL = `INSERT INTO notifications
		(id, recipient_id, title, message, entity_type, entity_id)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))`

	listNotificationsSQL = `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND deleted_at IS NULL AND (NOT $2::bool OR is_read = FALSE)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`

	countNotificationsSQL = `SELECT
		COUNT(*) FILTER (WHERE NOT $2::bool OR is_read = FALSE),
		COUNT(*) FILTER (WHERE is_read = FALSE)
		FROM notifications WHERE recipient_id = $1 AND deleted_at IS NULL`

	markNotificationReadSQL = `UPDATE notifications SET is_read = TRUE, read_at = now()
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL`

	markAllNotificationsReadSQL = `UPDATE notifications SET is_read = TRUE, read_at = now()
		WHERE recipient_id = $1 AND is_read = FALSE AND deleted_at IS NULL`

	softDeleteNotificationSQL = `UPDATE notifications SET deleted_at = now()
		WHERE id = $1 AND recipient_id = $2 AND deleted_at IS NULL`

	getNotificationSQL = `SELECT ` + notificationColumns + `
		FROM notifications WHERE id = $1 AND recipient_id = $2`
)

var _ notification.Repository = (*NotificationRepository)(nil)

// NotificationRepository implements notification.Repository backed by
// PostgreSQL. Every read and mutation except Create is recipient-scoped in
// the WHERE clause, so cross-user access is impossible at the storage level.
type NotificationRepository struct {
	pool *pgxpool.Pool
}

// NewNotificationRepository returns a NotificationRepository that uses the
// given pool.
func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// Create persists a notification record.
func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	_, err := r.pool.Exec(ctx, createNotificationSQL,
		n.ID, n.RecipientID, n.Title, n.Message, n.EntityType, n.EntityID,
	)
	if err != nil {
		return fmt.Errorf("creating notification %q: %w", n.ID, err)
	}
	return nil
}

// List returns a page of the recipient's live notifications, newest first,
// with pagination metadata including the unread count.
func (r *NotificationRepository) List(ctx context.Context, recipientID string, p notification.ListParams) ([]notification.Notification, notification.Page, error) {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 20
	}
	offset := (p.Page - 1) * p.Limit

	rows, err := r.pool.Query(ctx, listNotificationsSQL, recipientID, p.UnreadOnly, p.Limit, offset)
	if err != nil {
		return nil, notification.Page{}, fmt.Errorf("listing notifications: %w", err)
	}
	items, err := pgx.CollectRows(rows, scanNotification)
	if err != nil {
		return nil, notification.Page{}, fmt.Errorf("listing notifications: %w", err)
	}

	var total, unread int
	if err := r.pool.QueryRow(ctx, countNotificationsSQL, recipientID, p.UnreadOnly).Scan(&total, &unread); err != nil {
		return nil, notification.Page{}, fmt.Errorf("counting notifications: %w", err)
	}

	pages := total / p.Limit
	if total%p.Limit != 0 {
		pages++
	}
	return items, notification.Page{
		Total:       total,
		Page:        p.Page,
		Pages:       pages,
		UnreadCount: unread,
	}, nil
}

// MarkRead flags one of the recipient's notifications as read and stamps
// read_at.
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID, id string) (*notification.Notification, error) {
	tag, err := r.pool.Exec(ctx, markNotificationReadSQL, id, recipientID)
	if err != nil {
		return nil, fmt.Errorf("marking notification %q read: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return nil, notification.ErrNotFound
	}
	return r.get(ctx, recipientID, id)
}

// MarkAllRead flags all of the recipient's unread notifications as read and
// returns how many were modified.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int, error) {
	tag, err := r.pool.Exec(ctx, markAllNotificationsReadSQL, recipientID)
	if err != nil {
		return 0, fmt.Errorf("marking all notifications read: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// SoftDelete stamps deleted_at once; a second delete is a conflict.
func (r *NotificationRepository) SoftDelete(ctx context.Context, recipientID, id string) (*notification.Notification, error) {
	tag, err := r.pool.Exec(ctx, softDeleteNotificationSQL, id, recipientID)
	if err != nil {
		return nil, fmt.Errorf("deleting notification %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		n, err := r.get(ctx, recipientID, id)
		if err != nil {
			return nil, err
		}
		if n.DeletedAt != nil {
			return nil, notification.ErrAlreadyDeleted
		}
		return nil, notification.ErrNotFound
	}
	return r.get(ctx, recipientID, id)
}

func (r *NotificationRepository) get(ctx context.Context, recipientID, id string) (*notification.Notification, error) {
	rows, err := r.pool.Query(ctx, getNotificationSQL, id, recipientID)
	if err != nil {
		return nil, fmt.Errorf("getting notification %q: %w", id, err)
	}

	n, err := pgx.CollectExactlyOneRow(rows, scanNotification)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, notification.ErrNotFound
		}
		return nil, fmt.Errorf("getting notification %q: %w", id, err)
	}
	return &n, nil
}

func scanNotification(row pgx.CollectableRow) (notification.Notification, error) {
	var n notification.Notification
	err := row.Scan(
		&n.ID, &n.RecipientID, &n.Title, &n.Message,
		&n.EntityType, &n.EntityID,
		&n.IsRead, &n.ReadAt, &n.DeletedAt, &n.CreatedAt,
	)
	return n, err
}
