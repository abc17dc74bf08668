package repository

import (
	"context"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// NotificationRepo is the inbox filled by the notification consumer.
type NotificationRepo struct {
	db DBTX
}

func NewNotificationRepo(db DBTX) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateNotification inserts n.  The unique message_id turns redelivered
// messages into store.ErrConflict.
func (r *NotificationRepo) CreateNotification(ctx context.Context, n *model.Notification) error {
	var refs []byte
	if len(n.Refs) > 0 {
		var err error
		if refs, err = toJSON(n.Refs); err != nil {
			return err
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now()
	}
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO notifications (message_id, user_id, kind, title, message, refs, created_at) VALUES (?,?,?,?,?,?,?)",
		n.MessageID, n.UserID, n.Kind, n.Title, n.Message, refs, n.CreatedAt)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListNotifications returns the user's latest notifications first.
func (r *NotificationRepo) ListNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, message_id, user_id, kind, title, message, refs, is_read, created_at FROM notifications WHERE user_id=? ORDER BY id DESC LIMIT ?",
		userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var (
			n    model.Notification
			refs []byte
		)
		if err := rows.Scan(&n.ID, &n.MessageID, &n.UserID, &n.Kind, &n.Title, &n.Message, &refs, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		if err := fromJSON(refs, &n.Refs); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
