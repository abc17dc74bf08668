// Package queue carries user notifications over RabbitMQ: the API
// publishes them when a proposal is reviewed and a consumer writes them to
// the notification inbox.
package queue

import (
	"errors"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// DefaultQueue is used when NOTIFY_QUEUE is unset.
const DefaultQueue = "seatplan.notifications"

// NotificationEvent is the message body.  It contains everything the inbox
// needs so the consumer never reads back from the workflow tables.
type NotificationEvent struct {
	MessageID string            `json:"message_id"`
	UserID    uint64            `json:"user_id"`
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Refs      map[string]uint64 `json:"refs,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

var errIncomplete = errors.New("notification event needs message_id, user_id and kind")

func eventOf(n model.Notification) NotificationEvent {
	return NotificationEvent{
		MessageID: n.MessageID,
		UserID:    n.UserID,
		Kind:      n.Kind,
		Title:     n.Title,
		Message:   n.Message,
		Refs:      n.Refs,
		CreatedAt: n.CreatedAt,
	}
}

func (e NotificationEvent) validate() error {
	if e.MessageID == "" || e.UserID == 0 || e.Kind == "" {
		return errIncomplete
	}
	return nil
}

// Notification converts the event into an unread inbox entry.
func (e NotificationEvent) Notification() model.Notification {
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}
	return model.Notification{
		MessageID: e.MessageID,
		UserID:    e.UserID,
		Kind:      e.Kind,
		Title:     e.Title,
		Message:   e.Message,
		Refs:      e.Refs,
		CreatedAt: created,
	}
}
