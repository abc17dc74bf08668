package queue

import (
	"context"
	"errors"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// Direct writes notifications straight into the inbox.  It stands in for
// the broker when none is configured.
type Direct struct {
	inbox store.NotificationRepository
}

func NewDirect(inbox store.NotificationRepository) *Direct { return &Direct{inbox: inbox} }

func (d *Direct) Notify(ctx context.Context, n model.Notification) error {
	err := d.inbox.CreateNotification(ctx, &n)
	if errors.Is(err, store.ErrConflict) {
		return nil
	}
	return err
}
