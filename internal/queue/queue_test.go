package queue

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository/memory"
)

type ackRecorder struct {
	acked, nacked, requeued int
}

func (a *ackRecorder) Ack(uint64, bool) error { a.acked++; return nil }

func (a *ackRecorder) Nack(_ uint64, _ bool, requeue bool) error {
	a.nacked++
	if requeue {
		a.requeued++
	}
	return nil
}

func (a *ackRecorder) Reject(_ uint64, requeue bool) error { return a.Nack(0, false, requeue) }

func approved() model.Notification {
	return model.Notification{
		MessageID: "9b2f3c1e",
		UserID:    20,
		Kind:      model.NotifyProposalApproved,
		Title:     "Seating proposal approved",
		Message:   "Your seating plan was approved.",
		Refs:      map[string]uint64{"proposal_id": 5, "sub_room_id": 9},
		CreatedAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
}

func TestPublishing(t *testing.T) {
	msg, err := publishing(approved())
	require.NoError(t, err)
	assert.Equal(t, "9b2f3c1e", msg.MessageId)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, "application/json", msg.ContentType)

	var ev NotificationEvent
	require.NoError(t, json.Unmarshal(msg.Body, &ev))
	assert.Equal(t, uint64(20), ev.UserID)
	assert.Equal(t, uint64(9), ev.Refs["sub_room_id"])
}

func TestPublishing_GeneratesMessageID(t *testing.T) {
	n := approved()
	n.MessageID = ""
	msg, err := publishing(n)
	require.NoError(t, err)
	assert.NotEmpty(t, msg.MessageId)
}

func TestConsumer_DeliverStoresOnce(t *testing.T) {
	st := memory.New()
	c := NewConsumer("", "", st.Notifications(), nil)
	msg, err := publishing(approved())
	require.NoError(t, err)

	ack := &ackRecorder{}
	for range 2 {
		c.deliver(context.Background(), amqp.Delivery{Acknowledger: ack, Body: msg.Body, MessageId: msg.MessageId})
	}
	assert.Equal(t, 2, ack.acked)
	assert.Zero(t, ack.nacked)

	inbox, err := st.Notifications().ListNotifications(context.Background(), 20, 10)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Seating proposal approved", inbox[0].Title)
	assert.False(t, inbox[0].IsRead)
}

func TestConsumer_DropsMalformed(t *testing.T) {
	c := NewConsumer("", "", memory.New().Notifications(), nil)
	ack := &ackRecorder{}

	c.deliver(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")})
	c.deliver(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte(`{"user_id":20}`)})

	assert.Equal(t, 2, ack.nacked)
	assert.Zero(t, ack.requeued)
	assert.Zero(t, ack.acked)
}

func TestDirect(t *testing.T) {
	st := memory.New()
	d := NewDirect(st.Notifications())
	require.NoError(t, d.Notify(context.Background(), approved()))
	require.NoError(t, d.Notify(context.Background(), approved()))

	inbox, err := st.Notifications().ListNotifications(context.Background(), 20, 0)
	require.NoError(t, err)
	assert.Len(t, inbox, 1)
}
