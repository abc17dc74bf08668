package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Publisher sends notifications to a durable queue.  It dials the broker
// for each message; reviews are rare enough that a pooled connection is
// not worth its reconnect handling.
type Publisher struct {
	url   string
	queue string
	log   *slog.Logger
}

func NewPublisher(url, queue string, log *slog.Logger) *Publisher {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{url: url, queue: queue, log: log}
}

// publishing encodes n as a persistent JSON message.  A missing message id
// is generated so the consumer can deduplicate redeliveries.
func publishing(n model.Notification) (amqp.Publishing, error) {
	if n.MessageID == "" {
		n.MessageID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	body, err := json.Marshal(eventOf(n))
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("marshal notification: %w", err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    n.MessageID,
		Timestamp:    n.CreatedAt,
		Type:         n.Kind,
		Body:         body,
	}, nil
}

// Notify publishes n.  Errors are logged and returned; callers treat them
// as non-fatal.
func (p *Publisher) Notify(ctx context.Context, n model.Notification) error {
	msg, err := publishing(n)
	if err != nil {
		return err
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		p.log.Warn("rabbitmq dial failed", "err", err)
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", p.queue, err)
	}
	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, msg); err != nil {
		p.log.Warn("rabbitmq publish failed", "queue", p.queue, "err", err)
		return fmt.Errorf("publish: %w", err)
	}
	p.log.Debug("notification published", "message_id", msg.MessageId, "user_id", n.UserID, "kind", n.Kind)
	return nil
}
