package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/classroom-seating/internal/store"
)

const maxBackoff = 30 * time.Second

// Consumer moves notifications from the queue into the inbox.
type Consumer struct {
	url   string
	queue string
	inbox store.NotificationRepository
	log   *slog.Logger
}

func NewConsumer(url, queue string, inbox store.NotificationRepository, log *slog.Logger) *Consumer {
	if queue == "" {
		queue = DefaultQueue
	}
	if log == nil {
		log = slog.Default()
	}
	return &Consumer{url: url, queue: queue, inbox: inbox, log: log}
}

// Run consumes until ctx is cancelled, reconnecting with exponential
// backoff whenever the broker goes away.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(c.url)
		if err != nil {
			c.log.Warn("notification consumer: dial failed", "err", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			backoff = min(backoff*2, maxBackoff)
			continue
		}
		backoff = time.Second

		err = c.consume(ctx, conn)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.log.Warn("notification consumer: reconnecting", "err", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func (c *Consumer) consume(ctx context.Context, conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		c.log.Warn("notification consumer: set QoS failed", "err", err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare %s: %w", c.queue, err)
	}
	msgs, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}
	c.log.Info("notification consumer started", "queue", c.queue)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d)
		}
	}
}

// deliver stores one message and settles it.  Malformed messages are
// dropped; storage failures are requeued.
func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery) {
	err := c.handle(ctx, d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
	case errors.Is(err, errMalformed):
		c.log.Error("notification consumer: dropping message", "message_id", d.MessageId, "err", err)
		_ = d.Nack(false, false)
	default:
		c.log.Error("notification consumer: store failed", "message_id", d.MessageId, "err", err)
		_ = d.Nack(false, true)
	}
}

var errMalformed = errors.New("malformed notification")

// handle writes the message to the inbox.  A message id already stored
// means the broker redelivered it and is not an error.
func (c *Consumer) handle(ctx context.Context, body []byte) error {
	var ev NotificationEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	if err := ev.validate(); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	n := ev.Notification()
	if err := c.inbox.CreateNotification(ctx, &n); err != nil {
		if errors.Is(err, store.ErrConflict) {
			c.log.Debug("notification consumer: duplicate", "message_id", ev.MessageID)
			return nil
		}
		return err
	}
	return nil
}
