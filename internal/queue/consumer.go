package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/poker-club/internal/logging"
)

// HandlerFunc processes one decoded event.  A returned error rejects the
// message without requeueing it.
type HandlerFunc func(ctx context.Context, ev ContentChangedEvent) error

const maxBackoff = 30 * time.Second

// StartContentConsumer consumes ContentChangedQueue until ctx is done,
// reconnecting with exponential backoff whenever the broker goes away.
func StartContentConsumer(ctx context.Context, url string, handle HandlerFunc, log *logging.Logger) error {
	if log == nil {
		log = logging.Default()
	}
	log = log.With("component", "content-consumer")

	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("dial broker failed", "error", err, "retry_in", backoff.String())
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < maxBackoff {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second
		log.Info("connected to broker", "queue", ContentChangedQueue)

		err = consumeLoop(ctx, conn, handle, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("consume loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, handle HandlerFunc, log *logging.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("set qos failed", "error", err)
	}
	if _, err := DeclareContentQueue(ch); err != nil {
		return err
	}
	msgs, err := ch.Consume(ContentChangedQueue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := handleMessage(ctx, d.Body, handle); err != nil {
				log.Error("handle message failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

// DeclareContentQueue declares the durable queue; publisher and consumer
// share it.
func DeclareContentQueue(ch *amqp.Channel) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(ContentChangedQueue, true, false, false, false, nil)
	if err != nil {
		return q, fmt.Errorf("queue declare: %w", err)
	}
	return q, nil
}

func handleMessage(ctx context.Context, body []byte, handle HandlerFunc) error {
	var ev ContentChangedEvent
	if err := sonic.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.Entity == "" {
		return errors.New("event without entity")
	}
	return handle(ctx, ev)
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
