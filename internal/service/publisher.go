// Package service holds the side effects of admin writes: publishing
// content.changed events and keeping the public response cache fresh.
package service

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/iliyamo/poker-club/internal/queue"
)

// Publisher sends events to RabbitMQ.  It dials per publish; admin writes
// are rare enough that a pooled channel is not worth its reconnect logic.
type Publisher struct {
	url string
}

func NewPublisher(url string) *Publisher {
	return &Publisher{url: url}
}

// PublishContentChanged delivers ev to the content.changed queue as a
// persistent message.
func (p *Publisher) PublishContentChanged(ctx context.Context, ev queue.ContentChangedEvent) error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return err
	}
	defer func() { _ = ch.Close() }()

	if _, err := queue.DeclareContentQueue(ch); err != nil {
		return err
	}

	body, err := sonic.Marshal(ev)
	if err != nil {
		return err
	}
	return ch.PublishWithContext(ctx, "", queue.ContentChangedQueue, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
}
