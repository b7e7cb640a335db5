package service

import (
	"context"
	"time"

	"github.com/iliyamo/poker-club/internal/cache"
	"github.com/iliyamo/poker-club/internal/logging"
	"github.com/iliyamo/poker-club/internal/queue"
)

// EventPublisher is satisfied by *Publisher.
type EventPublisher interface {
	PublishContentChanged(ctx context.Context, ev queue.ContentChangedEvent) error
}

// Purger is satisfied by *cache.Invalidator.
type Purger interface {
	Purge(ctx context.Context, entity string) (int64, error)
}

// ContentNotifier reports admin writes.  With a publisher the consumer
// purges the cache asynchronously; without one, or when publishing fails,
// the purge runs inline.  Failures are logged and never reach the caller.
type ContentNotifier struct {
	pub    EventPublisher
	purger Purger
	log    *logging.Logger
	now    func() time.Time
}

// NewContentNotifier accepts nil for either dependency.
func NewContentNotifier(pub EventPublisher, purger Purger, log *logging.Logger) *ContentNotifier {
	if log == nil {
		log = logging.Default()
	}
	return &ContentNotifier{pub: pub, purger: purger, log: log, now: time.Now}
}

// Changed records that id of entity was created, updated or deleted.
func (n *ContentNotifier) Changed(ctx context.Context, entity, action string, id uint64) {
	if n == nil {
		return
	}
	ev := queue.ContentChangedEvent{Entity: entity, Action: action, ID: id, ChangedAt: n.now().UTC()}

	// The request context may already be near its deadline.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()

	if n.pub != nil {
		err := n.pub.PublishContentChanged(ctx, ev)
		if err == nil {
			return
		}
		n.log.Warn("publish content.changed failed, purging inline", "entity", entity, "action", action, "id", id, "error", err)
	}
	n.Apply(ctx, ev)
}

// Apply purges the cache for ev.  It is the consumer's handler.
func (n *ContentNotifier) Apply(ctx context.Context, ev queue.ContentChangedEvent) error {
	if n == nil || n.purger == nil {
		return nil
	}
	if _, err := n.purger.Purge(ctx, ev.Entity); err != nil {
		n.log.Error("cache purge failed", "entity", ev.Entity, "error", err)
		return err
	}
	return nil
}

var _ Purger = (*cache.Invalidator)(nil)
