// Package cache owns the Redis keyspace of cached public API responses.
// Keys are laid out as <prefix>:<entity>:<digest> so that every response
// derived from one entity can be dropped with a single pattern scan.
package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/poker-club/internal/logging"
)

// Entities whose public responses are cached.
const (
	Tournaments = "tournaments"
	Structures  = "structures"
	CashGames   = "cash-games"
	Banners     = "banners"
	News        = "news"
	Gallery     = "gallery"
	Players     = "players"
)

// dependents lists the extra namespaces a change invalidates.  Tournament
// detail responses embed their structure's levels.
var dependents = map[string][]string{
	Structures: {Tournaments},
}

// Key returns the Redis key of one cached response.
func Key(prefix, entity, digest string) string {
	return fmt.Sprintf("%s:%s:%s", prefix, entity, digest)
}

// Pattern matches every cached response of entity.
func Pattern(prefix, entity string) string {
	return fmt.Sprintf("%s:%s:*", prefix, entity)
}

// Namespaces returns entity followed by its dependents.
func Namespaces(entity string) []string {
	return append([]string{entity}, dependents[entity]...)
}

// Invalidator drops cached responses after content changes.
type Invalidator struct {
	rdb    *redis.Client
	prefix string
	log    *logging.Logger
}

// NewInvalidator returns nil when rdb is nil; a nil Invalidator is a no-op.
func NewInvalidator(rdb *redis.Client, prefix string, log *logging.Logger) *Invalidator {
	if rdb == nil {
		return nil
	}
	if log == nil {
		log = logging.Default()
	}
	return &Invalidator{rdb: rdb, prefix: prefix, log: log}
}

// Purge deletes every cached response for entity and its dependents and
// returns how many keys went away.
func (i *Invalidator) Purge(ctx context.Context, entity string) (int64, error) {
	if i == nil {
		return 0, nil
	}
	var removed int64
	for _, ns := range Namespaces(entity) {
		n, err := i.purgePattern(ctx, Pattern(i.prefix, ns))
		removed += n
		if err != nil {
			return removed, fmt.Errorf("purge %s: %w", ns, err)
		}
	}
	i.log.Debug("cache purged", "entity", entity, "keys", removed)
	return removed, nil
}

func (i *Invalidator) purgePattern(ctx context.Context, pattern string) (int64, error) {
	var (
		cursor  uint64
		removed int64
	)
	for {
		keys, next, err := i.rdb.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return removed, err
		}
		if len(keys) > 0 {
			n, err := i.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, err
			}
			removed += n
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
