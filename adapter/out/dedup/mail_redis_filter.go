// Package dedup implements the optional Redis fast path in front of the
// store existence lookup.
package dedup

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "mailclass:seen:"

// Filter implements out.DedupFilter with SETNX and a TTL. Expiry makes a
// stale positive fall through to the authoritative store lookup rather than
// dropping mail.
type Filter struct {
	client *redis.Client
	ttl    time.Duration
	log    zerolog.Logger
}

// NewFilter builds a Filter from a Redis URL.
func NewFilter(redisURL string, ttl time.Duration) (*Filter, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Filter{
		client: redis.NewClient(opt),
		ttl:    ttl,
		log:    log.With().Str("component", "dedup").Logger(),
	}, nil
}

// IsNew implements out.DedupFilter. SetNX marks the id seen atomically; a
// false return means some earlier run already marked it.
func (f *Filter) IsNew(ctx context.Context, externalID string) (bool, error) {
	ok, err := f.client.SetNX(ctx, keyPrefix+externalID, 1, f.ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// Forget implements out.DedupFilter. Deleting the key undoes an IsNew mark
// whose Phase-1 create did not go through.
func (f *Filter) Forget(ctx context.Context, externalID string) error {
	return f.client.Del(ctx, keyPrefix+externalID).Err()
}

// Ping verifies connectivity, for health checks.
func (f *Filter) Ping(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

// Close releases the client.
func (f *Filter) Close() error {
	return f.client.Close()
}
