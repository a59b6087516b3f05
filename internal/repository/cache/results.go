package cache

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ResultCache remembers run summaries keyed by the checksums of both
// input sheets. A hit means the exact same pair was already processed;
// the run still executes (outputs may live elsewhere) but the record
// is flagged, which is how operators spot double submissions.
type ResultCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResultCache(client *redis.Client, ttl time.Duration) *ResultCache {
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return &ResultCache{client: client, ttl: ttl}
}

func Key(submissionSHA256, collectedSHA256 string) string {
	return "alloc:run:" + submissionSHA256 + ":" + collectedSHA256
}

func (c *ResultCache) Get(ctx context.Context, key string) (string, bool) {
	if c == nil || c.client == nil {
		return "", false
	}
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Printf("[CACHE][ERR] get %q: %v", key, err)
		}
		return "", false
	}
	return val, true
}

func (c *ResultCache) Set(ctx context.Context, key, value string) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, key, value, c.ttl).Err()
}
