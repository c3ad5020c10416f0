package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const fingerprintTTL = 72 * time.Hour

// RedisCache keeps recently seen fingerprints in a per-session-date set so
// hot existence checks skip Postgres. Entries expire with the dedup window.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects and pings the Redis instance at addr.
func NewRedisCache(ctx context.Context, addr string) (*RedisCache, error) {
	opt, err := redis.ParseURL(addr)
	if err != nil {
		opt = &redis.Options{Addr: addr}
	}
	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

func sessionKey(sessionDate time.Time) string {
	return "newshunter:fingerprints:" + sessionDate.UTC().Format("2006-01-02")
}

// Seen reports whether the fingerprint was cached for the session date.
// Errors degrade to a miss; the store remains the source of truth.
func (c *RedisCache) Seen(ctx context.Context, fingerprint string, sessionDate time.Time) bool {
	ok, err := c.client.SIsMember(ctx, sessionKey(sessionDate), fingerprint).Result()
	if err != nil {
		return false
	}
	return ok
}

// Mark records a fingerprint for the session date. Errors are dropped; a
// lost cache entry only costs one extra Postgres roundtrip later.
func (c *RedisCache) Mark(ctx context.Context, fingerprint string, sessionDate time.Time) {
	key := sessionKey(sessionDate)
	pipe := c.client.Pipeline()
	pipe.SAdd(ctx, key, fingerprint)
	pipe.Expire(ctx, key, fingerprintTTL)
	_, _ = pipe.Exec(ctx)
}
