package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walidfaroukPRO/olivegardens-backend/internal/core/domain"
)

// LoginGuard tracks failed logins per source IP in Redis, for deployments
// where lockout state must be shared across instances.
// Key format: login:fail:<source_ip>
type LoginGuard struct {
	client    *redis.Client
	threshold int
	window    time.Duration
}

func NewLoginGuard(client *redis.Client, threshold int, window time.Duration) *LoginGuard {
	return &LoginGuard{client: client, threshold: threshold, window: window}
}

func (g *LoginGuard) IsBlocked(ctx context.Context, source string) (bool, time.Duration, error) {
	key := g.key(source)

	count, err := g.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("%w: login guard read: %v", domain.ErrPersistenceUnavailable, err)
	}
	if count < g.threshold {
		return false, 0, nil
	}

	retryAfter, err := g.client.TTL(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("%w: login guard ttl: %v", domain.ErrPersistenceUnavailable, err)
	}
	if retryAfter < 0 {
		retryAfter = g.window
	}
	return true, retryAfter, nil
}

// RecordFailure atomically increments the counter and refreshes its expiry,
// so the window is always measured from the last failure. INCR makes
// concurrent failures from the same source count exactly once each.
func (g *LoginGuard) RecordFailure(ctx context.Context, source string) error {
	pipe := g.client.TxPipeline()
	pipe.Incr(ctx, g.key(source))
	pipe.Expire(ctx, g.key(source), g.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: login guard incr: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (g *LoginGuard) Reset(ctx context.Context, source string) error {
	if err := g.client.Del(ctx, g.key(source)).Err(); err != nil {
		return fmt.Errorf("%w: login guard reset: %v", domain.ErrPersistenceUnavailable, err)
	}
	return nil
}

func (g *LoginGuard) key(source string) string {
	return "login:fail:" + source
}
