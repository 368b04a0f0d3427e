package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/DioGolang/GoTrack/internal/application/port/outbound"
	"github.com/redis/go-redis/v9"
)

// RedisAdapter backs the consumer idempotency guard. Store failures surface
// as outbound.ErrUnavailable so the delivery is requeued instead of dropped.
type RedisAdapter struct {
	client redis.UniversalClient
}

func NewRedisAdapter(c redis.UniversalClient) *RedisAdapter {
	return &RedisAdapter{client: c}
}

// SetNX claims key for the given TTL and reports whether this caller got it.
func (r *RedisAdapter) SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) (bool, error) {
	claimed, err := r.client.SetNX(ctx, key, value, expiration).Result()
	if err != nil {
		return false, fmt.Errorf("%w: claim %s: %w", outbound.ErrUnavailable, key, err)
	}
	return claimed, nil
}

func (r *RedisAdapter) Del(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: release %s: %w", outbound.ErrUnavailable, key, err)
	}
	return nil
}
