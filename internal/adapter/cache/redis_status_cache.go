package cache

import (
	"context"
	"time"

	"github.com/carloscruz65/domrealce-site-sub000/internal/usecase"
	"github.com/redis/go-redis/v9"
)

// RedisStatusCache holds the gateway's last answer for a payment request
// id for a few seconds, so two tabs polling the same payment hit the
// gateway once.
type RedisStatusCache struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStatusCache(rdb *redis.Client, ttl time.Duration) *RedisStatusCache {
	return &RedisStatusCache{rdb: rdb, ttl: ttl}
}

func (r *RedisStatusCache) SetStatus(ctx context.Context, requestID, status string) error {
	return r.rdb.Set(ctx, "payment:status:"+requestID, status, r.ttl).Err()
}

func (r *RedisStatusCache) GetStatus(ctx context.Context, requestID string) (string, bool, error) {
	val, err := r.rdb.Get(ctx, "payment:status:"+requestID).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.StatusCache = (*RedisStatusCache)(nil)
