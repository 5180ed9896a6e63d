package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed-window counter shared by every instance.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
}

func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{client: client, limit: limit, window: window}
}

func (r *RedisRateLimiter) Allow(ctx context.Context, key string) bool {
	bucket := time.Now().UnixNano() / int64(r.window)
	redisKey := fmt.Sprintf("supportly:rl:%s:%d", key, bucket)
	var incr *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.Expire(ctx, redisKey, r.window)
		return nil
	})
	if err != nil {
		// fail open: redis trouble must not take the API down
		return true
	}
	return incr.Val() <= int64(r.limit)
}
