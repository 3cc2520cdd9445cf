package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "casnet:ratelimit:"
	redisWindow    = time.Minute
)

// RedisLimiter counts attempts per key in fixed one-minute windows shared by every instance.
type RedisLimiter struct {
	client  redis.UniversalClient
	limit   int64
	nowFunc func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter connects to addr and checks the connection.
func NewRedisLimiter(ctx context.Context, addr string, requestsPerMinute int) (*RedisLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisLimiterWithClient(client, requestsPerMinute), nil
}

func NewRedisLimiterWithClient(client redis.UniversalClient, requestsPerMinute int) *RedisLimiter {
	if requestsPerMinute < 1 {
		requestsPerMinute = 1
	}
	return &RedisLimiter{client: client, limit: int64(requestsPerMinute), nowFunc: time.Now}
}

func (rl *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	window := rl.nowFunc().Truncate(redisWindow).Unix()
	redisKey := redisKeyPrefix + key + ":" + strconv.FormatInt(window, 10)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.ExpireNX(ctx, redisKey, 2*redisWindow)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("[ratelimit Allow] %w", err)
	}
	return incr.Val() <= rl.limit, nil
}

func (rl *RedisLimiter) Close() error {
	return rl.client.Close()
}
