// Package ratelimit throttles login attempts per client key.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter decides whether another attempt for key may proceed now.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

const idleEviction = 10 * time.Minute

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter keeps one token bucket per key in process memory. It is the right choice for a
// single instance; replicas behind a load balancer should share a RedisLimiter.
type MemoryLimiter struct {
	lock      sync.Mutex
	buckets   map[string]*bucket
	limit     rate.Limit
	burst     int
	lastSweep time.Time
	nowFunc   func() time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

type MemoryOption func(*MemoryLimiter)

func WithNowFunc(now func() time.Time) MemoryOption {
	return func(ml *MemoryLimiter) {
		ml.nowFunc = now
	}
}

// NewMemoryLimiter allows requestsPerMinute sustained attempts per key with bursts of up to burst.
func NewMemoryLimiter(requestsPerMinute, burst int, options ...MemoryOption) *MemoryLimiter {
	if burst < 1 {
		burst = 1
	}
	ml := &MemoryLimiter{
		buckets: make(map[string]*bucket),
		limit:   rate.Limit(float64(requestsPerMinute) / 60),
		burst:   burst,
		nowFunc: time.Now,
	}
	for _, opt := range options {
		opt(ml)
	}
	ml.lastSweep = ml.nowFunc()
	return ml
}

func (ml *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	ml.lock.Lock()
	defer ml.lock.Unlock()

	now := ml.nowFunc()
	ml.sweep(now)

	b, ok := ml.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(ml.limit, ml.burst)}
		ml.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1), nil
}

// sweep drops buckets idle for longer than idleEviction. A dropped bucket would be full again anyway.
func (ml *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(ml.lastSweep) < idleEviction {
		return
	}
	for key, b := range ml.buckets {
		if now.Sub(b.lastSeen) > idleEviction {
			delete(ml.buckets, key)
		}
	}
	ml.lastSweep = now
}
