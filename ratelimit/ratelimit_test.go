package ratelimit_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/casnet-auth/ratelimit"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestMemoryLimiter(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter := ratelimit.NewMemoryLimiter(60, 3, ratelimit.WithNowFunc(func() time.Time { return now }))

	t.Run("burst then throttled", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			ok, err := limiter.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.True(t, ok, "attempt %d", i)
		}
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("keys are independent", func(t *testing.T) {
		ok, err := limiter.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("tokens refill over time", func(t *testing.T) {
		now = now.Add(time.Second)
		ok, err := limiter.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("idle buckets are evicted and start full", func(t *testing.T) {
		now = now.Add(time.Hour)
		for i := 0; i < 3; i++ {
			ok, err := limiter.Allow(ctx, "10.0.0.1")
			require.NoError(t, err)
			require.True(t, ok)
		}
	})
}

// setupRedis returns the address of a Redis server, from REDIS_ADDR or a throwaway container.
func setupRedis(t *testing.T) string {
	t.Helper()
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		return addr
	}
	if os.Getenv("SKIP_INTEGRATION") == "true" || testing.Short() {
		t.Skip("skipping Redis integration tests")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("skipping: could not start Redis container: %v", err)
	}
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)
	return endpoint
}

func TestRedisLimiter(t *testing.T) {
	addr := setupRedis(t)
	ctx := context.Background()

	limiter, err := ratelimit.NewRedisLimiter(ctx, addr, 2)
	require.NoError(t, err)
	t.Cleanup(func() { _ = limiter.Close() })

	key := fmt.Sprintf("test-%s", uuid.NewString())
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		require.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = limiter.Allow(ctx, key+"-other")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestNewRedisLimiter_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := ratelimit.NewRedisLimiter(ctx, "127.0.0.1:1", 10)
	require.Error(t, err)
}
