//go:build integration

package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a Redis container and returns a client
func setupRedis(t *testing.T) (*redis.Client, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: endpoint,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	cleanup := func() {
		client.Close()
		redisContainer.Terminate(ctx)
	}

	return client, cleanup
}

func TestRedisLimiter_Integration_Budget(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	limiter := NewRedisLimiter(redisClient, zerolog.Nop())
	ctx := context.Background()

	if limiter.TooManyAttempts(ctx, DefaultKey, 100) {
		t.Fatal("TooManyAttempts() = true on empty Redis")
	}

	for i := 0; i < 100; i++ {
		limiter.Hit(ctx, DefaultKey, 60*time.Second)
	}

	if !limiter.TooManyAttempts(ctx, DefaultKey, 100) {
		t.Error("TooManyAttempts() = false after 100 hits")
	}

	secs := Seconds(limiter.AvailableIn(ctx, DefaultKey))
	if secs <= 0 || secs > 60 {
		t.Errorf("AvailableIn() = %ds, want within (0, 60]", secs)
	}
}

func TestRedisLimiter_Integration_Rollover(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	limiter := NewRedisLimiter(redisClient, zerolog.Nop())
	ctx := context.Background()

	limiter.Hit(ctx, "short", 200*time.Millisecond)
	limiter.Hit(ctx, "short", 200*time.Millisecond)
	if got := limiter.Attempts(ctx, "short"); got != 2 {
		t.Fatalf("Attempts() = %d, want 2", got)
	}

	time.Sleep(400 * time.Millisecond)

	if got := limiter.Attempts(ctx, "short"); got != 0 {
		t.Errorf("Attempts() after rollover = %d, want 0", got)
	}
	if got := limiter.AvailableIn(ctx, "short"); got != 0 {
		t.Errorf("AvailableIn() after rollover = %v, want 0", got)
	}
}

func TestRedisLimiter_Integration_ConcurrentHits(t *testing.T) {
	redisClient, cleanup := setupRedis(t)
	defer cleanup()

	limiter := NewRedisLimiter(redisClient, zerolog.Nop())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				limiter.Hit(ctx, DefaultKey, time.Minute)
			}
		}()
	}
	wg.Wait()

	if got := limiter.Attempts(ctx, DefaultKey); got != 200 {
		t.Errorf("Attempts() = %d, want 200", got)
	}
}
