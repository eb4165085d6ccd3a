//go:build integration

package cache

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	endpoint, err := redisContainer.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("Failed to get Redis endpoint: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() {
		client.Close()
		redisContainer.Terminate(ctx)
	})

	return client
}

func TestRedisStore_Integration_ReadThrough(t *testing.T) {
	client := setupRedisContainer(t)
	rt := NewReadThrough(NewRedisStore(client), zerolog.Nop())
	ctx := context.Background()

	calls := 0
	load := func(ctx context.Context) (*CacheEntry, error) {
		calls++
		return &CacheEntry{Data: []byte(`{"id":9}`), StatusCode: http.StatusOK}, nil
	}

	for i := 0; i < 3; i++ {
		if _, err := rt.GetOrFetch(ctx, ItemKey(9), time.Minute, load); err != nil {
			t.Fatalf("GetOrFetch() error = %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("loader calls = %d, want 1", calls)
	}

	ttl, err := client.TTL(ctx, ItemKey(9).String()).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("Redis TTL = %v, want within (0, 1m]", ttl)
	}
}

func TestRedisStore_Integration_DeleteAllManyKeys(t *testing.T) {
	client := setupRedisContainer(t)
	store := NewRedisStore(client)
	ctx := context.Background()

	expires := time.Now().Add(time.Minute)
	for i := 0; i < 3*scanBatch+7; i++ {
		if err := store.Set(ctx, ItemKey(i), &CacheEntry{Expires: expires}); err != nil {
			t.Fatalf("Set(%d) error = %v", i, err)
		}
	}

	if err := store.DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll() error = %v", err)
	}

	keys, err := client.Keys(ctx, KeyPrefix+":*").Result()
	if err != nil {
		t.Fatalf("Keys() error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("%d keys left after DeleteAll: %v", len(keys), fmt.Sprint(keys[:1]))
	}

	if _, err := store.Get(ctx, ItemKey(0)); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("Get() error = %v, want ErrCacheMiss", err)
	}
}
