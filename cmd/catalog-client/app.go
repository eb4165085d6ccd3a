package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/Sternrassler/catalog-client/internal/config"
	"github.com/Sternrassler/catalog-client/internal/storage"
	"github.com/Sternrassler/catalog-client/pkg/cache"
	"github.com/Sternrassler/catalog-client/pkg/client"
	"github.com/Sternrassler/catalog-client/pkg/favorites"
	"github.com/Sternrassler/catalog-client/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// app holds the wired components for one command run.
type app struct {
	cfg     config.Config
	logger  zerolog.Logger
	redis   *redis.Client // nil when state is kept in memory
	catalog *client.Client
	db      *gorm.DB // opened by openFavorites
}

// buildApp wires the catalog client. With a Redis address the rate limit
// budget and the cache are shared, otherwise both live in process memory.
func buildApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	var (
		limiter ratelimit.Limiter
		store   cache.Store
	)
	if cfg.Redis.Addr != "" {
		rdb, err := newRedisClient(cfg.Redis.Addr)
		if err != nil {
			return nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, fmt.Errorf("connect to redis at %s: %w", cfg.Redis.Addr, err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Connected to Redis")

		a.redis = rdb
		limiter = ratelimit.NewRedisLimiter(rdb, logger)
		store = cache.NewRedisStore(rdb)
	} else {
		logger.Info().Msg("No Redis configured, using in-memory rate limit and cache")
		limiter = ratelimit.NewMemoryLimiter()
		store = cache.NewMemoryStore()
	}

	c, err := client.New(cfg.ClientConfig(), limiter, store, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create catalog client: %w", err)
	}
	a.catalog = c
	return a, nil
}

// newRedisClient accepts either a redis:// URL or a bare host:port.
func newRedisClient(addr string) (*redis.Client, error) {
	if strings.Contains(addr, "://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		return redis.NewClient(opts), nil
	}
	return redis.NewClient(&redis.Options{Addr: addr}), nil
}

// openFavorites opens the favorites database and wires the service.
func (a *app) openFavorites(ctx context.Context) (*favorites.Service, error) {
	db, err := storage.Open(ctx, a.cfg.Database.DSN, a.logger)
	if err != nil {
		return nil, err
	}
	a.db = db

	store := storage.NewFavoriteStore(db)
	guard := favorites.NewGuard(a.catalog, store, a.logger)
	return favorites.NewService(guard, store, a.logger), nil
}

// ready pings the shared backends.
func (a *app) ready(ctx context.Context) error {
	if a.redis != nil {
		if err := a.redis.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if a.db != nil {
		sqlDB, err := a.db.DB()
		if err != nil {
			return fmt.Errorf("database: %w", err)
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

func (a *app) close() {
	if a.db != nil {
		if err := storage.Close(a.db); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close database")
		}
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("Failed to close Redis client")
		}
	}
}
