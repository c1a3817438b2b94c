package database

import (
	"context"
	"fmt"
	"time"

	"invoicehub/config"
	"invoicehub/internal/logger"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects to Redis. It returns (nil, nil) when no address is
// configured; callers fall back to an in-process alternative.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr, err)
	}
	log := logger.WithComponent("redis")
	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("Connected to Redis")
	return rdb, nil
}
