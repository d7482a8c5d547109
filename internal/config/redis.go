package config

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type RedisConfig struct {
	URL string
}

func NewRedisConfig() *RedisConfig {
	return &RedisConfig{URL: getEnv("REDIS_URL", "")}
}

// NewRedisClient returns nil when REDIS_URL is unset; callers fall back to
// in-process state.
func NewRedisClient(lc fx.Lifecycle, cfg *RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.URL == "" {
		logger.Info("REDIS_URL not set, using in-memory rate limiting")
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		opts = &redis.Options{Addr: cfg.URL}
	}
	opts.PoolSize = 20
	opts.MinIdleConns = 2
	opts.MaxRetries = 3

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	logger.Info("connected to redis", zap.String("addr", opts.Addr))

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}
