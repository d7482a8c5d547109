package middleware

import (
	"context"
	"fmt"
	"time"

	"GHXPortal/internal/apperr"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const rateWindow = time.Minute

// RedisRateLimiterStore is a fixed-window counter shared by every instance
// behind the same redis. A redis failure lets the request through.
type RedisRateLimiterStore struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	logger *zap.Logger
	now    func() time.Time
}

func NewRedisRateLimiterStore(rdb *redis.Client, prefix string, perMinute int, logger *zap.Logger) *RedisRateLimiterStore {
	return &RedisRateLimiterStore{
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(perMinute),
		logger: logger,
		now:    time.Now,
	}
}

func (s *RedisRateLimiterStore) key(identifier string) string {
	return fmt.Sprintf("ratelimit:%s:%s:%d", s.prefix, identifier, s.now().Unix()/int64(rateWindow.Seconds()))
}

func (s *RedisRateLimiterStore) Allow(identifier string) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	key := s.key(identifier)
	count, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing request", zap.Error(err))
		return true, nil
	}
	if count == 1 {
		if err := s.rdb.Expire(ctx, key, rateWindow).Err(); err != nil {
			s.logger.Warn("rate limiter expire failed", zap.String("key", key), zap.Error(err))
		}
	}
	return count <= s.limit, nil
}

// NewRateLimiterStore uses redis when it is configured and an in-process
// token bucket otherwise.
func NewRateLimiterStore(rdb *redis.Client, prefix string, perMinute int, logger *zap.Logger) echomw.RateLimiterStore {
	if rdb != nil {
		return NewRedisRateLimiterStore(rdb, prefix, perMinute, logger)
	}
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(perMinute) / rateWindow.Seconds()),
		Burst:     perMinute,
		ExpiresIn: 3 * rateWindow,
	})
}

// RateLimit limits requests per client IP.
func RateLimit(store echomw.RateLimiterStore) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return apperr.BadRequest("Unable to identify client")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return apperr.RateLimited("Too many requests, please try again later")
		},
	})
}
