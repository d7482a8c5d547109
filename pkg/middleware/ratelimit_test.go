package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"GHXPortal/pkg/response"

	"github.com/go-redis/redismock/v9"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fixedStore(t *testing.T, limit int) (*RedisRateLimiterStore, redismock.ClientMock, string) {
	t.Helper()
	db, mock := redismock.NewClientMock()
	store := NewRedisRateLimiterStore(db, "auth", limit, zap.NewNop())
	at := time.Date(2026, 10, 17, 12, 30, 15, 0, time.UTC)
	store.now = func() time.Time { return at }
	return store, mock, fmt.Sprintf("ratelimit:auth:10.0.0.1:%d", at.Unix()/60)
}

func TestRedisRateLimiterStore_FirstHitSetsExpiry(t *testing.T) {
	store, mock, key := fixedStore(t, 5)
	mock.ExpectIncr(key).SetVal(1)
	mock.ExpectExpire(key, time.Minute).SetVal(true)

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRateLimiterStore_DeniesOverLimit(t *testing.T) {
	store, mock, key := fixedStore(t, 5)
	mock.ExpectIncr(key).SetVal(5)
	mock.ExpectIncr(key).SetVal(6)

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisRateLimiterStore_FailsOpen(t *testing.T) {
	store, mock, key := fixedStore(t, 5)
	mock.ExpectIncr(key).SetErr(errors.New("connection refused"))

	allowed, err := store.Allow("10.0.0.1")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestRateLimit_MemoryFallback(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = response.ErrorHandler(zap.NewNop())
	store := NewRateLimiterStore(nil, "auth", 2, zap.NewNop())
	e.POST("/login", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, RateLimit(store))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.Header.Set(echo.HeaderXRealIP, "203.0.113.9")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)
}
