package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"indumart/internal/caching"
	"indumart/internal/models"
)

// stubCache implements caching.CacheService with a pluggable rate-limit
// counter; everything else is a no-op.
type stubCache struct {
	incr func(key string, window time.Duration) (int64, time.Duration, error)
}

func (s *stubCache) GetProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	return nil, nil
}

func (s *stubCache) SetProduct(ctx context.Context, product *models.Product, ttl time.Duration) error {
	return nil
}

func (s *stubCache) DeleteProduct(ctx context.Context, productID uuid.UUID) error { return nil }

func (s *stubCache) GetIdempotencyRecord(ctx context.Context, key string) (*caching.CachedResponse, error) {
	return nil, nil
}

func (s *stubCache) PutIdempotencyRecord(ctx context.Context, key string, resp *caching.CachedResponse, ttl time.Duration) error {
	return nil
}

func (s *stubCache) IncrementRateLimit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	return s.incr(key, window)
}

func (s *stubCache) SetString(ctx context.Context, key string, value string, ttl time.Duration) error {
	return nil
}

func (s *stubCache) GetString(ctx context.Context, key string) (string, error) { return "", nil }

func (s *stubCache) Delete(ctx context.Context, key string) error { return nil }

func (s *stubCache) Ping(ctx context.Context) error { return nil }

func doRequest(limiter echo.MiddlewareFunc) *httptest.ResponseRecorder {
	e := echo.New()
	handler := limiter(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/v1/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	_ = handler(c)
	return rec
}

func TestRateLimiter_SharedCounterWithinBudget(t *testing.T) {
	var count int64
	cache := &stubCache{
		incr: func(key string, window time.Duration) (int64, time.Duration, error) {
			count++
			return count, window, nil
		},
	}
	rl := NewRateLimiter(cache)
	limiter := rl.Limit("auth", AuthRateLimit)

	for i := 0; i < AuthRateLimit; i++ {
		rec := doRequest(limiter)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimiter_SharedCounterOverBudget(t *testing.T) {
	cache := &stubCache{
		incr: func(key string, window time.Duration) (int64, time.Duration, error) {
			return int64(AuthRateLimit + 1), 42 * time.Second, nil
		},
	}
	rl := NewRateLimiter(cache)
	limiter := rl.Limit("auth", AuthRateLimit)

	rec := doRequest(limiter)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimiter_FallbackEnforcesBudget(t *testing.T) {
	cache := &stubCache{
		incr: func(key string, window time.Duration) (int64, time.Duration, error) {
			return 0, 0, errors.New("connection refused")
		},
	}
	rl := NewRateLimiter(cache)
	limiter := rl.Limit("auth", AuthRateLimit)

	for i := 0; i < AuthRateLimit; i++ {
		rec := doRequest(limiter)
		assert.Equal(t, http.StatusOK, rec.Code, "request %d should be allowed", i+1)
	}

	rec := doRequest(limiter)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestRateLimiter_RecoveryDropsFallbackState(t *testing.T) {
	healthy := false
	var sharedCount int64
	cache := &stubCache{
		incr: func(key string, window time.Duration) (int64, time.Duration, error) {
			if !healthy {
				return 0, 0, errors.New("connection refused")
			}
			sharedCount++
			return sharedCount, window, nil
		},
	}
	rl := NewRateLimiter(cache)
	limiter := rl.Limit("auth", AuthRateLimit)

	// Exhaust the in-process budget while degraded.
	for i := 0; i < AuthRateLimit+1; i++ {
		doRequest(limiter)
	}
	assert.Equal(t, http.StatusTooManyRequests, doRequest(limiter).Code)

	// Once redis is back, its counter is authoritative again.
	healthy = true
	rec := doRequest(limiter)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiter_ScopesAreIndependent(t *testing.T) {
	counts := make(map[string]int64)
	cache := &stubCache{
		incr: func(key string, window time.Duration) (int64, time.Duration, error) {
			counts[key]++
			return counts[key], window, nil
		},
	}
	rl := NewRateLimiter(cache)

	authLimiter := rl.Limit("auth", 1)
	apiLimiter := rl.Limit("api", 1)

	assert.Equal(t, http.StatusOK, doRequest(authLimiter).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(authLimiter).Code)
	// Same client, different scope: still within budget.
	assert.Equal(t, http.StatusOK, doRequest(apiLimiter).Code)
}
