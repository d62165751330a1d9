package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"indumart/internal/caching"
	"indumart/internal/common"
)

// Rate-limit budgets per scope, requests per window.
const (
	RateLimitWindow = time.Minute

	AuthRateLimit  = 5   // login/refresh
	APIRateLimit   = 100 // public catalog and RFQ submission
	AdminRateLimit = 200 // authenticated back-office
)

// RateLimiter bounds request rates per client within a fixed window. The
// redis counter is the primary, instance-shared path. When redis is
// unreachable the limiter falls back to in-process counters, which only see
// this instance's traffic — a documented weaker mode, not an equivalent one.
type RateLimiter struct {
	cacheSvc caching.CacheService

	mu       sync.Mutex
	local    map[string]*localWindow
	degraded bool
}

type localWindow struct {
	count   int64
	resetAt time.Time
}

func NewRateLimiter(cacheSvc caching.CacheService) *RateLimiter {
	return &RateLimiter{
		cacheSvc: cacheSvc,
		local:    make(map[string]*localWindow),
	}
}

// Limit returns middleware enforcing the given budget for the named scope.
// Requests are keyed by client IP, or by admin ID once authentication has
// run.
func (rl *RateLimiter) Limit(scope string, limit int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identifier := c.RealIP()
			if adminID, ok := common.GetAdminIDFromContext(c.Request().Context()); ok {
				identifier = adminID.String()
			}
			key := fmt.Sprintf("%s:%s", scope, identifier)

			count, remaining := rl.take(c.Request().Context(), key)
			if count > int64(limit) {
				retryAfter := int(remaining.Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return c.JSON(http.StatusTooManyRequests, common.CreateErrorResponse(
					"RATE_LIMITED",
					fmt.Sprintf("Too many requests, retry in %d seconds", retryAfter),
					nil,
				))
			}
			return next(c)
		}
	}
}

func (rl *RateLimiter) take(ctx context.Context, key string) (int64, time.Duration) {
	count, remaining, err := rl.cacheSvc.IncrementRateLimit(ctx, key, RateLimitWindow)
	if err == nil {
		rl.clearDegraded()
		return count, remaining
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	if !rl.degraded {
		rl.degraded = true
		log.Printf("WARN: rate limiter falling back to in-process counters: %v", err)
	}

	now := time.Now()
	win, ok := rl.local[key]
	if !ok || now.After(win.resetAt) {
		win = &localWindow{resetAt: now.Add(RateLimitWindow)}
		rl.local[key] = win
	}
	win.count++
	return win.count, win.resetAt.Sub(now)
}

func (rl *RateLimiter) clearDegraded() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	if rl.degraded {
		rl.degraded = false
		log.Printf("rate limiter recovered, using shared counters")
		// Drop stale fallback state so old windows don't double-count
		rl.local = make(map[string]*localWindow)
	}
}
