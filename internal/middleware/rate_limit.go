package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter はキーごとのトークンバケット
type RateLimiter struct {
	mu        sync.Mutex
	entries   map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// perMinuteが0なら無制限
func NewRateLimiter(perMinute int, ttl time.Duration) *RateLimiter {
	r := rate.Inf
	burst := 0
	if perMinute > 0 {
		r = rate.Limit(float64(perMinute) / 60.0)
		burst = perMinute
	}
	return &RateLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    r,
		burst:   burst,
		ttl:     ttl,
		now:     time.Now,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	if rl.rate == rate.Inf {
		return true
	}

	rl.mu.Lock()
	now := rl.now()

	// 古いキーを時々掃除する
	if now.Sub(rl.lastSweep) > rl.ttl {
		for k, e := range rl.entries {
			if now.Sub(e.lastSeen) > rl.ttl {
				delete(rl.entries, k)
			}
		}
		rl.lastSweep = now
	}

	e, ok := rl.entries[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.entries[key] = e
	}
	e.lastSeen = now
	rl.mu.Unlock()

	return e.limiter.AllowN(now, 1)
}

// 認証済みは user:<id>、匿名は ip:<addr> で数える
func RateLimit(anon *RateLimiter, user *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := anon
			key := "ip:" + c.RealIP()
			if userID, ok := c.Get(CtxUserIDKey).(int64); ok && userID > 0 {
				limiter = user
				key = fmt.Sprintf("user:%d", userID)
			}

			if !limiter.Allow(key) {
				c.Response().Header().Set("Retry-After", "60")
				return c.JSON(http.StatusTooManyRequests, errorJSON("THROTTLED", "too many requests"))
			}
			return next(c)
		}
	}
}
