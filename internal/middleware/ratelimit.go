package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voltcast/forecast-api/internal/config"
)

// slidingWindow tracks request timestamps for one client.
type slidingWindow struct {
	requests []time.Time
}

func (w *slidingWindow) allow(now time.Time, limit int, window time.Duration) bool {
	cutoff := now.Add(-window)
	kept := w.requests[:0]
	for _, t := range w.requests {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	w.requests = kept

	if len(w.requests) >= limit {
		return false
	}
	w.requests = append(w.requests, now)
	return true
}

// RateLimiter limits requests per client IP with an in-memory sliding
// window. Forecast runs are expensive; the limit keeps one client from
// monopolizing the simulator.
type RateLimiter struct {
	mu      sync.Mutex
	windows map[string]*slidingWindow
	limit   int
	window  time.Duration

	lastClean time.Time
}

// NewRateLimiter builds a limiter from the rate-limit configuration.
// The burst size is added on top of the per-minute budget.
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		windows:   make(map[string]*slidingWindow),
		limit:     cfg.RequestsPerMinute + cfg.BurstSize,
		window:    time.Minute,
		lastClean: time.Now(),
	}
}

// Middleware returns the Gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.Header("Retry-After", "60")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded",
			})
			return
		}
		c.Next()
	}
}

// Allow records a request for the key and reports whether it is within
// the limit.
func (rl *RateLimiter) Allow(key string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	// Drop idle windows occasionally so the map does not grow without
	// bound.
	if now.Sub(rl.lastClean) > 5*time.Minute {
		cutoff := now.Add(-rl.window)
		for k, w := range rl.windows {
			if len(w.requests) == 0 || !w.requests[len(w.requests)-1].After(cutoff) {
				delete(rl.windows, k)
			}
		}
		rl.lastClean = now
	}

	w, ok := rl.windows[key]
	if !ok {
		w = &slidingWindow{}
		rl.windows[key] = w
	}
	return w.allow(now, rl.limit, rl.window)
}
