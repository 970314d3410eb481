package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"devtogether/internal/pkg/errors"
	"devtogether/internal/pkg/parser"
	"devtogether/internal/platform/config"
)

// Limit classes.
const (
	LimitAuth     = "auth"
	LimitAPIRead  = "api_read"
	LimitAPIWrite = "api_write"
)

const idleLimiterTTL = 10 * time.Minute

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per caller and limit class. Signed-in
// callers are keyed by user ID, everyone else by client IP.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	perMin   map[string]int
	now      func() time.Time
}

func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*limiterEntry),
		perMin: map[string]int{
			LimitAuth:     cfg.AuthPerMinute,
			LimitAPIRead:  cfg.APIReadPerMinute,
			LimitAPIWrite: cfg.APIWritePerMinute,
		},
		now: time.Now,
	}
}

// Run evicts idle buckets until ctx is done.
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(idleLimiterTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-idleLimiterTTL)
	for key, e := range rl.limiters {
		if e.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
}

func (rl *RateLimiter) Allow(key, class string) bool {
	limit, ok := rl.perMin[class]
	if !ok || limit <= 0 {
		limit = 100
	}

	rl.mu.Lock()
	e, ok := rl.limiters[class+":"+key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(limit)), limit)}
		rl.limiters[class+":"+key] = e
	}
	e.lastAccess = rl.now()
	rl.mu.Unlock()

	return e.limiter.Allow()
}

func (rl *RateLimiter) Limit(class string) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := parser.ClientIP(r)
			if facts := FactsFrom(r.Context()); facts.UserID != "" {
				key = facts.UserID
			}

			if !rl.Allow(key, class) {
				w.Header().Set("Retry-After", "60")
				errors.WriteError(w, http.StatusTooManyRequests, errors.ErrCodeRateLimitExceeded, "Rate limit exceeded", nil)
				return
			}
			next(w, r)
		}
	}
}
