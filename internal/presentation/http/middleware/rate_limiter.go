package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/brokerbill-api/internal/presentation/http/dto/response"
	"golang.org/x/time/rate"
)

// FirmRateLimiter provides per-firm rate limiting so one busy firm cannot
// starve the others
type FirmRateLimiter struct {
	limiters    map[uuid.UUID]*rateLimiterEntry
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	cleanupTick time.Duration
	entryTTL    time.Duration
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiterConfig holds configuration for the rate limiter
type RateLimiterConfig struct {
	RequestsPerSecond float64
	BurstSize         int
	CleanupInterval   time.Duration
	EntryTTL          time.Duration
}

// RateLimiterConfigFor spreads requests evenly over window, allowing the
// whole allowance as a burst
func RateLimiterConfigFor(requests int, window time.Duration) RateLimiterConfig {
	cfg := DefaultRateLimiterConfig()
	if requests > 0 && window > 0 {
		cfg.RequestsPerSecond = float64(requests) / window.Seconds()
		cfg.BurstSize = requests
	}
	return cfg
}

// DefaultRateLimiterConfig returns sensible defaults
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		RequestsPerSecond: 10,
		BurstSize:         20,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	}
}

// NewFirmRateLimiter creates a per-firm rate limiter. Stale entries are
// swept until ctx is done.
func NewFirmRateLimiter(ctx context.Context, cfg RateLimiterConfig) *FirmRateLimiter {
	rl := &FirmRateLimiter{
		limiters:    make(map[uuid.UUID]*rateLimiterEntry),
		rate:        rate.Limit(cfg.RequestsPerSecond),
		burst:       cfg.BurstSize,
		cleanupTick: cfg.CleanupInterval,
		entryTTL:    cfg.EntryTTL,
	}

	go rl.cleanupLoop(ctx)

	return rl
}

func (rl *FirmRateLimiter) getLimiter(firmID uuid.UUID) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if entry, exists := rl.limiters[firmID]; exists {
		entry.lastSeen = time.Now()
		return entry.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[firmID] = &rateLimiterEntry{
		limiter:  limiter,
		lastSeen: time.Now(),
	}
	return limiter
}

func (rl *FirmRateLimiter) cleanupLoop(ctx context.Context) {
	ticker := time.NewTicker(rl.cleanupTick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup()
		}
	}
}

// cleanup removes entries that haven't been used recently
func (rl *FirmRateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rl.entryTTL)
	for firmID, entry := range rl.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.limiters, firmID)
		}
	}
}

// Middleware returns a Gin middleware that applies per-firm rate limiting.
// Requests without a firm context pass through.
func (rl *FirmRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		firmID := GetFirmID(c)
		if firmID == uuid.Nil {
			c.Next()
			return
		}

		limiter := rl.getLimiter(firmID)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.burst))

		if !limiter.Allow() {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("Retry-After", "1")
			response.TooManyRequests(c, "Rate limit exceeded. Please try again later.")
			c.Abort()
			return
		}

		c.Header("X-RateLimit-Remaining", strconv.Itoa(int(limiter.Tokens())))
		c.Next()
	}
}
