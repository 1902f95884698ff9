package ratelimit

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/deusflow/newsflash/internal/logger"
)

// ErrQuotaExceeded is returned by Use when a provider or the total quota is spent.
var ErrQuotaExceeded = errors.New("AI quota exceeded")

// AIRateLimiter counts model calls per provider and resets daily.
type AIRateLimiter struct {
	mu        sync.Mutex
	counts    map[string]int
	limits    map[string]int
	total     int
	maxTotal  int
	period    time.Duration
	resetTime time.Time
	now       func() time.Time
}

// NewAIRateLimiter creates a limiter with a total cap (0 = unlimited).
// Per-provider caps are set with SetLimit.
func NewAIRateLimiter(maxTotal int) *AIRateLimiter {
	rl := &AIRateLimiter{
		counts:   make(map[string]int),
		limits:   make(map[string]int),
		maxTotal: maxTotal,
		period:   24 * time.Hour,
		now:      time.Now,
	}
	rl.resetTime = rl.now().Add(rl.period)
	return rl
}

// SetLimit caps a single provider (0 = unlimited).
func (rl *AIRateLimiter) SetLimit(provider string, max int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	rl.limits[provider] = max
}

// CanUse reports whether a call to provider would be allowed.
func (rl *AIRateLimiter) CanUse(provider string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	return rl.check(provider) == nil
}

// Use records a call to provider, or returns ErrQuotaExceeded.
func (rl *AIRateLimiter) Use(provider string) error {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.checkReset()
	if err := rl.check(provider); err != nil {
		logger.Warn("AI rate limit reached", "provider", provider, "used", rl.counts[provider], "total", rl.total)
		return err
	}

	rl.counts[provider]++
	rl.total++

	logger.Debug("AI usage", "provider", provider, "used", rl.counts[provider], "limit", rl.limits[provider], "total", rl.total, "max_total", rl.maxTotal)
	return nil
}

func (rl *AIRateLimiter) check(provider string) error {
	if max := rl.limits[provider]; max > 0 && rl.counts[provider] >= max {
		return fmt.Errorf("%s: %w", provider, ErrQuotaExceeded)
	}
	if rl.maxTotal > 0 && rl.total >= rl.maxTotal {
		return fmt.Errorf("total: %w", ErrQuotaExceeded)
	}
	return nil
}

// GetStats returns current rate limiter statistics
func (rl *AIRateLimiter) GetStats() map[string]interface{} {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	stats := map[string]interface{}{
		"total_used":  rl.total,
		"total_limit": rl.maxTotal,
		"reset_time":  rl.resetTime,
	}
	for provider, n := range rl.counts {
		stats[provider+"_used"] = n
	}
	for provider, max := range rl.limits {
		stats[provider+"_limit"] = max
	}
	return stats
}

// checkReset resets counters if reset time has passed
func (rl *AIRateLimiter) checkReset() {
	if rl.now().After(rl.resetTime) {
		logger.Info("Resetting AI rate limiter counters", "total_used", rl.total)
		rl.counts = make(map[string]int)
		rl.total = 0
		rl.resetTime = rl.now().Add(rl.period)
	}
}
