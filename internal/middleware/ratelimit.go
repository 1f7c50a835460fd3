// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/olegiv/olabel-go/internal/util"
)

// MsgTooManyRequests is returned when a client exceeds its request rate.
const MsgTooManyRequests = "Too many requests. Please slow down."

// limiterCache is a generic rate limiter cache with double-check locking.
type limiterCache[K comparable] struct {
	limiters map[K]*rate.Limiter
	mu       sync.RWMutex
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](rps float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// get returns the rate limiter for a specific key, creating one if needed.
func (lc *limiterCache[K]) get(key K) *rate.Limiter {
	lc.mu.RLock()
	limiter, exists := lc.limiters[key]
	lc.mu.RUnlock()

	if exists {
		return limiter
	}

	lc.mu.Lock()
	defer lc.mu.Unlock()

	// Double-check after acquiring write lock
	if limiter, exists = lc.limiters[key]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(lc.rate, lc.burst)
	lc.limiters[key] = limiter
	return limiter
}

// clearIfExceeds clears all entries if the cache exceeds maxSize.
func (lc *limiterCache[K]) clearIfExceeds(maxSize int) bool {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	if len(lc.limiters) > maxSize {
		lc.limiters = make(map[K]*rate.Limiter)
		return true
	}
	return false
}

func (lc *limiterCache[K]) len() int {
	lc.mu.RLock()
	defer lc.mu.RUnlock()
	return len(lc.limiters)
}

// IPRateLimiter throttles requests per client IP. It sits in front of the
// login route; per-username lockout is enforced by the auth service.
type IPRateLimiter struct {
	limiters *limiterCache[string]
	maxSize  int
}

// IPRateLimitConfig holds configuration for per-IP throttling.
type IPRateLimitConfig struct {
	// RPS is requests per second per IP (default: 0.5 = 1 request per 2 seconds)
	RPS float64
	// Burst is the maximum burst size (default: 10)
	Burst int
	// MaxTracked bounds the number of tracked IPs before Prune resets them (default: 10000)
	MaxTracked int
}

// DefaultIPRateLimitConfig returns the login route defaults. The burst
// stays above the per-username lockout threshold so a locked account gets
// the lockout message rather than a 429.
func DefaultIPRateLimitConfig() IPRateLimitConfig {
	return IPRateLimitConfig{RPS: 0.5, Burst: 10, MaxTracked: 10000}
}

// NewIPRateLimiter creates a limiter; zero fields take defaults.
func NewIPRateLimiter(cfg IPRateLimitConfig) *IPRateLimiter {
	def := DefaultIPRateLimitConfig()
	if cfg.RPS <= 0 {
		cfg.RPS = def.RPS
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxTracked <= 0 {
		cfg.MaxTracked = def.MaxTracked
	}
	return &IPRateLimiter{
		limiters: newLimiterCache[string](cfg.RPS, cfg.Burst),
		maxSize:  cfg.MaxTracked,
	}
}

// Allow reports whether a request from ip may proceed.
func (l *IPRateLimiter) Allow(ip string) bool {
	return l.limiters.get(ip).Allow()
}

// Prune drops all tracked limiters once more than MaxTracked IPs are known.
// The scheduler calls it periodically.
func (l *IPRateLimiter) Prune() {
	if l.limiters.clearIfExceeds(l.maxSize) {
		slog.Info("cleared IP rate limiters due to size")
	}
}

// Middleware rejects POST requests from IPs over their rate with 429.
func (l *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			next.ServeHTTP(w, r)
			return
		}

		ip := util.ClientIP(r)
		if !l.Allow(ip) {
			slog.WarnContext(r.Context(), "login rate limit exceeded", "ip", ip)
			w.Header().Set("Retry-After", "2")
			writeMessage(w, http.StatusTooManyRequests, MsgTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}
