// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewIPRateLimiterDefaults(t *testing.T) {
	l := NewIPRateLimiter(IPRateLimitConfig{})

	if l.maxSize != 10000 {
		t.Errorf("maxSize = %d, want 10000", l.maxSize)
	}
	if l.limiters.burst != 10 {
		t.Errorf("burst = %d, want 10", l.limiters.burst)
	}
	if float64(l.limiters.rate) != 0.5 {
		t.Errorf("rate = %v, want 0.5", l.limiters.rate)
	}
}

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(IPRateLimitConfig{RPS: 0.001, Burst: 3})

	for i := range 3 {
		if !l.Allow("10.0.0.1") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("10.0.0.1") {
		t.Error("4th request should be throttled")
	}
	if !l.Allow("10.0.0.2") {
		t.Error("other IPs should not be throttled")
	}
}

func TestIPRateLimiterPrune(t *testing.T) {
	l := NewIPRateLimiter(IPRateLimitConfig{MaxTracked: 2})
	l.Allow("a")
	l.Allow("b")

	l.Prune()
	if n := l.limiters.len(); n != 2 {
		t.Errorf("tracked = %d, want 2 (at limit, not over)", n)
	}

	l.Allow("c")
	l.Prune()
	if n := l.limiters.len(); n != 0 {
		t.Errorf("tracked = %d, want 0 after prune", n)
	}
}

func TestIPRateLimiterMiddleware(t *testing.T) {
	l := NewIPRateLimiter(IPRateLimitConfig{RPS: 0.001, Burst: 1})
	handler := l.Middleware(okHandler())

	send := func(method string) int {
		req := httptest.NewRequest(method, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.9:4711"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(http.MethodPost); code != http.StatusOK {
		t.Fatalf("first POST = %d, want 200", code)
	}
	if code := send(http.MethodPost); code != http.StatusTooManyRequests {
		t.Errorf("second POST = %d, want 429", code)
	}
	if code := send(http.MethodGet); code != http.StatusOK {
		t.Errorf("GET = %d, want 200 (only POST is throttled)", code)
	}
}
