// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestTimeoutMiddlewareNormalRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("success"))
	})

	wrapped := Timeout(5 * time.Second)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body != "success" {
		t.Errorf("Body = %q, want %q", body, "success")
	}
}

func TestTimeoutMiddlewareSlowRequest(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(5 * time.Second):
			w.WriteHeader(http.StatusOK)
		case <-r.Context().Done():
			return
		}
	})

	wrapped := Timeout(50 * time.Millisecond)(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusServiceUnavailable)
	}
	if body := rr.Body.String(); !strings.Contains(body, MsgTimeout) {
		t.Errorf("Body = %q, want it to contain %q", body, MsgTimeout)
	}
}

func TestTimeoutMiddlewareWithHeaders(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte("created"))
	})

	wrapped := Timeout(5 * time.Second)(handler)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusCreated)
	}
	if h := rr.Header().Get("X-Custom-Header"); h != "test-value" {
		t.Errorf("X-Custom-Header = %q, want %q", h, "test-value")
	}
	if body := rr.Body.String(); body != "created" {
		t.Errorf("Body = %q, want %q", body, "created")
	}
}

func TestTimeoutMiddlewarePanicPropagates(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	wrapped := Timeout(time.Second)(handler)

	defer func() {
		if p := recover(); p != "boom" {
			t.Errorf("recovered %v, want boom", p)
		}
	}()
	wrapped.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	t.Error("expected panic")
}

func TestTimeoutWriterFirstHeaderWins(t *testing.T) {
	rr := httptest.NewRecorder()
	tw := &timeoutWriter{w: rr, h: make(http.Header)}

	tw.WriteHeader(http.StatusAccepted)
	tw.WriteHeader(http.StatusNotFound)
	_, _ = tw.Write([]byte("ok"))
	tw.flush(true)

	if rr.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusAccepted)
	}
}

func TestTimeoutWriterRejectsWritesAfterTimeout(t *testing.T) {
	tw := &timeoutWriter{w: httptest.NewRecorder(), h: make(http.Header), timedOut: true}

	if _, err := tw.Write([]byte("late")); err != http.ErrHandlerTimeout {
		t.Errorf("Write() error = %v, want %v", err, http.ErrHandlerTimeout)
	}
}

func TestTimeoutMiddlewareHeadersAfterTimeout(t *testing.T) {
	stopped := make(chan struct{})
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer close(stopped)
		w.Header().Set("X-Before", "1")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("partial"))

		// Keep mutating headers while the timeout response is flushed.
		for i := 0; ; i++ {
			w.Header().Set("X-After", strconv.Itoa(i))
			select {
			case <-r.Context().Done():
				for j := 0; j < 100; j++ {
					w.Header().Set("X-After", strconv.Itoa(j))
				}
				return
			default:
			}
		}
	})

	wrapped := Timeout(20 * time.Millisecond)(handler)

	rr := httptest.NewRecorder()
	wrapped.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	<-stopped

	if rr.Code != http.StatusAccepted {
		t.Errorf("Status = %d, want %d", rr.Code, http.StatusAccepted)
	}
	if h := rr.Header().Get("X-Before"); h != "1" {
		t.Errorf("X-Before = %q, want %q", h, "1")
	}
	if h := rr.Header().Get("X-After"); h != "" {
		t.Errorf("X-After = %q, want it absent", h)
	}
	if body := rr.Body.String(); body != "partial" {
		t.Errorf("Body = %q, want %q", body, "partial")
	}
}
