// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// MsgTimeout is the body sent when a handler exceeds its deadline.
const MsgTimeout = "Request timeout"

// Timeout wraps an http.Handler and applies a request timeout.
// If the handler has not written a response when the deadline passes,
// a 503 Service Unavailable JSON response is sent and later writes from
// the handler are discarded.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			done := make(chan struct{})
			panicCh := make(chan any, 1)
			tw := &timeoutWriter{w: w, h: make(http.Header)}

			go func() {
				defer func() {
					if p := recover(); p != nil {
						panicCh <- p
					}
				}()
				next.ServeHTTP(tw, r.WithContext(ctx))
				close(done)
			}()

			select {
			case p := <-panicCh:
				// Re-raise on the serving goroutine so Recoverer sees it.
				panic(p)
			case <-done:
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.flush(true)
			case <-ctx.Done():
				tw.mu.Lock()
				defer tw.mu.Unlock()
				tw.timedOut = true
				if tw.code == 0 && tw.buf == nil {
					writeMessage(w, http.StatusServiceUnavailable, MsgTimeout)
					return
				}
				tw.flush(false)
			}
		})
	}
}

// timeoutWriter buffers the handler's response so nothing reaches the
// client after the timeout response has been sent.
type timeoutWriter struct {
	w        http.ResponseWriter
	h        http.Header
	mu       sync.Mutex
	code     int
	buf      []byte
	timedOut bool

	// sent is the header set captured when the status was fixed. The
	// handler may keep touching h after that, so the timeout path reads
	// only sent.
	sent http.Header
}

func (tw *timeoutWriter) Header() http.Header { return tw.h }

func (tw *timeoutWriter) WriteHeader(code int) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut || tw.code != 0 {
		return
	}
	tw.setCode(code)
}

func (tw *timeoutWriter) Write(b []byte) (int, error) {
	tw.mu.Lock()
	defer tw.mu.Unlock()
	if tw.timedOut {
		return 0, http.ErrHandlerTimeout
	}
	if tw.code == 0 {
		tw.setCode(http.StatusOK)
	}
	tw.buf = append(tw.buf, b...)
	return len(b), nil
}

// setCode fixes the status and snapshots the headers. It runs on the
// handler goroutine with tw.mu held.
func (tw *timeoutWriter) setCode(code int) {
	tw.code = code
	tw.sent = tw.h.Clone()
}

// flush copies the buffered response to the client. Caller must hold tw.mu.
// Once the handler has finished tw.h is safe to read; otherwise only the
// snapshot is.
func (tw *timeoutWriter) flush(handlerDone bool) {
	h := tw.sent
	if handlerDone || h == nil {
		h = tw.h
	}
	dst := tw.w.Header()
	for k, v := range h {
		dst[k] = v
	}
	if tw.code == 0 {
		tw.code = http.StatusOK
	}
	tw.w.WriteHeader(tw.code)
	_, _ = tw.w.Write(tw.buf)
}
