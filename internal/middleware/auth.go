// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for bearer authentication,
// login throttling, security headers and request timeouts.
package middleware

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/olabel-go/internal/logging"
)

// Messages returned by RequireAuth.
const (
	MsgAuthRequired   = "Authentication required"
	MsgInvalidSession = "Invalid or expired session"
	MsgInternalError  = "Internal server error"
)

// SessionValidator resolves a session token to a username.
// *auth.Service satisfies it.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (string, bool, error)
}

type contextKey struct{}

var usernameKey contextKey

// WithUsername returns a copy of ctx carrying the authenticated username.
func WithUsername(ctx context.Context, username string) context.Context {
	return context.WithValue(ctx, usernameKey, username)
}

// Username returns the authenticated username, or "" for anonymous requests.
func Username(ctx context.Context) string {
	u, _ := ctx.Value(usernameKey).(string)
	return u
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth rejects requests without a valid bearer session.
// The resolved username is available to handlers through Username.
func RequireAuth(v SessionValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				writeMessage(w, http.StatusUnauthorized, MsgAuthRequired)
				return
			}

			username, ok, err := v.ValidateSession(r.Context(), token)
			if err != nil {
				slog.ErrorContext(r.Context(), "session validation failed", "error", err)
				writeMessage(w, http.StatusInternalServerError, MsgInternalError)
				return
			}
			if !ok {
				writeMessage(w, http.StatusUnauthorized, MsgInvalidSession)
				return
			}

			ctx := WithUsername(r.Context(), username)
			ctx = logging.WithAttrs(ctx, slog.String("username", username))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// writeMessage writes a {"message": ...} JSON body.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
