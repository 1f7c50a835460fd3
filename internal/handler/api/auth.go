// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/olabel-go/internal/middleware"
	"github.com/olegiv/olabel-go/internal/util"
)

// Auth messages.
const (
	MsgCredentialsRequired = "Username and password are required"
	MsgLoggedOut           = "Logged out successfully"
)

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse is returned on a successful login.
type LoginResponse struct {
	SessionID string `json:"sessionId"`
	Username  string `json:"username"`
}

// MeResponse is returned by GET /api/auth/me.
type MeResponse struct {
	Username string `json:"username"`
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteMessage(w, http.StatusBadRequest, MsgCredentialsRequired)
		return
	}
	if req.Username == "" || req.Password == "" {
		WriteMessage(w, http.StatusBadRequest, MsgCredentialsRequired)
		return
	}

	ctx := r.Context()
	res, err := h.auth.ValidateCredentials(ctx, req.Username, req.Password, util.ClientIP(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if !res.Valid {
		WriteMessage(w, http.StatusUnauthorized, res.Message)
		return
	}

	token, err := h.auth.CreateSession(ctx, req.Username)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	slog.InfoContext(ctx, "admin logged in", "username", req.Username)
	WriteJSON(w, http.StatusOK, LoginResponse{SessionID: token, Username: req.Username})
}

// Logout handles POST /api/auth/logout. It always succeeds; a missing or
// unknown session is not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if token := middleware.BearerToken(r); token != "" {
		if err := h.auth.DeleteSession(r.Context(), token); err != nil {
			slog.WarnContext(r.Context(), "failed to delete session on logout", "error", err)
		}
	}
	WriteMessage(w, http.StatusOK, MsgLoggedOut)
}

// Me handles GET /api/auth/me behind RequireAuth.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, MeResponse{Username: middleware.Username(r.Context())})
}
