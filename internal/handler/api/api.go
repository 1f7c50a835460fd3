// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON HTTP handlers of the label site: auth,
// content collections, radio settings, analytics and the sitemap.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/olabel-go/internal/analytics"
	"github.com/olegiv/olabel-go/internal/auth"
	"github.com/olegiv/olabel-go/internal/cache"
	"github.com/olegiv/olabel-go/internal/store"
	"github.com/olegiv/olabel-go/internal/validation"
	"github.com/olegiv/olabel-go/internal/version"
)

// maxBodyBytes bounds request bodies; the largest payloads are post bodies.
const maxBodyBytes = 1 << 20

// Config holds the dependencies of the API.
type Config struct {
	Store store.Storage
	Auth  *auth.Service

	// Cache serves public reads. Nil disables caching.
	Cache    cache.Cache
	CacheTTL time.Duration

	// Enricher fills client details on page views. Nil records them as sent.
	Enricher *analytics.Enricher

	SiteURL string
	// DisallowRobots blocks all crawlers in robots.txt.
	DisallowRobots bool
	// Development exposes internal error text in 500 responses.
	Development bool
	Version     version.Info
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	store    store.Storage
	auth     *auth.Service
	cache    cache.Cache
	cacheTTL time.Duration
	enricher *analytics.Enricher

	siteURL        string
	disallowRobots bool
	dev            bool
	version        version.Info
}

// New creates a Handler.
func New(cfg Config) *Handler {
	return &Handler{
		store:          cfg.Store,
		auth:           cfg.Auth,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		enricher:       cfg.Enricher,
		siteURL:        cfg.SiteURL,
		disallowRobots: cfg.DisallowRobots,
		dev:            cfg.Development,
		version:        cfg.Version,
	}
}

// MessageResponse is the body of every error and of plain acknowledgements.
type MessageResponse struct {
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteMessage writes a {"message": ...} response.
func WriteMessage(w http.ResponseWriter, statusCode int, message string) {
	WriteJSON(w, statusCode, MessageResponse{Message: message})
}

// WriteValidationError writes a 400 response listing the invalid fields.
func WriteValidationError(w http.ResponseWriter, verr *validation.Error) {
	WriteJSON(w, http.StatusBadRequest, MessageResponse{
		Message: "Validation failed",
		Details: verr.Fields,
	})
}

// writeError maps err to a response. Unknown errors are logged and become
// a 500 whose detail is only shown in development.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		WriteValidationError(w, verr)
	case errors.Is(err, errBadJSON):
		WriteMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		WriteMessage(w, http.StatusNotFound, "Not found")
	case errors.Is(err, store.ErrDuplicate):
		WriteMessage(w, http.StatusConflict, "Already exists")
	default:
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		msg := "Internal server error"
		if h.dev {
			msg = err.Error()
		}
		WriteMessage(w, http.StatusInternalServerError, msg)
	}
}

var errBadJSON = errors.New("invalid JSON body")

// decodeJSON reads a JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadJSON)
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return fmt.Errorf("%w: body too large", errBadJSON)
		}
		return fmt.Errorf("%w: %s", errBadJSON, err.Error())
	}
	return nil
}

// decodeValid decodes a JSON body into dst and validates it.
func decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := decodeJSON(w, r, dst); err != nil {
		return err
	}
	return validation.Struct(dst)
}
