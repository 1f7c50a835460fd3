// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/store"
)

// Bounds of the top query parameter of the analytics summary.
const (
	DefaultTopReleases = 5
	MaxTopReleases     = 50
)

// PageViewRequest is the body of POST /api/analytics/pageview.
type PageViewRequest struct {
	Path     string  `json:"path" validate:"required,startswith=/,max=2048"`
	Referrer *string `json:"referrer" validate:"omitempty,max=2048"`
}

// PlayRequest is the body of POST /api/analytics/play.
type PlayRequest struct {
	ReleaseID string  `json:"releaseId" validate:"required,max=64"`
	Source    *string `json:"source" validate:"omitempty,max=50"`
}

// RecordPageView handles POST /api/analytics/pageview.
func (h *Handler) RecordPageView(w http.ResponseWriter, r *http.Request) {
	var req PageViewRequest
	if err := decodeValid(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	v := model.PageView{Path: req.Path, Referrer: req.Referrer}
	if h.enricher != nil {
		h.enricher.Enrich(r, &v)
	}
	if _, err := h.store.RecordPageView(r.Context(), v); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RecordPlay handles POST /api/analytics/play.
func (h *Handler) RecordPlay(w http.ResponseWriter, r *http.Request) {
	var req PlayRequest
	if err := decodeValid(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	p := model.PlayCount{ReleaseID: req.ReleaseID, Source: req.Source}
	if _, err := h.store.RecordPlay(r.Context(), p); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// StartRadioListener handles POST /api/analytics/radio-listener. The
// returned id is sent back when the listener stops.
func (h *Handler) StartRadioListener(w http.ResponseWriter, r *http.Request) {
	l, err := h.store.StartRadioListener(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusCreated, l)
}

// EndRadioListener handles PATCH /api/analytics/radio-listener/{id}.
func (h *Handler) EndRadioListener(w http.ResponseWriter, r *http.Request) {
	err := h.store.EndRadioListener(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, "Listener session not found")
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AnalyticsSummary handles GET /api/analytics/summary?top=N.
func (h *Handler) AnalyticsSummary(w http.ResponseWriter, r *http.Request) {
	top := DefaultTopReleases
	if s := r.URL.Query().Get("top"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 || n > MaxTopReleases {
			WriteMessage(w, http.StatusBadRequest,
				"top must be an integer between 0 and "+strconv.Itoa(MaxTopReleases))
			return
		}
		top = n
	}

	summary, err := h.store.AnalyticsSummary(r.Context(), top)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if summary.TopReleases == nil {
		summary.TopReleases = []model.ReleasePlays{}
	}
	WriteJSON(w, http.StatusOK, summary)
}
