// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/olegiv/olabel-go/internal/cache"
	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/store"
)

const (
	radioCacheNamespace = "radio"
	radioSettingsKey    = radioCacheNamespace + ":settings"
	msgRadioNotSetUp    = "Radio settings not configured"
)

// GetRadioSettings handles GET /api/radio/settings.
func (h *Handler) GetRadioSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := cache.GetOrLoad(r.Context(), h.cache, radioSettingsKey, h.cacheTTL, h.loadRadioSettings)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, msgRadioNotSetUp)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// loadRadioSettings reports a missing row as ErrNotFound so it is not cached.
func (h *Handler) loadRadioSettings(ctx context.Context) (*model.RadioSettings, error) {
	settings, err := h.store.GetRadioSettings(ctx)
	if err == nil && settings == nil {
		return nil, store.ErrNotFound
	}
	return settings, err
}

// UpdateRadioSettings handles PATCH /api/radio/settings.
func (h *Handler) UpdateRadioSettings(w http.ResponseWriter, r *http.Request) {
	var patch model.RadioSettingsPatch
	if err := decodeValid(w, r, &patch); err != nil {
		h.writeError(w, r, err)
		return
	}

	ctx := r.Context()
	settings, err := h.store.UpdateRadioSettings(ctx, patch)
	if errors.Is(err, store.ErrNotFound) {
		WriteMessage(w, http.StatusNotFound, msgRadioNotSetUp)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.invalidate(ctx, radioCacheNamespace)
	WriteJSON(w, http.StatusOK, settings)
}
