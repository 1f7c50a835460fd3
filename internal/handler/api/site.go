// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/olabel-go/internal/cache"
	"github.com/olegiv/olabel-go/internal/seo"
)

// pingTimeout bounds the storage check of the health endpoint.
const pingTimeout = 2 * time.Second

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Health reports whether storage is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.WarnContext(ctx, "health check failed", "error", err)
		WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Version: h.version.Version})
		return
	}
	WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version.Version})
}

// Sitemap serves /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	data, err := cache.GetOrLoad(r.Context(), h.cache, sitemapCacheKey, h.cacheTTL, h.buildSitemap)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) buildSitemap(ctx context.Context) ([]byte, error) {
	b := seo.NewSitemapBuilder(h.siteURL)
	b.AddHomepage()
	b.AddSections()

	releases, err := h.store.Releases().List(ctx)
	if err != nil {
		return nil, err
	}
	entries := make([]seo.Entry, 0, len(releases))
	for _, rel := range releases {
		entries = append(entries, seo.Entry{Slug: rel.Slug, ModTime: rel.CreatedAt})
	}
	b.AddEntries("releases", entries)

	artists, err := h.store.Artists().List(ctx)
	if err != nil {
		return nil, err
	}
	entries = entries[:0]
	for _, a := range artists {
		entries = append(entries, seo.Entry{Slug: a.Slug, ModTime: a.CreatedAt})
	}
	b.AddEntries("artists", entries)

	posts, err := h.store.Posts().List(ctx)
	if err != nil {
		return nil, err
	}
	entries = entries[:0]
	for _, p := range posts {
		if !p.Published {
			continue
		}
		entries = append(entries, seo.Entry{Slug: p.Slug, ModTime: p.CreatedAt})
	}
	b.AddEntries("news", entries)

	return b.Build()
}

// Robots serves /robots.txt.
func (h *Handler) Robots(w http.ResponseWriter, _ *http.Request) {
	body := seo.RobotsConfig{SiteURL: h.siteURL, DisallowAll: h.disallowRobots}.Build()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}
