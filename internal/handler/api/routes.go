// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/olegiv/olabel-go/internal/middleware"
)

// Mount registers every route on r. limiter throttles login attempts per
// client address and may be nil.
func (h *Handler) Mount(r chi.Router, limiter *middleware.IPRateLimiter) {
	requireAuth := middleware.RequireAuth(h.auth)

	r.Get("/healthz", h.Health)
	r.Get("/robots.txt", h.Robots)
	r.Get("/sitemap.xml", h.Sitemap)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			login := http.Handler(http.HandlerFunc(h.Login))
			if limiter != nil {
				login = limiter.Middleware(login)
			}
			r.Method(http.MethodPost, "/login", login)
			r.Post("/logout", h.Logout)
			r.With(requireAuth).Get("/me", h.Me)
		})

		h.mountContent(r, requireAuth)

		r.Route("/radio/settings", func(r chi.Router) {
			r.Get("/", h.GetRadioSettings)
			r.With(requireAuth).Patch("/", h.UpdateRadioSettings)
		})

		r.Route("/analytics", func(r chi.Router) {
			r.Post("/pageview", h.RecordPageView)
			r.Post("/play", h.RecordPlay)
			r.Post("/radio-listener", h.StartRadioListener)
			r.Patch("/radio-listener/{id}", h.EndRadioListener)
			r.With(requireAuth).Get("/summary", h.AnalyticsSummary)
		})
	})
}
