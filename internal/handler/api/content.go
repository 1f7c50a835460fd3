// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/olabel-go/internal/cache"
	"github.com/olegiv/olabel-go/internal/markup"
	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/store"
	"github.com/olegiv/olabel-go/internal/util"
)

// sitemapCacheKey is dropped whenever any public collection changes.
const sitemapCacheKey = "sitemap:xml"

// resource describes one content collection mounted under /api/{name}.
type resource[T any, P model.Patch[T]] struct {
	name  string // URL segment and cache namespace
	label string // singular name used in messages
	repo  store.Repository[T, P]

	// private collections take anonymous creates but need auth to read.
	private bool

	// prepare normalizes a record before it is created.
	prepare func(*T)
	// view fills derived fields before a record is returned.
	view func(*T) error
}

func (res resource[T, P]) render(items ...*T) error {
	if res.view == nil {
		return nil
	}
	for _, it := range items {
		if err := res.view(it); err != nil {
			return err
		}
	}
	return nil
}

func (res resource[T, P]) notFound(w http.ResponseWriter) {
	WriteMessage(w, http.StatusNotFound, res.label+" not found")
}

// mount registers list, get, create, update and delete routes.
func (res resource[T, P]) mount(r chi.Router, h *Handler, requireAuth func(http.Handler) http.Handler) {
	r.Route("/"+res.name, func(r chi.Router) {
		if res.private {
			r.Post("/", res.create(h))
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/", res.list(h))
				r.Get("/{id}", res.get(h))
				r.Patch("/{id}", res.update(h))
				r.Delete("/{id}", res.delete(h))
			})
			return
		}

		r.Get("/", res.list(h))
		r.Get("/{id}", res.get(h))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", res.create(h))
			r.Patch("/{id}", res.update(h))
			r.Delete("/{id}", res.delete(h))
		})
	})
}

func (res resource[T, P]) list(h *Handler) http.HandlerFunc {
	load := func(ctx context.Context) ([]T, error) {
		items, err := res.repo.List(ctx)
		if err != nil {
			return nil, err
		}
		for i := range items {
			if err := res.render(&items[i]); err != nil {
				return nil, err
			}
		}
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	return func(w http.ResponseWriter, r *http.Request) {
		var (
			items []T
			err   error
		)
		if res.private {
			items, err = load(r.Context())
		} else {
			items, err = cache.GetOrLoad(r.Context(), h.cache, res.name+":list", h.cacheTTL, load)
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, items)
	}
}

func (res resource[T, P]) get(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		// A missing record is an error so that misses are never cached.
		load := func(ctx context.Context) (*T, error) {
			rec, err := res.repo.Get(ctx, id)
			if err != nil {
				return nil, err
			}
			if rec == nil {
				return nil, store.ErrNotFound
			}
			return rec, res.render(rec)
		}

		var (
			rec *T
			err error
		)
		if res.private {
			rec, err = load(r.Context())
		} else {
			rec, err = cache.GetOrLoad(r.Context(), h.cache, res.name+":"+id, h.cacheTTL, load)
		}
		if errors.Is(err, store.ErrNotFound) {
			res.notFound(w)
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, rec)
	}
}

func (res resource[T, P]) create(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var rec T
		if err := decodeValid(w, r, &rec); err != nil {
			h.writeError(w, r, err)
			return
		}
		if res.prepare != nil {
			res.prepare(&rec)
		}

		ctx := r.Context()
		created, err := res.repo.Create(ctx, rec)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.invalidate(ctx, res.name)

		if err := res.render(&created); err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)
	}
}

func (res resource[T, P]) update(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch P
		if err := decodeValid(w, r, &patch); err != nil {
			h.writeError(w, r, err)
			return
		}

		ctx := r.Context()
		updated, err := res.repo.Update(ctx, chi.URLParam(r, "id"), patch)
		if errors.Is(err, store.ErrNotFound) {
			res.notFound(w)
			return
		}
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		h.invalidate(ctx, res.name)

		if err := res.render(&updated); err != nil {
			h.writeError(w, r, err)
			return
		}
		WriteJSON(w, http.StatusOK, updated)
	}
}

func (res resource[T, P]) delete(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := res.repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
			h.writeError(w, r, err)
			return
		}
		h.invalidate(ctx, res.name)
		w.WriteHeader(http.StatusNoContent)
	}
}

// invalidate drops cached reads of a collection and the sitemap.
func (h *Handler) invalidate(ctx context.Context, name string) {
	if h.cache == nil {
		return
	}
	if err := h.cache.DeleteByPrefix(ctx, name+":"); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "collection", name, "error", err)
	}
	if err := h.cache.Delete(ctx, sitemapCacheKey); err != nil {
		slog.WarnContext(ctx, "cache invalidation failed", "key", sitemapCacheKey, "error", err)
	}
}

func (h *Handler) mountContent(r chi.Router, requireAuth func(http.Handler) http.Handler) {
	st := h.store

	resource[model.Release, model.ReleasePatch]{
		name:  "releases",
		label: "Release",
		repo:  st.Releases(),
		prepare: func(rel *model.Release) {
			rel.Slug = util.SlugFor(rel.Slug, rel.Title)
			if rel.ReleaseType == "" {
				rel.ReleaseType = model.ReleaseTypeSingle
			}
		},
	}.mount(r, h, requireAuth)

	resource[model.Artist, model.ArtistPatch]{
		name:  "artists",
		label: "Artist",
		repo:  st.Artists(),
		prepare: func(a *model.Artist) {
			a.Slug = util.SlugFor(a.Slug, a.Name)
		},
	}.mount(r, h, requireAuth)

	resource[model.Event, model.EventPatch]{
		name:  "events",
		label: "Event",
		repo:  st.Events(),
	}.mount(r, h, requireAuth)

	resource[model.Post, model.PostPatch]{
		name:  "posts",
		label: "Post",
		repo:  st.Posts(),
		prepare: func(p *model.Post) {
			p.Slug = util.SlugFor(p.Slug, p.Title)
			p.ContentHTML = ""
		},
		view: func(p *model.Post) error {
			html, err := markup.Render(p.Content)
			if err != nil {
				return err
			}
			p.ContentHTML = html
			return nil
		},
	}.mount(r, h, requireAuth)

	resource[model.Contact, model.ContactPatch]{
		name:    "contacts",
		label:   "Contact",
		repo:    st.Contacts(),
		private: true,
	}.mount(r, h, requireAuth)

	resource[model.RadioShow, model.RadioShowPatch]{
		name:  "radio-shows",
		label: "Radio show",
		repo:  st.RadioShows(),
	}.mount(r, h, requireAuth)

	resource[model.Playlist, model.PlaylistPatch]{
		name:  "playlists",
		label: "Playlist",
		repo:  st.Playlists(),
	}.mount(r, h, requireAuth)

	resource[model.Video, model.VideoPatch]{
		name:  "videos",
		label: "Video",
		repo:  st.Videos(),
	}.mount(r, h, requireAuth)
}
