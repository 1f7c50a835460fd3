// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/olabel-go/internal/model"
)

// Memory is a volatile Storage kept in process memory.
// Data lives as long as the value does; it is meant for tests and demos.
type Memory struct {
	releases   *memTable[model.Release, model.ReleasePatch]
	artists    *memTable[model.Artist, model.ArtistPatch]
	events     *memTable[model.Event, model.EventPatch]
	posts      *memTable[model.Post, model.PostPatch]
	contacts   *memTable[model.Contact, model.ContactPatch]
	radioShows *memTable[model.RadioShow, model.RadioShowPatch]
	playlists  *memTable[model.Playlist, model.PlaylistPatch]
	videos     *memTable[model.Video, model.VideoPatch]

	mu             sync.RWMutex
	users          map[string]model.AdminUser // by username
	attempts       []model.LoginAttempt
	sessions       map[string]model.Session
	radio          *model.RadioSettings
	pageViews      []model.PageView
	plays          []model.PlayCount
	radioListeners map[string]model.RadioListener
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		releases:       newMemTable[model.Release, model.ReleasePatch](releaseEntity),
		artists:        newMemTable[model.Artist, model.ArtistPatch](artistEntity),
		events:         newMemTable[model.Event, model.EventPatch](eventEntity),
		posts:          newMemTable[model.Post, model.PostPatch](postEntity),
		contacts:       newMemTable[model.Contact, model.ContactPatch](contactEntity),
		radioShows:     newMemTable[model.RadioShow, model.RadioShowPatch](radioShowEntity),
		playlists:      newMemTable[model.Playlist, model.PlaylistPatch](playlistEntity),
		videos:         newMemTable[model.Video, model.VideoPatch](videoEntity),
		users:          make(map[string]model.AdminUser),
		sessions:       make(map[string]model.Session),
		radioListeners: make(map[string]model.RadioListener),
	}
}

// Releases returns the release repository.
func (m *Memory) Releases() Repository[model.Release, model.ReleasePatch] { return m.releases }

// Artists returns the artist repository.
func (m *Memory) Artists() Repository[model.Artist, model.ArtistPatch] { return m.artists }

// Events returns the event repository.
func (m *Memory) Events() Repository[model.Event, model.EventPatch] { return m.events }

// Posts returns the post repository.
func (m *Memory) Posts() Repository[model.Post, model.PostPatch] { return m.posts }

// Contacts returns the contact repository.
func (m *Memory) Contacts() Repository[model.Contact, model.ContactPatch] { return m.contacts }

// RadioShows returns the radio show repository.
func (m *Memory) RadioShows() Repository[model.RadioShow, model.RadioShowPatch] {
	return m.radioShows
}

// Playlists returns the playlist repository.
func (m *Memory) Playlists() Repository[model.Playlist, model.PlaylistPatch] { return m.playlists }

// Videos returns the video repository.
func (m *Memory) Videos() Repository[model.Video, model.VideoPatch] { return m.videos }

// GetAdminUserByUsername implements AuthStore.
func (m *Memory) GetAdminUserByUsername(_ context.Context, username string) (*model.AdminUser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// CreateAdminUser implements AuthStore.
func (m *Memory) CreateAdminUser(_ context.Context, u model.AdminUser) (model.AdminUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.users[u.Username]; exists {
		return model.AdminUser{}, ErrDuplicate
	}
	now := nowUTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	m.users[u.Username] = u
	return u, nil
}

// UpdateAdminUserLastLogin implements AuthStore.
func (m *Memory) UpdateAdminUserLastLogin(_ context.Context, username string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[username]
	if !ok {
		return ErrNotFound
	}
	at = at.UTC()
	u.LastLoginAt = &at
	u.UpdatedAt = at
	m.users[username] = u
	return nil
}

// RecordLoginAttempt implements AuthStore.
func (m *Memory) RecordLoginAttempt(_ context.Context, a model.LoginAttempt) (model.LoginAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a.ID = uuid.NewString()
	a.AttemptedAt = a.AttemptedAt.UTC()
	m.attempts = append(m.attempts, a)
	return a, nil
}

// CountFailedLoginAttempts implements AuthStore.
func (m *Memory) CountFailedLoginAttempts(_ context.Context, username string, since time.Time) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, a := range m.attempts {
		if a.Username == username && !a.Successful && !a.AttemptedAt.Before(since) {
			n++
		}
	}
	return n, nil
}

// ListLoginAttempts implements AuthStore.
func (m *Memory) ListLoginAttempts(_ context.Context, username string) ([]model.LoginAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]model.LoginAttempt, 0)
	for _, a := range m.attempts {
		if a.Username == username {
			out = append(out, a)
		}
	}
	return out, nil
}

// CreateSession implements AuthStore.
func (m *Memory) CreateSession(_ context.Context, s model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[s.ID]; exists {
		return ErrDuplicate
	}
	s.ExpiresAt = s.ExpiresAt.UTC()
	m.sessions[s.ID] = s
	return nil
}

// GetSession implements AuthStore.
func (m *Memory) GetSession(_ context.Context, id string) (*model.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// DeleteSession implements AuthStore.
func (m *Memory) DeleteSession(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

// DeleteExpiredSessions implements AuthStore.
func (m *Memory) DeleteExpiredSessions(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for id, s := range m.sessions {
		if !s.ValidAt(now) {
			delete(m.sessions, id)
			n++
		}
	}
	return n, nil
}

// GetRadioSettings implements Storage.
func (m *Memory) GetRadioSettings(_ context.Context) (*model.RadioSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.radio == nil {
		return nil, nil
	}
	s := *m.radio
	return &s, nil
}

// InitRadioSettings implements Storage.
func (m *Memory) InitRadioSettings(_ context.Context, defaults model.RadioSettings) (model.RadioSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.radio == nil {
		defaults.UpdatedAt = nowUTC()
		m.radio = &defaults
	}
	return *m.radio, nil
}

// UpdateRadioSettings implements Storage.
func (m *Memory) UpdateRadioSettings(_ context.Context, patch model.RadioSettingsPatch) (model.RadioSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.radio == nil {
		return model.RadioSettings{}, ErrNotFound
	}
	s := *m.radio
	patch.Apply(&s)
	s.UpdatedAt = nowUTC()
	m.radio = &s
	return s, nil
}

// RecordPageView implements Storage.
func (m *Memory) RecordPageView(_ context.Context, v model.PageView) (model.PageView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	v.ID = uuid.NewString()
	v.ViewedAt = nowUTC()
	m.pageViews = append(m.pageViews, v)
	return v, nil
}

// RecordPlay implements Storage.
func (m *Memory) RecordPlay(_ context.Context, p model.PlayCount) (model.PlayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p.ID = uuid.NewString()
	p.PlayedAt = nowUTC()
	m.plays = append(m.plays, p)
	return p, nil
}

// StartRadioListener implements Storage.
func (m *Memory) StartRadioListener(_ context.Context) (model.RadioListener, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l := model.RadioListener{ID: uuid.NewString(), StartedAt: nowUTC()}
	m.radioListeners[l.ID] = l
	return l, nil
}

// EndRadioListener implements Storage.
func (m *Memory) EndRadioListener(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.radioListeners[id]
	if !ok {
		return ErrNotFound
	}
	if l.EndedAt == nil {
		end := nowUTC()
		l.EndedAt = &end
		m.radioListeners[id] = l
	}
	return nil
}

// AnalyticsSummary implements Storage.
func (m *Memory) AnalyticsSummary(ctx context.Context, topN int) (model.AnalyticsSummary, error) {
	m.mu.RLock()
	counts := make(map[string]int64)
	for _, p := range m.plays {
		counts[p.ReleaseID]++
	}
	summary := model.AnalyticsSummary{
		TotalPageViews:      int64(len(m.pageViews)),
		TotalPlays:          int64(len(m.plays)),
		TotalRadioListeners: int64(len(m.radioListeners)),
	}
	m.mu.RUnlock()

	top := make([]model.ReleasePlays, 0, len(counts))
	for id, n := range counts {
		rp := model.ReleasePlays{ReleaseID: id, Plays: n}
		if r, err := m.releases.Get(ctx, id); err == nil && r != nil {
			rp.Title = r.Title
		}
		top = append(top, rp)
	}
	slices.SortFunc(top, func(a, b model.ReleasePlays) int {
		if c := cmp.Compare(b.Plays, a.Plays); c != 0 {
			return c
		}
		return cmp.Compare(a.ReleaseID, b.ReleaseID)
	})
	top = top[:min(max(topN, 0), len(top))]
	summary.TopReleases = top
	return summary, nil
}

// Ping implements Storage.
func (m *Memory) Ping(context.Context) error { return nil }

// Close implements Storage.
func (m *Memory) Close() error { return nil }

// memTable is one entity collection in memory.
type memTable[T any, P model.Patch[T]] struct {
	entity entity[T]
	mu     sync.RWMutex
	rows   map[string]T
}

func newMemTable[T any, P model.Patch[T]](e entity[T]) *memTable[T, P] {
	return &memTable[T, P]{entity: e, rows: make(map[string]T)}
}

func (t *memTable[T, P]) List(_ context.Context) ([]T, error) {
	t.mu.RLock()
	out := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	t.mu.RUnlock()

	slices.SortFunc(out, func(a, b T) int {
		aID, aAt := t.entity.ident(&a)
		bID, bAt := t.entity.ident(&b)
		if c := bAt.Compare(*aAt); c != 0 {
			return c
		}
		return cmp.Compare(*aID, *bID)
	})
	return out, nil
}

func (t *memTable[T, P]) Get(_ context.Context, id string) (*T, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.rows[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (t *memTable[T, P]) Create(_ context.Context, rec T) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	id, createdAt := t.entity.ident(&rec)
	*id = uuid.NewString()
	*createdAt = nowUTC()
	t.rows[*id] = rec
	return rec, nil
}

func (t *memTable[T, P]) Update(_ context.Context, id string, patch P) (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	r, ok := t.rows[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	patch.Apply(&r)
	t.rows[id] = r
	return r, nil
}

func (t *memTable[T, P]) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.rows, id)
	return nil
}

var _ Storage = (*Memory)(nil)
