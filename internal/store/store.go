// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides the persistence layer: one Storage contract with an
// in-memory variant for tests and a SQL variant backed by SQLite or PostgreSQL.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/olegiv/olabel-go/internal/model"
)

var (
	// ErrNotFound is returned by updates that target an unknown record.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicate is returned when a unique key (such as a username) is taken.
	ErrDuplicate = errors.New("record already exists")
)

// Repository is the CRUD capability set for one content entity.
type Repository[T any, P model.Patch[T]] interface {
	// List returns all records, newest first.
	List(ctx context.Context) ([]T, error)

	// Get returns the record with the given id, or nil if there is none.
	Get(ctx context.Context, id string) (*T, error)

	// Create assigns an id and creation time, persists rec and returns it.
	Create(ctx context.Context, rec T) (T, error)

	// Update merges patch into the stored record.
	// Returns ErrNotFound if the id is unknown.
	Update(ctx context.Context, id string, patch P) (T, error)

	// Delete removes the record. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}

// AuthStore holds the admin accounts, login attempts and sessions.
type AuthStore interface {
	// GetAdminUserByUsername returns nil if the username is unknown.
	GetAdminUserByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	// CreateAdminUser returns ErrDuplicate if the username is taken.
	CreateAdminUser(ctx context.Context, u model.AdminUser) (model.AdminUser, error)
	// UpdateAdminUserLastLogin sets lastLoginAt and updatedAt to at.
	UpdateAdminUserLastLogin(ctx context.Context, username string, at time.Time) error

	RecordLoginAttempt(ctx context.Context, a model.LoginAttempt) (model.LoginAttempt, error)
	// CountFailedLoginAttempts counts failures for username with attemptedAt >= since.
	CountFailedLoginAttempts(ctx context.Context, username string, since time.Time) (int, error)
	// ListLoginAttempts returns the attempts for username, oldest first.
	ListLoginAttempts(ctx context.Context, username string) ([]model.LoginAttempt, error)

	CreateSession(ctx context.Context, s model.Session) error
	// GetSession returns nil if there is no session with that id.
	GetSession(ctx context.Context, id string) (*model.Session, error)
	// DeleteSession is idempotent.
	DeleteSession(ctx context.Context, id string) error
	// DeleteExpiredSessions removes sessions with expiresAt <= now.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Storage is the full persistence contract used by the application.
type Storage interface {
	AuthStore

	Releases() Repository[model.Release, model.ReleasePatch]
	Artists() Repository[model.Artist, model.ArtistPatch]
	Events() Repository[model.Event, model.EventPatch]
	Posts() Repository[model.Post, model.PostPatch]
	Contacts() Repository[model.Contact, model.ContactPatch]
	RadioShows() Repository[model.RadioShow, model.RadioShowPatch]
	Playlists() Repository[model.Playlist, model.PlaylistPatch]
	Videos() Repository[model.Video, model.VideoPatch]

	// GetRadioSettings returns nil until InitRadioSettings has run.
	GetRadioSettings(ctx context.Context) (*model.RadioSettings, error)
	// InitRadioSettings stores defaults unless a row already exists, and
	// returns the stored settings either way.
	InitRadioSettings(ctx context.Context, defaults model.RadioSettings) (model.RadioSettings, error)
	// UpdateRadioSettings returns ErrNotFound before initialization.
	UpdateRadioSettings(ctx context.Context, patch model.RadioSettingsPatch) (model.RadioSettings, error)

	RecordPageView(ctx context.Context, v model.PageView) (model.PageView, error)
	RecordPlay(ctx context.Context, p model.PlayCount) (model.PlayCount, error)
	StartRadioListener(ctx context.Context) (model.RadioListener, error)
	// EndRadioListener records the end of a listening session; the first end wins.
	EndRadioListener(ctx context.Context, id string) error
	// AnalyticsSummary returns totals and the topN most played releases.
	AnalyticsSummary(ctx context.Context, topN int) (model.AnalyticsSummary, error)

	Ping(ctx context.Context) error
	Close() error
}

// Kinds of storage selectable at startup.
const (
	KindSQL    = "sql"
	KindMemory = "memory"
)

// nowUTC is the creation timestamp source. Microsecond precision matches
// what PostgreSQL keeps, so records read back compare equal.
func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
