// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olegiv/olabel-go/internal/model"
)

// SQL is the durable Storage backed by SQLite or PostgreSQL.
// Queries are written with ? placeholders and rebound for PostgreSQL.
type SQL struct {
	db      *sql.DB
	dialect Dialect

	releases   *sqlRepo[model.Release, model.ReleasePatch]
	artists    *sqlRepo[model.Artist, model.ArtistPatch]
	events     *sqlRepo[model.Event, model.EventPatch]
	posts      *sqlRepo[model.Post, model.PostPatch]
	contacts   *sqlRepo[model.Contact, model.ContactPatch]
	radioShows *sqlRepo[model.RadioShow, model.RadioShowPatch]
	playlists  *sqlRepo[model.Playlist, model.PlaylistPatch]
	videos     *sqlRepo[model.Video, model.VideoPatch]
}

// NewSQL wraps an open, migrated database.
func NewSQL(db *sql.DB, dialect Dialect) *SQL {
	s := &SQL{db: db, dialect: dialect}
	s.releases = newSQLRepo[model.Release, model.ReleasePatch](s, releaseEntity)
	s.artists = newSQLRepo[model.Artist, model.ArtistPatch](s, artistEntity)
	s.events = newSQLRepo[model.Event, model.EventPatch](s, eventEntity)
	s.posts = newSQLRepo[model.Post, model.PostPatch](s, postEntity)
	s.contacts = newSQLRepo[model.Contact, model.ContactPatch](s, contactEntity)
	s.radioShows = newSQLRepo[model.RadioShow, model.RadioShowPatch](s, radioShowEntity)
	s.playlists = newSQLRepo[model.Playlist, model.PlaylistPatch](s, playlistEntity)
	s.videos = newSQLRepo[model.Video, model.VideoPatch](s, videoEntity)
	return s
}

// DB returns the underlying connection pool.
func (s *SQL) DB() *sql.DB { return s.db }

// rebind rewrites ? placeholders into $n for PostgreSQL.
func (s *SQL) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// Releases returns the release repository.
func (s *SQL) Releases() Repository[model.Release, model.ReleasePatch] { return s.releases }

// Artists returns the artist repository.
func (s *SQL) Artists() Repository[model.Artist, model.ArtistPatch] { return s.artists }

// Events returns the event repository.
func (s *SQL) Events() Repository[model.Event, model.EventPatch] { return s.events }

// Posts returns the post repository.
func (s *SQL) Posts() Repository[model.Post, model.PostPatch] { return s.posts }

// Contacts returns the contact repository.
func (s *SQL) Contacts() Repository[model.Contact, model.ContactPatch] { return s.contacts }

// RadioShows returns the radio show repository.
func (s *SQL) RadioShows() Repository[model.RadioShow, model.RadioShowPatch] {
	return s.radioShows
}

// Playlists returns the playlist repository.
func (s *SQL) Playlists() Repository[model.Playlist, model.PlaylistPatch] { return s.playlists }

// Videos returns the video repository.
func (s *SQL) Videos() Repository[model.Video, model.VideoPatch] { return s.videos }

// GetAdminUserByUsername implements AuthStore.
func (s *SQL) GetAdminUserByUsername(ctx context.Context, username string) (*model.AdminUser, error) {
	var u model.AdminUser
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, username, password_hash, role, is_active, last_login_at, created_at, updated_at
		FROM admin_users WHERE username = ?`), username).
		Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.IsActive, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting admin user: %w", err)
	}
	return &u, nil
}

// CreateAdminUser implements AuthStore.
func (s *SQL) CreateAdminUser(ctx context.Context, u model.AdminUser) (model.AdminUser, error) {
	now := nowUTC()
	u.ID = uuid.NewString()
	u.CreatedAt = now
	u.UpdatedAt = now
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO admin_users (id, username, password_hash, role, is_active, last_login_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.Username, u.PasswordHash, u.Role, u.IsActive, nullable(u.LastLoginAt), u.CreatedAt, u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return model.AdminUser{}, ErrDuplicate
		}
		return model.AdminUser{}, fmt.Errorf("creating admin user: %w", err)
	}
	return u, nil
}

// UpdateAdminUserLastLogin implements AuthStore.
func (s *SQL) UpdateAdminUserLastLogin(ctx context.Context, username string, at time.Time) error {
	at = at.UTC()
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE admin_users SET last_login_at = ?, updated_at = ? WHERE username = ?`),
		at, at, username)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLoginAttempt implements AuthStore.
func (s *SQL) RecordLoginAttempt(ctx context.Context, a model.LoginAttempt) (model.LoginAttempt, error) {
	a.ID = uuid.NewString()
	a.AttemptedAt = a.AttemptedAt.UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO login_attempts (id, username, ip_address, successful, attempted_at)
		VALUES (?, ?, ?, ?, ?)`),
		a.ID, a.Username, nullable(a.IPAddress), a.Successful, a.AttemptedAt)
	if err != nil {
		return model.LoginAttempt{}, fmt.Errorf("recording login attempt: %w", err)
	}
	return a, nil
}

// CountFailedLoginAttempts implements AuthStore.
func (s *SQL) CountFailedLoginAttempts(ctx context.Context, username string, since time.Time) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*) FROM login_attempts
		WHERE username = ? AND successful = ? AND attempted_at >= ?`),
		username, false, since.UTC()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting failed login attempts: %w", err)
	}
	return n, nil
}

// ListLoginAttempts implements AuthStore.
func (s *SQL) ListLoginAttempts(ctx context.Context, username string) ([]model.LoginAttempt, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, username, ip_address, successful, attempted_at FROM login_attempts
		WHERE username = ? ORDER BY attempted_at ASC, id ASC`), username)
	if err != nil {
		return nil, fmt.Errorf("listing login attempts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]model.LoginAttempt, 0)
	for rows.Next() {
		var a model.LoginAttempt
		if err := rows.Scan(&a.ID, &a.Username, &a.IPAddress, &a.Successful, &a.AttemptedAt); err != nil {
			return nil, fmt.Errorf("scanning login attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateSession implements AuthStore.
func (s *SQL) CreateSession(ctx context.Context, sess model.Session) error {
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO sessions (id, username, expires_at) VALUES (?, ?, ?)`),
		sess.ID, sess.Username, sess.ExpiresAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// GetSession implements AuthStore.
func (s *SQL) GetSession(ctx context.Context, id string) (*model.Session, error) {
	var sess model.Session
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT id, username, expires_at FROM sessions WHERE id = ?`), id).
		Scan(&sess.ID, &sess.Username, &sess.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting session: %w", err)
	}
	return &sess, nil
}

// DeleteSession implements AuthStore.
func (s *SQL) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE id = ?`), id); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// DeleteExpiredSessions implements AuthStore.
func (s *SQL) DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM sessions WHERE expires_at <= ?`), now.UTC())
	if err != nil {
		return 0, fmt.Errorf("deleting expired sessions: %w", err)
	}
	return res.RowsAffected()
}

// GetRadioSettings implements Storage.
func (s *SQL) GetRadioSettings(ctx context.Context) (*model.RadioSettings, error) {
	return s.getRadioSettings(ctx, s.db)
}

func (s *SQL) getRadioSettings(ctx context.Context, q querier) (*model.RadioSettings, error) {
	var rs model.RadioSettings
	err := q.QueryRowContext(ctx,
		`SELECT stream_url, is_live, current_show_title, updated_at FROM radio_settings WHERE id = 1`).
		Scan(&rs.StreamURL, &rs.IsLive, &rs.CurrentShowTitle, &rs.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting radio settings: %w", err)
	}
	return &rs, nil
}

// InitRadioSettings implements Storage.
func (s *SQL) InitRadioSettings(ctx context.Context, defaults model.RadioSettings) (model.RadioSettings, error) {
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO radio_settings (id, stream_url, is_live, current_show_title, updated_at)
		VALUES (1, ?, ?, ?, ?) ON CONFLICT (id) DO NOTHING`),
		defaults.StreamURL, defaults.IsLive, nullable(defaults.CurrentShowTitle), nowUTC())
	if err != nil {
		return model.RadioSettings{}, fmt.Errorf("initializing radio settings: %w", err)
	}
	rs, err := s.GetRadioSettings(ctx)
	if err != nil {
		return model.RadioSettings{}, err
	}
	if rs == nil {
		return model.RadioSettings{}, ErrNotFound
	}
	return *rs, nil
}

// UpdateRadioSettings implements Storage.
func (s *SQL) UpdateRadioSettings(ctx context.Context, patch model.RadioSettingsPatch) (model.RadioSettings, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.RadioSettings{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rs, err := s.getRadioSettings(ctx, tx)
	if err != nil {
		return model.RadioSettings{}, err
	}
	if rs == nil {
		return model.RadioSettings{}, ErrNotFound
	}
	patch.Apply(rs)
	rs.UpdatedAt = nowUTC()

	_, err = tx.ExecContext(ctx, s.rebind(`
		UPDATE radio_settings SET stream_url = ?, is_live = ?, current_show_title = ?, updated_at = ?
		WHERE id = 1`),
		rs.StreamURL, rs.IsLive, nullable(rs.CurrentShowTitle), rs.UpdatedAt)
	if err != nil {
		return model.RadioSettings{}, fmt.Errorf("updating radio settings: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return model.RadioSettings{}, fmt.Errorf("committing radio settings: %w", err)
	}
	return *rs, nil
}

// RecordPageView implements Storage.
func (s *SQL) RecordPageView(ctx context.Context, v model.PageView) (model.PageView, error) {
	v.ID = uuid.NewString()
	v.ViewedAt = nowUTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO page_views (id, path, referrer, browser, os, device, country, viewed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		v.ID, v.Path, nullable(v.Referrer), nullable(v.Browser), nullable(v.OS),
		nullable(v.Device), nullable(v.Country), v.ViewedAt)
	if err != nil {
		return model.PageView{}, fmt.Errorf("recording page view: %w", err)
	}
	return v, nil
}

// RecordPlay implements Storage.
func (s *SQL) RecordPlay(ctx context.Context, p model.PlayCount) (model.PlayCount, error) {
	p.ID = uuid.NewString()
	p.PlayedAt = nowUTC()
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO play_counts (id, release_id, source, played_at) VALUES (?, ?, ?, ?)`),
		p.ID, p.ReleaseID, nullable(p.Source), p.PlayedAt)
	if err != nil {
		return model.PlayCount{}, fmt.Errorf("recording play: %w", err)
	}
	return p, nil
}

// StartRadioListener implements Storage.
func (s *SQL) StartRadioListener(ctx context.Context) (model.RadioListener, error) {
	l := model.RadioListener{ID: uuid.NewString(), StartedAt: nowUTC()}
	_, err := s.db.ExecContext(ctx, s.rebind(
		`INSERT INTO radio_listeners (id, started_at) VALUES (?, ?)`), l.ID, l.StartedAt)
	if err != nil {
		return model.RadioListener{}, fmt.Errorf("starting radio listener: %w", err)
	}
	return l, nil
}

// EndRadioListener implements Storage.
func (s *SQL) EndRadioListener(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(
		`UPDATE radio_listeners SET ended_at = COALESCE(ended_at, ?) WHERE id = ?`), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("ending radio listener: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// AnalyticsSummary implements Storage.
func (s *SQL) AnalyticsSummary(ctx context.Context, topN int) (model.AnalyticsSummary, error) {
	var sum model.AnalyticsSummary
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM page_views),
			(SELECT COUNT(*) FROM play_counts),
			(SELECT COUNT(*) FROM radio_listeners)`).
		Scan(&sum.TotalPageViews, &sum.TotalPlays, &sum.TotalRadioListeners)
	if err != nil {
		return model.AnalyticsSummary{}, fmt.Errorf("counting analytics: %w", err)
	}

	sum.TopReleases = make([]model.ReleasePlays, 0)
	if topN <= 0 {
		return sum, nil
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT p.release_id, COALESCE(r.title, ''), COUNT(*) AS plays
		FROM play_counts p
		LEFT JOIN releases r ON r.id = p.release_id
		GROUP BY p.release_id, r.title
		ORDER BY plays DESC, p.release_id ASC
		LIMIT ?`), topN)
	if err != nil {
		return model.AnalyticsSummary{}, fmt.Errorf("listing top releases: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var rp model.ReleasePlays
		if err := rows.Scan(&rp.ReleaseID, &rp.Title, &rp.Plays); err != nil {
			return model.AnalyticsSummary{}, fmt.Errorf("scanning top release: %w", err)
		}
		sum.TopReleases = append(sum.TopReleases, rp)
	}
	return sum, rows.Err()
}

// Ping implements Storage.
func (s *SQL) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close implements Storage.
func (s *SQL) Close() error { return s.db.Close() }

// sqlRepo implements Repository for one entity table.
type sqlRepo[T any, P model.Patch[T]] struct {
	s      *SQL
	entity entity[T]

	selectList string
	insert     string
	update     string
}

func newSQLRepo[T any, P model.Patch[T]](s *SQL, e entity[T]) *sqlRepo[T, P] {
	cols := strings.Join(e.columns, ", ")
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(e.columns)), ", ")

	// id and created_at never change after insert.
	sets := make([]string, 0, len(e.columns)-2)
	for _, c := range e.columns[2:] {
		sets = append(sets, c+" = ?")
	}

	return &sqlRepo[T, P]{
		s:          s,
		entity:     e,
		selectList: "SELECT " + cols + " FROM " + e.table,
		insert:     s.rebind("INSERT INTO " + e.table + " (" + cols + ") VALUES (" + marks + ")"),
		update:     s.rebind("UPDATE " + e.table + " SET " + strings.Join(sets, ", ") + " WHERE id = ?"),
	}
}

func (r *sqlRepo[T, P]) List(ctx context.Context) ([]T, error) {
	rows, err := r.s.db.QueryContext(ctx, r.selectList+" ORDER BY created_at DESC, id ASC")
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", r.entity.table, err)
	}
	defer func() { _ = rows.Close() }()

	out := make([]T, 0)
	for rows.Next() {
		var rec T
		if err := rows.Scan(r.entity.fields(&rec)...); err != nil {
			return nil, fmt.Errorf("scanning %s: %w", r.entity.table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *sqlRepo[T, P]) Get(ctx context.Context, id string) (*T, error) {
	return r.get(ctx, r.s.db, id)
}

func (r *sqlRepo[T, P]) get(ctx context.Context, q querier, id string) (*T, error) {
	var rec T
	err := q.QueryRowContext(ctx, r.s.rebind(r.selectList+" WHERE id = ?"), id).
		Scan(r.entity.fields(&rec)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s: %w", r.entity.table, err)
	}
	return &rec, nil
}

func (r *sqlRepo[T, P]) Create(ctx context.Context, rec T) (T, error) {
	id, createdAt := r.entity.ident(&rec)
	*id = uuid.NewString()
	*createdAt = nowUTC()

	if _, err := r.s.db.ExecContext(ctx, r.insert, r.entity.values(&rec)...); err != nil {
		var zero T
		return zero, fmt.Errorf("creating %s: %w", r.entity.table, err)
	}
	return rec, nil
}

func (r *sqlRepo[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T

	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := r.get(ctx, tx, id)
	if err != nil {
		return zero, err
	}
	if rec == nil {
		return zero, ErrNotFound
	}
	patch.Apply(rec)

	args := append(r.entity.values(rec)[2:], id)
	if _, err := tx.ExecContext(ctx, r.update, args...); err != nil {
		return zero, fmt.Errorf("updating %s: %w", r.entity.table, err)
	}
	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("committing %s: %w", r.entity.table, err)
	}
	return *rec, nil
}

func (r *sqlRepo[T, P]) Delete(ctx context.Context, id string) error {
	if _, err := r.s.db.ExecContext(ctx, r.s.rebind("DELETE FROM "+r.entity.table+" WHERE id = ?"), id); err != nil {
		return fmt.Errorf("deleting %s: %w", r.entity.table, err)
	}
	return nil
}

var _ Storage = (*SQL)(nil)
