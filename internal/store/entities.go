// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"time"

	"github.com/olegiv/olabel-go/internal/model"
)

// entity maps a content type onto its table. The first two columns are
// always id and created_at, matching the order returned by fields and values.
type entity[T any] struct {
	table   string
	columns []string
	// fields returns scan destinations for columns.
	fields func(*T) []any
	// values returns the bind arguments for columns.
	values func(*T) []any
	// ident exposes the id and creation time assigned on create.
	ident func(*T) (*string, *time.Time)
}

// nullable turns an optional field into a bind argument.
func nullable[V any](v *V) any {
	if v == nil {
		return nil
	}
	return *v
}

var releaseEntity = entity[model.Release]{
	table: "releases",
	columns: []string{"id", "created_at", "title", "artist_name", "slug", "release_type",
		"release_date", "cover_url", "description", "spotify_url", "apple_music_url",
		"bandcamp_url", "featured"},
	fields: func(r *model.Release) []any {
		return []any{&r.ID, &r.CreatedAt, &r.Title, &r.ArtistName, &r.Slug, &r.ReleaseType,
			&r.ReleaseDate, &r.CoverURL, &r.Description, &r.SpotifyURL, &r.AppleMusicURL,
			&r.BandcampURL, &r.Featured}
	},
	values: func(r *model.Release) []any {
		return []any{r.ID, r.CreatedAt, r.Title, r.ArtistName, r.Slug, r.ReleaseType,
			nullable(r.ReleaseDate), nullable(r.CoverURL), nullable(r.Description),
			nullable(r.SpotifyURL), nullable(r.AppleMusicURL), nullable(r.BandcampURL), r.Featured}
	},
	ident: func(r *model.Release) (*string, *time.Time) { return &r.ID, &r.CreatedAt },
}

var artistEntity = entity[model.Artist]{
	table: "artists",
	columns: []string{"id", "created_at", "name", "slug", "bio", "image_url", "genre",
		"website_url", "instagram_url", "spotify_url", "featured"},
	fields: func(a *model.Artist) []any {
		return []any{&a.ID, &a.CreatedAt, &a.Name, &a.Slug, &a.Bio, &a.ImageURL, &a.Genre,
			&a.WebsiteURL, &a.InstagramURL, &a.SpotifyURL, &a.Featured}
	},
	values: func(a *model.Artist) []any {
		return []any{a.ID, a.CreatedAt, a.Name, a.Slug, nullable(a.Bio), nullable(a.ImageURL),
			nullable(a.Genre), nullable(a.WebsiteURL), nullable(a.InstagramURL),
			nullable(a.SpotifyURL), a.Featured}
	},
	ident: func(a *model.Artist) (*string, *time.Time) { return &a.ID, &a.CreatedAt },
}

var eventEntity = entity[model.Event]{
	table: "events",
	columns: []string{"id", "created_at", "title", "venue", "city", "event_date",
		"ticket_url", "description", "image_url"},
	fields: func(e *model.Event) []any {
		return []any{&e.ID, &e.CreatedAt, &e.Title, &e.Venue, &e.City, &e.EventDate,
			&e.TicketURL, &e.Description, &e.ImageURL}
	},
	values: func(e *model.Event) []any {
		return []any{e.ID, e.CreatedAt, e.Title, e.Venue, e.City, e.EventDate.UTC(),
			nullable(e.TicketURL), nullable(e.Description), nullable(e.ImageURL)}
	},
	ident: func(e *model.Event) (*string, *time.Time) { return &e.ID, &e.CreatedAt },
}

var postEntity = entity[model.Post]{
	table: "posts",
	columns: []string{"id", "created_at", "title", "slug", "content", "excerpt",
		"cover_url", "author", "published"},
	fields: func(p *model.Post) []any {
		return []any{&p.ID, &p.CreatedAt, &p.Title, &p.Slug, &p.Content, &p.Excerpt,
			&p.CoverURL, &p.Author, &p.Published}
	},
	values: func(p *model.Post) []any {
		return []any{p.ID, p.CreatedAt, p.Title, p.Slug, p.Content, nullable(p.Excerpt),
			nullable(p.CoverURL), nullable(p.Author), p.Published}
	},
	ident: func(p *model.Post) (*string, *time.Time) { return &p.ID, &p.CreatedAt },
}

var contactEntity = entity[model.Contact]{
	table:   "contacts",
	columns: []string{"id", "created_at", "name", "email", "subject", "message"},
	fields: func(c *model.Contact) []any {
		return []any{&c.ID, &c.CreatedAt, &c.Name, &c.Email, &c.Subject, &c.Message}
	},
	values: func(c *model.Contact) []any {
		return []any{c.ID, c.CreatedAt, c.Name, c.Email, nullable(c.Subject), c.Message}
	},
	ident: func(c *model.Contact) (*string, *time.Time) { return &c.ID, &c.CreatedAt },
}

var radioShowEntity = entity[model.RadioShow]{
	table: "radio_shows",
	columns: []string{"id", "created_at", "title", "host", "description", "day_of_week",
		"start_time", "end_time", "image_url"},
	fields: func(s *model.RadioShow) []any {
		return []any{&s.ID, &s.CreatedAt, &s.Title, &s.Host, &s.Description, &s.DayOfWeek,
			&s.StartTime, &s.EndTime, &s.ImageURL}
	},
	values: func(s *model.RadioShow) []any {
		return []any{s.ID, s.CreatedAt, s.Title, nullable(s.Host), nullable(s.Description),
			s.DayOfWeek, s.StartTime, s.EndTime, nullable(s.ImageURL)}
	},
	ident: func(s *model.RadioShow) (*string, *time.Time) { return &s.ID, &s.CreatedAt },
}

var playlistEntity = entity[model.Playlist]{
	table: "playlists",
	columns: []string{"id", "created_at", "title", "description", "cover_url",
		"spotify_url", "apple_music_url", "curator"},
	fields: func(p *model.Playlist) []any {
		return []any{&p.ID, &p.CreatedAt, &p.Title, &p.Description, &p.CoverURL,
			&p.SpotifyURL, &p.AppleMusicURL, &p.Curator}
	},
	values: func(p *model.Playlist) []any {
		return []any{p.ID, p.CreatedAt, p.Title, nullable(p.Description), nullable(p.CoverURL),
			nullable(p.SpotifyURL), nullable(p.AppleMusicURL), nullable(p.Curator)}
	},
	ident: func(p *model.Playlist) (*string, *time.Time) { return &p.ID, &p.CreatedAt },
}

var videoEntity = entity[model.Video]{
	table: "videos",
	columns: []string{"id", "created_at", "title", "youtube_url", "thumbnail_url",
		"description", "artist_name"},
	fields: func(v *model.Video) []any {
		return []any{&v.ID, &v.CreatedAt, &v.Title, &v.YouTubeURL, &v.ThumbnailURL,
			&v.Description, &v.ArtistName}
	},
	values: func(v *model.Video) []any {
		return []any{v.ID, v.CreatedAt, v.Title, v.YouTubeURL, nullable(v.ThumbnailURL),
			nullable(v.Description), nullable(v.ArtistName)}
	},
	ident: func(v *model.Video) (*string, *time.Time) { return &v.ID, &v.CreatedAt },
}
