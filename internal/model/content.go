// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Release types.
const (
	ReleaseTypeSingle = "single"
	ReleaseTypeEP     = "ep"
	ReleaseTypeAlbum  = "album"
)

// Patch is a partial update of a record of type T.
// Nil fields leave the record unchanged.
type Patch[T any] interface {
	Apply(*T)
}

// Release is a single, EP or album put out by the label.
type Release struct {
	ID            string     `json:"id"`
	Title         string     `json:"title" validate:"required,max=200"`
	ArtistName    string     `json:"artistName" validate:"required,max=200"`
	Slug          string     `json:"slug" validate:"omitempty,max=200,slug"`
	ReleaseType   string     `json:"releaseType" validate:"omitempty,oneof=single ep album"`
	ReleaseDate   *time.Time `json:"releaseDate"`
	CoverURL      *string    `json:"coverUrl" validate:"omitempty,url"`
	Description   *string    `json:"description"`
	SpotifyURL    *string    `json:"spotifyUrl" validate:"omitempty,url"`
	AppleMusicURL *string    `json:"appleMusicUrl" validate:"omitempty,url"`
	BandcampURL   *string    `json:"bandcampUrl" validate:"omitempty,url"`
	Featured      bool       `json:"featured"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// ReleasePatch is a partial update of a Release.
type ReleasePatch struct {
	Title         *string    `json:"title" validate:"omitempty,min=1,max=200"`
	ArtistName    *string    `json:"artistName" validate:"omitempty,min=1,max=200"`
	Slug          *string    `json:"slug" validate:"omitempty,max=200,slug"`
	ReleaseType   *string    `json:"releaseType" validate:"omitempty,oneof=single ep album"`
	ReleaseDate   *time.Time `json:"releaseDate"`
	CoverURL      *string    `json:"coverUrl" validate:"omitempty,url"`
	Description   *string    `json:"description"`
	SpotifyURL    *string    `json:"spotifyUrl" validate:"omitempty,url"`
	AppleMusicURL *string    `json:"appleMusicUrl" validate:"omitempty,url"`
	BandcampURL   *string    `json:"bandcampUrl" validate:"omitempty,url"`
	Featured      *bool      `json:"featured"`
}

// Apply merges the non-nil fields of p into r.
func (p ReleasePatch) Apply(r *Release) {
	setString(&r.Title, p.Title)
	setString(&r.ArtistName, p.ArtistName)
	setString(&r.Slug, p.Slug)
	setString(&r.ReleaseType, p.ReleaseType)
	setOptional(&r.ReleaseDate, p.ReleaseDate)
	setOptional(&r.CoverURL, p.CoverURL)
	setOptional(&r.Description, p.Description)
	setOptional(&r.SpotifyURL, p.SpotifyURL)
	setOptional(&r.AppleMusicURL, p.AppleMusicURL)
	setOptional(&r.BandcampURL, p.BandcampURL)
	setBool(&r.Featured, p.Featured)
}

// Artist is a label roster entry.
type Artist struct {
	ID           string    `json:"id"`
	Name         string    `json:"name" validate:"required,max=200"`
	Slug         string    `json:"slug" validate:"omitempty,max=200,slug"`
	Bio          *string   `json:"bio"`
	ImageURL     *string   `json:"imageUrl" validate:"omitempty,url"`
	Genre        *string   `json:"genre" validate:"omitempty,max=100"`
	WebsiteURL   *string   `json:"websiteUrl" validate:"omitempty,url"`
	InstagramURL *string   `json:"instagramUrl" validate:"omitempty,url"`
	SpotifyURL   *string   `json:"spotifyUrl" validate:"omitempty,url"`
	Featured     bool      `json:"featured"`
	CreatedAt    time.Time `json:"createdAt"`
}

// ArtistPatch is a partial update of an Artist.
type ArtistPatch struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=200"`
	Slug         *string `json:"slug" validate:"omitempty,max=200,slug"`
	Bio          *string `json:"bio"`
	ImageURL     *string `json:"imageUrl" validate:"omitempty,url"`
	Genre        *string `json:"genre" validate:"omitempty,max=100"`
	WebsiteURL   *string `json:"websiteUrl" validate:"omitempty,url"`
	InstagramURL *string `json:"instagramUrl" validate:"omitempty,url"`
	SpotifyURL   *string `json:"spotifyUrl" validate:"omitempty,url"`
	Featured     *bool   `json:"featured"`
}

// Apply merges the non-nil fields of p into a.
func (p ArtistPatch) Apply(a *Artist) {
	setString(&a.Name, p.Name)
	setString(&a.Slug, p.Slug)
	setOptional(&a.Bio, p.Bio)
	setOptional(&a.ImageURL, p.ImageURL)
	setOptional(&a.Genre, p.Genre)
	setOptional(&a.WebsiteURL, p.WebsiteURL)
	setOptional(&a.InstagramURL, p.InstagramURL)
	setOptional(&a.SpotifyURL, p.SpotifyURL)
	setBool(&a.Featured, p.Featured)
}

// Event is a live date.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Venue       string    `json:"venue" validate:"required,max=200"`
	City        string    `json:"city" validate:"required,max=100"`
	EventDate   time.Time `json:"eventDate" validate:"required"`
	TicketURL   *string   `json:"ticketUrl" validate:"omitempty,url"`
	Description *string   `json:"description"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EventPatch is a partial update of an Event.
type EventPatch struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=200"`
	Venue       *string    `json:"venue" validate:"omitempty,min=1,max=200"`
	City        *string    `json:"city" validate:"omitempty,min=1,max=100"`
	EventDate   *time.Time `json:"eventDate"`
	TicketURL   *string    `json:"ticketUrl" validate:"omitempty,url"`
	Description *string    `json:"description"`
	ImageURL    *string    `json:"imageUrl" validate:"omitempty,url"`
}

// Apply merges the non-nil fields of p into e.
func (p EventPatch) Apply(e *Event) {
	setString(&e.Title, p.Title)
	setString(&e.Venue, p.Venue)
	setString(&e.City, p.City)
	if p.EventDate != nil {
		e.EventDate = *p.EventDate
	}
	setOptional(&e.TicketURL, p.TicketURL)
	setOptional(&e.Description, p.Description)
	setOptional(&e.ImageURL, p.ImageURL)
}

// Post is a news item. Content is Markdown.
type Post struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Slug        string    `json:"slug" validate:"omitempty,max=200,slug"`
	Content     string    `json:"content" validate:"required"`
	ContentHTML string    `json:"contentHtml,omitempty"` // rendered on read, never stored
	Excerpt     *string   `json:"excerpt" validate:"omitempty,max=500"`
	CoverURL    *string   `json:"coverUrl" validate:"omitempty,url"`
	Author      *string   `json:"author" validate:"omitempty,max=100"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PostPatch is a partial update of a Post.
type PostPatch struct {
	Title     *string `json:"title" validate:"omitempty,min=1,max=200"`
	Slug      *string `json:"slug" validate:"omitempty,max=200,slug"`
	Content   *string `json:"content" validate:"omitempty,min=1"`
	Excerpt   *string `json:"excerpt" validate:"omitempty,max=500"`
	CoverURL  *string `json:"coverUrl" validate:"omitempty,url"`
	Author    *string `json:"author" validate:"omitempty,max=100"`
	Published *bool   `json:"published"`
}

// Apply merges the non-nil fields of p into post.
func (p PostPatch) Apply(post *Post) {
	setString(&post.Title, p.Title)
	setString(&post.Slug, p.Slug)
	setString(&post.Content, p.Content)
	setOptional(&post.Excerpt, p.Excerpt)
	setOptional(&post.CoverURL, p.CoverURL)
	setOptional(&post.Author, p.Author)
	setBool(&post.Published, p.Published)
}

// Contact is a contact-form submission.
type Contact struct {
	ID        string    `json:"id"`
	Name      string    `json:"name" validate:"required,max=100"`
	Email     string    `json:"email" validate:"required,email,max=254"`
	Subject   *string   `json:"subject" validate:"omitempty,max=200"`
	Message   string    `json:"message" validate:"required,max=5000"`
	CreatedAt time.Time `json:"createdAt"`
}

// ContactPatch is a partial update of a Contact.
type ContactPatch struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=100"`
	Email   *string `json:"email" validate:"omitempty,email,max=254"`
	Subject *string `json:"subject" validate:"omitempty,max=200"`
	Message *string `json:"message" validate:"omitempty,min=1,max=5000"`
}

// Apply merges the non-nil fields of p into c.
func (p ContactPatch) Apply(c *Contact) {
	setString(&c.Name, p.Name)
	setString(&c.Email, p.Email)
	setOptional(&c.Subject, p.Subject)
	setString(&c.Message, p.Message)
}

// RadioShow is a slot in the weekly radio schedule.
// DayOfWeek follows time.Weekday (0 = Sunday); times are "HH:MM".
type RadioShow struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Host        *string   `json:"host" validate:"omitempty,max=100"`
	Description *string   `json:"description"`
	DayOfWeek   int       `json:"dayOfWeek" validate:"min=0,max=6"`
	StartTime   string    `json:"startTime" validate:"required,datetime=15:04"`
	EndTime     string    `json:"endTime" validate:"required,datetime=15:04"`
	ImageURL    *string   `json:"imageUrl" validate:"omitempty,url"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RadioShowPatch is a partial update of a RadioShow.
type RadioShowPatch struct {
	Title       *string `json:"title" validate:"omitempty,min=1,max=200"`
	Host        *string `json:"host" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	DayOfWeek   *int    `json:"dayOfWeek" validate:"omitempty,min=0,max=6"`
	StartTime   *string `json:"startTime" validate:"omitempty,datetime=15:04"`
	EndTime     *string `json:"endTime" validate:"omitempty,datetime=15:04"`
	ImageURL    *string `json:"imageUrl" validate:"omitempty,url"`
}

// Apply merges the non-nil fields of p into s.
func (p RadioShowPatch) Apply(s *RadioShow) {
	setString(&s.Title, p.Title)
	setOptional(&s.Host, p.Host)
	setOptional(&s.Description, p.Description)
	if p.DayOfWeek != nil {
		s.DayOfWeek = *p.DayOfWeek
	}
	setString(&s.StartTime, p.StartTime)
	setString(&s.EndTime, p.EndTime)
	setOptional(&s.ImageURL, p.ImageURL)
}

// Playlist is a curated streaming playlist.
type Playlist struct {
	ID            string    `json:"id"`
	Title         string    `json:"title" validate:"required,max=200"`
	Description   *string   `json:"description"`
	CoverURL      *string   `json:"coverUrl" validate:"omitempty,url"`
	SpotifyURL    *string   `json:"spotifyUrl" validate:"omitempty,url"`
	AppleMusicURL *string   `json:"appleMusicUrl" validate:"omitempty,url"`
	Curator       *string   `json:"curator" validate:"omitempty,max=100"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PlaylistPatch is a partial update of a Playlist.
type PlaylistPatch struct {
	Title         *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description   *string `json:"description"`
	CoverURL      *string `json:"coverUrl" validate:"omitempty,url"`
	SpotifyURL    *string `json:"spotifyUrl" validate:"omitempty,url"`
	AppleMusicURL *string `json:"appleMusicUrl" validate:"omitempty,url"`
	Curator       *string `json:"curator" validate:"omitempty,max=100"`
}

// Apply merges the non-nil fields of p into pl.
func (p PlaylistPatch) Apply(pl *Playlist) {
	setString(&pl.Title, p.Title)
	setOptional(&pl.Description, p.Description)
	setOptional(&pl.CoverURL, p.CoverURL)
	setOptional(&pl.SpotifyURL, p.SpotifyURL)
	setOptional(&pl.AppleMusicURL, p.AppleMusicURL)
	setOptional(&pl.Curator, p.Curator)
}

// Video is an embedded music video.
type Video struct {
	ID           string    `json:"id"`
	Title        string    `json:"title" validate:"required,max=200"`
	YouTubeURL   string    `json:"youtubeUrl" validate:"required,url"`
	ThumbnailURL *string   `json:"thumbnailUrl" validate:"omitempty,url"`
	Description  *string   `json:"description"`
	ArtistName   *string   `json:"artistName" validate:"omitempty,max=200"`
	CreatedAt    time.Time `json:"createdAt"`
}

// VideoPatch is a partial update of a Video.
type VideoPatch struct {
	Title        *string `json:"title" validate:"omitempty,min=1,max=200"`
	YouTubeURL   *string `json:"youtubeUrl" validate:"omitempty,url"`
	ThumbnailURL *string `json:"thumbnailUrl" validate:"omitempty,url"`
	Description  *string `json:"description"`
	ArtistName   *string `json:"artistName" validate:"omitempty,max=200"`
}

// Apply merges the non-nil fields of p into v.
func (p VideoPatch) Apply(v *Video) {
	setString(&v.Title, p.Title)
	setString(&v.YouTubeURL, p.YouTubeURL)
	setOptional(&v.ThumbnailURL, p.ThumbnailURL)
	setOptional(&v.Description, p.Description)
	setOptional(&v.ArtistName, p.ArtistName)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

// setOptional replaces a nullable field; a nil patch value keeps the old one.
func setOptional[V any](dst **V, v *V) {
	if v != nil {
		c := *v
		*dst = &c
	}
}
