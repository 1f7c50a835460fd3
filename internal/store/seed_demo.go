// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/olabel-go/internal/model"
)

// SeedDemo fills an empty store with sample label content so a fresh
// instance has something to browse. It does nothing once releases exist.
func SeedDemo(ctx context.Context, st Storage) error {
	existing, err := st.Releases().List(ctx)
	if err != nil {
		return fmt.Errorf("checking for releases: %w", err)
	}
	if len(existing) > 0 {
		slog.Info("content already exists, skipping demo seed")
		return nil
	}

	slog.Info("seeding demo content")

	for _, a := range demoArtists() {
		if _, err := st.Artists().Create(ctx, a); err != nil {
			return fmt.Errorf("seeding demo artist %q: %w", a.Name, err)
		}
	}
	for _, r := range demoReleases() {
		if _, err := st.Releases().Create(ctx, r); err != nil {
			return fmt.Errorf("seeding demo release %q: %w", r.Title, err)
		}
	}
	for _, e := range demoEvents() {
		if _, err := st.Events().Create(ctx, e); err != nil {
			return fmt.Errorf("seeding demo event %q: %w", e.Title, err)
		}
	}
	for _, p := range demoPosts() {
		if _, err := st.Posts().Create(ctx, p); err != nil {
			return fmt.Errorf("seeding demo post %q: %w", p.Title, err)
		}
	}
	for _, s := range demoRadioShows() {
		if _, err := st.RadioShows().Create(ctx, s); err != nil {
			return fmt.Errorf("seeding demo radio show %q: %w", s.Title, err)
		}
	}

	slog.Info("demo content seeded successfully")
	return nil
}

func ptr[V any](v V) *V { return &v }

func demoArtists() []model.Artist {
	return []model.Artist{
		{
			Name:     "Night Transit",
			Slug:     "night-transit",
			Bio:      ptr("Berlin-based duo working with modular synths and field recordings."),
			Genre:    ptr("Electronic"),
			Featured: true,
		},
		{
			Name:  "Mara Okafor",
			Slug:  "mara-okafor",
			Bio:   ptr("Singer-songwriter blending highlife guitar with late-night soul."),
			Genre: ptr("Soul"),
		},
	}
}

func demoReleases() []model.Release {
	return []model.Release{
		{
			Title:       "Platform Nine",
			ArtistName:  "Night Transit",
			Slug:        "platform-nine",
			ReleaseType: model.ReleaseTypeAlbum,
			ReleaseDate: ptr(time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC)),
			Description: ptr("Ten tracks recorded over one winter of night trains."),
			Featured:    true,
		},
		{
			Title:       "Lagos Blue",
			ArtistName:  "Mara Okafor",
			Slug:        "lagos-blue",
			ReleaseType: model.ReleaseTypeSingle,
			ReleaseDate: ptr(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)),
		},
	}
}

func demoEvents() []model.Event {
	return []model.Event{
		{
			Title:     "Platform Nine Release Night",
			Venue:     "Panorama Hall",
			City:      "Berlin",
			EventDate: time.Date(2025, 4, 5, 20, 0, 0, 0, time.UTC),
		},
	}
}

func demoPosts() []model.Post {
	return []model.Post{
		{
			Title:     "Welcome to the label",
			Slug:      "welcome-to-the-label",
			Content:   "We release music we love.\n\n## What's next\n\nNew records every season.",
			Excerpt:   ptr("We release music we love."),
			Published: true,
		},
	}
}

func demoRadioShows() []model.RadioShow {
	return []model.RadioShow{
		{
			Title:     "Night Shift",
			Host:      ptr("Night Transit"),
			DayOfWeek: int(time.Friday),
			StartTime: "22:00",
			EndTime:   "23:59",
		},
	}
}
