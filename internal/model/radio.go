// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// RadioSettings is the singleton row describing the live stream.
type RadioSettings struct {
	StreamURL        string    `json:"streamUrl"`
	IsLive           bool      `json:"isLive"`
	CurrentShowTitle *string   `json:"currentShowTitle"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// RadioSettingsPatch is a partial update of RadioSettings.
type RadioSettingsPatch struct {
	StreamURL        *string `json:"streamUrl" validate:"omitempty,url"`
	IsLive           *bool   `json:"isLive"`
	CurrentShowTitle *string `json:"currentShowTitle" validate:"omitempty,max=200"`
}

// Apply merges the non-nil fields of p into s.
func (p RadioSettingsPatch) Apply(s *RadioSettings) {
	setString(&s.StreamURL, p.StreamURL)
	setBool(&s.IsLive, p.IsLive)
	setOptional(&s.CurrentShowTitle, p.CurrentShowTitle)
}

// PageView is one recorded public page hit.
type PageView struct {
	ID       string    `json:"id"`
	Path     string    `json:"path" validate:"required,startswith=/,max=2048"`
	Referrer *string   `json:"referrer" validate:"omitempty,max=2048"`
	Browser  *string   `json:"browser"`
	OS       *string   `json:"os"`
	Device   *string   `json:"device"`
	Country  *string   `json:"country"`
	ViewedAt time.Time `json:"viewedAt"`
}

// PlayCount is one recorded play of a release.
type PlayCount struct {
	ID        string    `json:"id"`
	ReleaseID string    `json:"releaseId" validate:"required"`
	Source    *string   `json:"source" validate:"omitempty,max=50"`
	PlayedAt  time.Time `json:"playedAt"`
}

// RadioListener is one listening session on the live stream.
type RadioListener struct {
	ID        string     `json:"id"`
	StartedAt time.Time  `json:"startedAt"`
	EndedAt   *time.Time `json:"endedAt"`
}

// ReleasePlays is a release with its total play count.
type ReleasePlays struct {
	ReleaseID string `json:"releaseId"`
	Title     string `json:"title"`
	Plays     int64  `json:"plays"`
}

// AnalyticsSummary aggregates the analytics recorders.
type AnalyticsSummary struct {
	TotalPageViews      int64          `json:"totalPageViews"`
	TotalPlays          int64          `json:"totalPlays"`
	TotalRadioListeners int64          `json:"totalRadioListeners"`
	TopReleases         []ReleasePlays `json:"topReleases"`
}
