package model

import (
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestReleasePatchApply(t *testing.T) {
	date := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	r := Release{
		ID:         "r1",
		Title:      "Old",
		ArtistName: "Someone",
		CoverURL:   strPtr("https://cdn.example.com/a.jpg"),
	}
	featured := true

	ReleasePatch{
		Title:       strPtr("New"),
		ReleaseDate: &date,
		Featured:    &featured,
	}.Apply(&r)

	if r.Title != "New" {
		t.Errorf("Title = %q, want %q", r.Title, "New")
	}
	if r.ArtistName != "Someone" {
		t.Errorf("ArtistName changed to %q", r.ArtistName)
	}
	if r.ReleaseDate == nil || !r.ReleaseDate.Equal(date) {
		t.Errorf("ReleaseDate = %v, want %v", r.ReleaseDate, date)
	}
	if r.CoverURL == nil || *r.CoverURL != "https://cdn.example.com/a.jpg" {
		t.Errorf("CoverURL = %v, want unchanged", r.CoverURL)
	}
	if !r.Featured {
		t.Error("Featured = false, want true")
	}
	if r.ID != "r1" {
		t.Errorf("ID changed to %q", r.ID)
	}
}

func TestPatchApplyCopiesValues(t *testing.T) {
	bio := "first"
	a := Artist{Name: "A"}
	ArtistPatch{Bio: &bio}.Apply(&a)

	bio = "mutated"
	if a.Bio == nil || *a.Bio != "first" {
		t.Errorf("Bio = %v, want copy of patch value", a.Bio)
	}
}

func TestRadioShowPatchApply(t *testing.T) {
	day := 0
	s := RadioShow{Title: "Night Shift", DayOfWeek: 5, StartTime: "22:00", EndTime: "23:59"}
	RadioShowPatch{DayOfWeek: &day, EndTime: strPtr("23:30")}.Apply(&s)

	if s.DayOfWeek != 0 {
		t.Errorf("DayOfWeek = %d, want 0", s.DayOfWeek)
	}
	if s.StartTime != "22:00" || s.EndTime != "23:30" {
		t.Errorf("times = %s-%s, want 22:00-23:30", s.StartTime, s.EndTime)
	}
}

func TestRadioSettingsPatchApply(t *testing.T) {
	live := true
	s := RadioSettings{StreamURL: "https://stream.example.com/live"}
	RadioSettingsPatch{IsLive: &live, CurrentShowTitle: strPtr("Morning Mix")}.Apply(&s)

	if !s.IsLive {
		t.Error("IsLive = false, want true")
	}
	if s.CurrentShowTitle == nil || *s.CurrentShowTitle != "Morning Mix" {
		t.Errorf("CurrentShowTitle = %v", s.CurrentShowTitle)
	}
	if s.StreamURL != "https://stream.example.com/live" {
		t.Errorf("StreamURL changed to %q", s.StreamURL)
	}
}
