package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/store"
	"github.com/olegiv/olabel-go/internal/testutil"
)

func ptr[V any](v V) *V { return &v }

// normalizeRelease puts every time in UTC so records read back from SQL
// compare equal to the ones that were written.
func normalizeRelease(r model.Release) model.Release {
	r.CreatedAt = r.CreatedAt.UTC()
	if r.ReleaseDate != nil {
		d := r.ReleaseDate.UTC()
		r.ReleaseDate = &d
	}
	return r
}

func TestRepositoryLifecycle(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		repo := st.Releases()

		created, err := repo.Create(ctx, model.Release{
			Title:       "X",
			ArtistName:  "Y",
			ReleaseType: model.ReleaseTypeSingle,
			ReleaseDate: ptr(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)),
			Description: ptr("debut"),
		})
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.False(t, created.CreatedAt.IsZero())
		assert.Equal(t, time.UTC, created.CreatedAt.Location())

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, normalizeRelease(created), normalizeRelease(*got))
		assert.Nil(t, got.CoverURL)

		list, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, created.ID, list[0].ID)

		require.NoError(t, repo.Delete(ctx, created.ID))

		got, err = repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		// Deleting again is not an error.
		require.NoError(t, repo.Delete(ctx, created.ID))
	})
}

func TestRepositoryGetUnknown(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		got, err := st.Artists().Get(context.Background(), "does-not-exist")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRepositoryListNewestFirst(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		var ids []string
		for _, title := range []string{"first", "second", "third"} {
			v, err := st.Videos().Create(ctx, model.Video{Title: title, YouTubeURL: "https://youtu.be/abc"})
			require.NoError(t, err)
			ids = append(ids, v.ID)
			time.Sleep(2 * time.Millisecond)
		}

		list, err := st.Videos().List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{ids[2], ids[1], ids[0]}, []string{list[0].ID, list[1].ID, list[2].ID})
	})
}

func TestRepositoryListEmpty(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		list, err := st.Playlists().List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, list)
		assert.Empty(t, list)
	})
}

func TestRepositoryUpdatePartial(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		created, err := st.Events().Create(ctx, model.Event{
			Title:     "Launch",
			Venue:     "Hall",
			City:      "Berlin",
			EventDate: time.Date(2025, 9, 1, 20, 0, 0, 0, time.UTC),
			TicketURL: ptr("https://tickets.example.com/1"),
		})
		require.NoError(t, err)

		updated, err := st.Events().Update(ctx, created.ID, model.EventPatch{City: ptr("Hamburg")})
		require.NoError(t, err)
		assert.Equal(t, "Hamburg", updated.City)
		assert.Equal(t, "Launch", updated.Title)

		got, err := st.Events().Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "Hamburg", got.City)
		assert.Equal(t, "Hall", got.Venue)
		assert.True(t, got.EventDate.Equal(created.EventDate))
		assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
		require.NotNil(t, got.TicketURL)
		assert.Equal(t, "https://tickets.example.com/1", *got.TicketURL)
	})
}

func TestRepositoryUpdateUnknown(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		_, err := st.Posts().Update(context.Background(), "missing", model.PostPatch{Title: ptr("x")})
		assert.ErrorIs(t, err, store.ErrNotFound)
	})
}

func TestEveryRepositoryRoundTrips(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()

		a, err := st.Artists().Create(ctx, model.Artist{Name: "A", Slug: "a", Featured: true, Genre: ptr("Jazz")})
		require.NoError(t, err)
		gotA, err := st.Artists().Get(ctx, a.ID)
		require.NoError(t, err)
		require.NotNil(t, gotA)
		assert.True(t, gotA.Featured)
		assert.Equal(t, "Jazz", *gotA.Genre)

		p, err := st.Posts().Create(ctx, model.Post{Title: "News", Content: "# Hi", Published: true})
		require.NoError(t, err)
		gotP, err := st.Posts().Get(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, gotP)
		assert.Equal(t, "# Hi", gotP.Content)
		assert.True(t, gotP.Published)

		c, err := st.Contacts().Create(ctx, model.Contact{Name: "N", Email: "n@example.com", Message: "hello"})
		require.NoError(t, err)
		gotC, err := st.Contacts().Get(ctx, c.ID)
		require.NoError(t, err)
		require.NotNil(t, gotC)
		assert.Nil(t, gotC.Subject)
		assert.Equal(t, "hello", gotC.Message)

		s, err := st.RadioShows().Create(ctx, model.RadioShow{Title: "Show", DayOfWeek: 6, StartTime: "10:00", EndTime: "12:00"})
		require.NoError(t, err)
		gotS, err := st.RadioShows().Get(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, gotS)
		assert.Equal(t, 6, gotS.DayOfWeek)
		assert.Equal(t, "12:00", gotS.EndTime)

		pl, err := st.Playlists().Create(ctx, model.Playlist{Title: "Mix", Curator: ptr("DJ")})
		require.NoError(t, err)
		gotPl, err := st.Playlists().Get(ctx, pl.ID)
		require.NoError(t, err)
		require.NotNil(t, gotPl)
		assert.Equal(t, "DJ", *gotPl.Curator)
	})
}

func TestAdminUsers(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()

		u, err := st.CreateAdminUser(ctx, model.AdminUser{
			Username:     "admin",
			PasswordHash: "hash",
			Role:         model.RoleAdmin,
			IsActive:     true,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, u.ID)
		assert.Nil(t, u.LastLoginAt)

		_, err = st.CreateAdminUser(ctx, model.AdminUser{Username: "admin", PasswordHash: "other", Role: model.RoleEditor})
		assert.ErrorIs(t, err, store.ErrDuplicate)

		got, err := st.GetAdminUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "hash", got.PasswordHash)
		assert.True(t, got.IsActive)

		missing, err := st.GetAdminUserByUsername(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, missing)

		at := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)
		require.NoError(t, st.UpdateAdminUserLastLogin(ctx, "admin", at))
		got, err = st.GetAdminUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, got.LastLoginAt)
		assert.True(t, got.LastLoginAt.Equal(at))
		assert.True(t, got.UpdatedAt.Equal(at))

		assert.ErrorIs(t, st.UpdateAdminUserLastLogin(ctx, "nobody", at), store.ErrNotFound)
	})
}

func TestLoginAttempts(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		base := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

		record := func(user string, ok bool, at time.Time) {
			t.Helper()
			_, err := st.RecordLoginAttempt(ctx, model.LoginAttempt{
				Username:    user,
				IPAddress:   ptr("203.0.113.7"),
				Successful:  ok,
				AttemptedAt: at,
			})
			require.NoError(t, err)
		}

		record("admin", false, base.Add(-20*time.Minute))
		record("admin", false, base.Add(-10*time.Minute))
		record("admin", true, base.Add(-5*time.Minute))
		record("admin", false, base.Add(-1*time.Minute))
		record("other", false, base.Add(-1*time.Minute))

		n, err := st.CountFailedLoginAttempts(ctx, "admin", base.Add(-15*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		// The lower bound is inclusive.
		n, err = st.CountFailedLoginAttempts(ctx, "admin", base.Add(-10*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		attempts, err := st.ListLoginAttempts(ctx, "admin")
		require.NoError(t, err)
		require.Len(t, attempts, 4)
		assert.True(t, attempts[0].AttemptedAt.Equal(base.Add(-20*time.Minute)))
		assert.True(t, attempts[2].Successful)
		require.NotNil(t, attempts[0].IPAddress)
		assert.Equal(t, "203.0.113.7", *attempts[0].IPAddress)
	})
}

func TestSessions(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		now := time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)

		require.NoError(t, st.CreateSession(ctx, model.Session{ID: "live", Username: "admin", ExpiresAt: now.Add(time.Hour)}))
		require.NoError(t, st.CreateSession(ctx, model.Session{ID: "old", Username: "admin", ExpiresAt: now.Add(-time.Hour)}))
		require.NoError(t, st.CreateSession(ctx, model.Session{ID: "edge", Username: "admin", ExpiresAt: now}))

		got, err := st.GetSession(ctx, "live")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "admin", got.Username)
		assert.True(t, got.ExpiresAt.Equal(now.Add(time.Hour)))

		n, err := st.DeleteExpiredSessions(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		gone, err := st.GetSession(ctx, "old")
		require.NoError(t, err)
		assert.Nil(t, gone)

		require.NoError(t, st.DeleteSession(ctx, "live"))
		require.NoError(t, st.DeleteSession(ctx, "live"))
		got, err = st.GetSession(ctx, "live")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestRadioSettings(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()

		got, err := st.GetRadioSettings(ctx)
		require.NoError(t, err)
		assert.Nil(t, got)

		_, err = st.UpdateRadioSettings(ctx, model.RadioSettingsPatch{IsLive: ptr(true)})
		assert.ErrorIs(t, err, store.ErrNotFound)

		first, err := st.InitRadioSettings(ctx, model.RadioSettings{StreamURL: "https://stream.example.com/a"})
		require.NoError(t, err)
		assert.Equal(t, "https://stream.example.com/a", first.StreamURL)
		assert.False(t, first.IsLive)

		second, err := st.InitRadioSettings(ctx, model.RadioSettings{StreamURL: "https://stream.example.com/b", IsLive: true})
		require.NoError(t, err)
		assert.Equal(t, "https://stream.example.com/a", second.StreamURL)
		assert.False(t, second.IsLive)

		updated, err := st.UpdateRadioSettings(ctx, model.RadioSettingsPatch{
			IsLive:           ptr(true),
			CurrentShowTitle: ptr("Morning Mix"),
		})
		require.NoError(t, err)
		assert.True(t, updated.IsLive)
		assert.Equal(t, "https://stream.example.com/a", updated.StreamURL)

		got, err = st.GetRadioSettings(ctx)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.True(t, got.IsLive)
		require.NotNil(t, got.CurrentShowTitle)
		assert.Equal(t, "Morning Mix", *got.CurrentShowTitle)
	})
}

func TestAnalytics(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()

		a, err := st.Releases().Create(ctx, model.Release{Title: "Alpha", ArtistName: "X"})
		require.NoError(t, err)
		b, err := st.Releases().Create(ctx, model.Release{Title: "Beta", ArtistName: "X"})
		require.NoError(t, err)

		for _, id := range []string{a.ID, b.ID, b.ID, "unknown-release"} {
			p, err := st.RecordPlay(ctx, model.PlayCount{ReleaseID: id, Source: ptr("web")})
			require.NoError(t, err)
			assert.NotEmpty(t, p.ID)
		}

		v, err := st.RecordPageView(ctx, model.PageView{Path: "/releases", Browser: ptr("Firefox")})
		require.NoError(t, err)
		assert.NotEmpty(t, v.ID)
		assert.False(t, v.ViewedAt.IsZero())

		l, err := st.StartRadioListener(ctx)
		require.NoError(t, err)
		assert.Nil(t, l.EndedAt)
		require.NoError(t, st.EndRadioListener(ctx, l.ID))
		require.NoError(t, st.EndRadioListener(ctx, l.ID))
		assert.ErrorIs(t, st.EndRadioListener(ctx, "missing"), store.ErrNotFound)

		sum, err := st.AnalyticsSummary(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), sum.TotalPageViews)
		assert.Equal(t, int64(4), sum.TotalPlays)
		assert.Equal(t, int64(1), sum.TotalRadioListeners)
		require.Len(t, sum.TopReleases, 2)
		assert.Equal(t, model.ReleasePlays{ReleaseID: b.ID, Title: "Beta", Plays: 2}, sum.TopReleases[0])
		assert.Equal(t, int64(1), sum.TopReleases[1].Plays)

		none, err := st.AnalyticsSummary(ctx, 0)
		require.NoError(t, err)
		assert.Empty(t, none.TopReleases)
	})
}

func TestSeedAdmin(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()

		created, err := store.SeedAdmin(ctx, st, "admin", "hash")
		require.NoError(t, err)
		assert.True(t, created)

		created, err = store.SeedAdmin(ctx, st, "admin", "another")
		require.NoError(t, err)
		assert.False(t, created)

		u, err := st.GetAdminUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, u)
		assert.Equal(t, "hash", u.PasswordHash)
		assert.Equal(t, model.RoleAdmin, u.Role)
		assert.True(t, u.IsActive)
	})
}

func TestSeedDemo(t *testing.T) {
	testutil.ForEachStorage(t, func(t *testing.T, st store.Storage) {
		ctx := context.Background()
		require.NoError(t, store.SeedDemo(ctx, st))

		releases, err := st.Releases().List(ctx)
		require.NoError(t, err)
		require.NotEmpty(t, releases)

		// A second run leaves existing content alone.
		require.NoError(t, store.SeedDemo(ctx, st))
		again, err := st.Releases().List(ctx)
		require.NoError(t, err)
		assert.Len(t, again, len(releases))
	})
}

func TestNewMemoryTablesStartEmpty(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemory()

	counts := map[string]func() (int, error){
		"releases":    func() (int, error) { l, err := st.Releases().List(ctx); return len(l), err },
		"artists":     func() (int, error) { l, err := st.Artists().List(ctx); return len(l), err },
		"events":      func() (int, error) { l, err := st.Events().List(ctx); return len(l), err },
		"posts":       func() (int, error) { l, err := st.Posts().List(ctx); return len(l), err },
		"contacts":    func() (int, error) { l, err := st.Contacts().List(ctx); return len(l), err },
		"radio-shows": func() (int, error) { l, err := st.RadioShows().List(ctx); return len(l), err },
		"playlists":   func() (int, error) { l, err := st.Playlists().List(ctx); return len(l), err },
		"videos":      func() (int, error) { l, err := st.Videos().List(ctx); return len(l), err },
	}
	for name, count := range counts {
		n, err := count()
		require.NoError(t, err, name)
		assert.Zero(t, n, name)
	}

	_, err := st.Videos().Create(ctx, model.Video{Title: "Clip", YouTubeURL: "https://youtube.com/watch?v=x"})
	require.NoError(t, err)
	n, err := counts["videos"]()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
