package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/olabel-go/internal/model"
	"github.com/olegiv/olabel-go/internal/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestService(t *testing.T) (*Service, *store.Memory, *fakeClock) {
	t.Helper()
	st := store.NewMemory()
	clock := &fakeClock{now: time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC)}
	policy := DefaultPolicy()
	policy.BcryptCost = MinCost
	svc := NewService(st, policy,
		WithClock(clock.Now),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return svc, st, clock
}

func createAdmin(t *testing.T, svc *Service, st store.AuthStore, username, password string, active bool) {
	t.Helper()
	hash, err := svc.HashPassword(password)
	require.NoError(t, err)
	_, err = st.CreateAdminUser(context.Background(), model.AdminUser{
		Username:     username,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		IsActive:     active,
	})
	require.NoError(t, err)
}

func TestValidateCredentials_Success(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	res, err := svc.ValidateCredentials(ctx, "admin", "secret123", "203.0.113.7")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Empty(t, res.Message)

	u, err := st.GetAdminUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u.LastLoginAt)
	assert.True(t, u.LastLoginAt.Equal(clock.Now()))

	attempts, err := st.ListLoginAttempts(ctx, "admin")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.True(t, attempts[0].Successful)
	require.NotNil(t, attempts[0].IPAddress)
	assert.Equal(t, "203.0.113.7", *attempts[0].IPAddress)
}

func TestValidateCredentials_IndistinguishableFailures(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	unknown, err := svc.ValidateCredentials(ctx, "nonexistent", "x", "")
	require.NoError(t, err)
	wrong, err := svc.ValidateCredentials(ctx, "admin", "wrongpassword", "")
	require.NoError(t, err)

	assert.False(t, unknown.Valid)
	assert.False(t, wrong.Valid)
	assert.Equal(t, MsgInvalidCredentials, unknown.Message)
	assert.Equal(t, unknown.Message, wrong.Message)

	// Unknown usernames still leave an attempt behind, without an IP.
	attempts, err := st.ListLoginAttempts(ctx, "nonexistent")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Successful)
	assert.Nil(t, attempts[0].IPAddress)
}

func TestValidateCredentials_Inactive(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "retired", "secret123", false)

	res, err := svc.ValidateCredentials(ctx, "retired", "secret123", "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, MsgAccountInactive, res.Message)

	u, err := st.GetAdminUserByUsername(ctx, "retired")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)

	attempts, err := st.ListLoginAttempts(ctx, "retired")
	require.NoError(t, err)
	require.Len(t, attempts, 1)
	assert.False(t, attempts[0].Successful)
}

func TestValidateCredentials_Lockout(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	for i := 0; i < MaxLoginAttempts; i++ {
		res, err := svc.ValidateCredentials(ctx, "admin", "wrong", "")
		require.NoError(t, err)
		assert.Equal(t, MsgInvalidCredentials, res.Message)
		clock.Advance(time.Minute)
	}

	before := testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues(OutcomeLocked))

	// Even the right password is refused while locked out.
	res, err := svc.ValidateCredentials(ctx, "admin", "secret123", "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Equal(t, "Too many failed login attempts. Please try again in 15 minutes.", res.Message)
	assert.InDelta(t, before+1, testutil.ToFloat64(LoginAttemptsTotal.WithLabelValues(OutcomeLocked)), 0.001)

	// The blocked call is still recorded.
	attempts, err := st.ListLoginAttempts(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, attempts, MaxLoginAttempts+1)
	assert.False(t, attempts[len(attempts)-1].Successful)

	u, err := st.GetAdminUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Nil(t, u.LastLoginAt)
}

func TestValidateCredentials_WindowSlides(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	for i := 0; i < MaxLoginAttempts; i++ {
		_, err := svc.ValidateCredentials(ctx, "admin", "wrong", "")
		require.NoError(t, err)
	}

	clock.Advance(LockoutWindow + time.Second)

	res, err := svc.ValidateCredentials(ctx, "admin", "secret123", "")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateCredentials_LockoutIsPerUsername(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)
	createAdmin(t, svc, st, "editor", "secret456", true)

	for i := 0; i < MaxLoginAttempts; i++ {
		_, err := svc.ValidateCredentials(ctx, "admin", "wrong", "")
		require.NoError(t, err)
	}

	res, err := svc.ValidateCredentials(ctx, "editor", "secret456", "")
	require.NoError(t, err)
	assert.True(t, res.Valid)
}

func TestValidateCredentials_LastLoginMonotonic(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	var last time.Time
	for i := 0; i < 3; i++ {
		callTime := clock.Now()
		res, err := svc.ValidateCredentials(ctx, "admin", "secret123", "")
		require.NoError(t, err)
		require.True(t, res.Valid)

		u, err := st.GetAdminUserByUsername(ctx, "admin")
		require.NoError(t, err)
		require.NotNil(t, u.LastLoginAt)
		assert.False(t, u.LastLoginAt.Before(callTime), "lastLoginAt %v before call time %v", *u.LastLoginAt, callTime)
		if i > 0 {
			assert.True(t, u.LastLoginAt.After(last), "lastLoginAt %v not after previous %v", *u.LastLoginAt, last)
		}
		last = *u.LastLoginAt
		clock.Advance(time.Minute)
	}
}

type failingStore struct {
	*store.Memory
}

var errBoom = errors.New("boom")

func (failingStore) CountFailedLoginAttempts(context.Context, string, time.Time) (int, error) {
	return 0, errBoom
}

func (failingStore) GetSession(context.Context, string) (*model.Session, error) {
	return nil, errBoom
}

func TestStorageErrorsPropagate(t *testing.T) {
	svc := NewService(failingStore{store.NewMemory()}, DefaultPolicy())
	ctx := context.Background()

	_, err := svc.ValidateCredentials(ctx, "admin", "x", "")
	assert.ErrorIs(t, err, errBoom)

	_, _, err = svc.ValidateSession(ctx, "token")
	assert.ErrorIs(t, err, errBoom)
}

func TestSessionLifecycle(t *testing.T) {
	svc, st, clock := newTestService(t)
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "admin")
	require.NoError(t, err)
	assert.Len(t, token, 2*TokenBytes)

	sess, err := st.GetSession(ctx, token)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.True(t, sess.ExpiresAt.Equal(clock.Now().Add(SessionTTL)))

	username, ok, err := svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "admin", username)

	// One second before expiry the session still works.
	clock.Advance(SessionTTL - time.Second)
	_, ok, err = svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.True(t, ok)

	clock.Advance(time.Second)
	_, ok, err = svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)

	// Expired sessions are removed on access.
	sess, err = st.GetSession(ctx, token)
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestValidateSession_Unknown(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, token := range []string{"", "does-not-exist"} {
		username, ok, err := svc.ValidateSession(context.Background(), token)
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, username)
	}
}

func TestCreateSession_UniqueTokens(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		token, err := svc.CreateSession(ctx, "admin")
		require.NoError(t, err)
		assert.False(t, seen[token], "duplicate token %s", token)
		seen[token] = true
	}
}

func TestDeleteSession_Idempotent(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	token, err := svc.CreateSession(ctx, "admin")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(ctx, token))
	require.NoError(t, svc.DeleteSession(ctx, token))

	_, ok, err := svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSweepExpiredSessions(t *testing.T) {
	svc, _, clock := newTestService(t)
	ctx := context.Background()

	old, err := svc.CreateSession(ctx, "admin")
	require.NoError(t, err)
	clock.Advance(12 * time.Hour)
	fresh, err := svc.CreateSession(ctx, "admin")
	require.NoError(t, err)
	clock.Advance(12 * time.Hour)

	n, err := svc.SweepExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, ok, err := svc.ValidateSession(ctx, fresh)
	require.NoError(t, err)
	assert.True(t, ok)
	_, ok, err = svc.ValidateSession(ctx, old)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLoginScenario(t *testing.T) {
	svc, st, _ := newTestService(t)
	ctx := context.Background()
	createAdmin(t, svc, st, "admin", "secret123", true)

	res, err := svc.ValidateCredentials(ctx, "admin", "secret123", "")
	require.NoError(t, err)
	require.True(t, res.Valid)

	token, err := svc.CreateSession(ctx, "admin")
	require.NoError(t, err)

	username, ok, err := svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "admin", username)

	require.NoError(t, svc.DeleteSession(ctx, token))

	username, ok, err = svc.ValidateSession(ctx, token)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, username)
}

func TestSessionsCreatedMetric(t *testing.T) {
	svc, _, _ := newTestService(t)
	before := testutil.ToFloat64(SessionsCreatedTotal)

	_, err := svc.CreateSession(context.Background(), "admin")
	require.NoError(t, err)

	assert.InDelta(t, before+1, testutil.ToFloat64(SessionsCreatedTotal), 0.001)
}
