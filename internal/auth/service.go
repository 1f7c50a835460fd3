// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/olabel-go/internal/model"
)

// Login failure messages returned to clients.
const (
	// MsgInvalidCredentials is shared by unknown usernames and wrong passwords.
	MsgInvalidCredentials = "Invalid credentials"
	MsgAccountInactive    = "Account is inactive"
)

// Fixed login policy.
const (
	MaxLoginAttempts = 5
	LockoutWindow    = 15 * time.Minute
	SessionTTL       = 24 * time.Hour
)

// Store is the subset of the persistence layer the service needs.
type Store interface {
	GetAdminUserByUsername(ctx context.Context, username string) (*model.AdminUser, error)
	UpdateAdminUserLastLogin(ctx context.Context, username string, at time.Time) error
	RecordLoginAttempt(ctx context.Context, a model.LoginAttempt) (model.LoginAttempt, error)
	CountFailedLoginAttempts(ctx context.Context, username string, since time.Time) (int, error)
	CreateSession(ctx context.Context, s model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Policy holds the tunables of the service.
type Policy struct {
	MaxAttempts int
	Window      time.Duration
	SessionTTL  time.Duration
	BcryptCost  int
}

// DefaultPolicy returns 5 failures per 15 minutes, 24h sessions and the
// default bcrypt cost.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: MaxLoginAttempts,
		Window:      LockoutWindow,
		SessionTTL:  SessionTTL,
		BcryptCost:  DefaultCost,
	}
}

// LockoutMessage is returned while a username is rate limited.
func (p Policy) LockoutMessage() string {
	return fmt.Sprintf("Too many failed login attempts. Please try again in %d minutes.",
		int(p.Window/time.Minute))
}

// Result is the outcome of a credential check.
type Result struct {
	Valid   bool
	Message string
}

// Service authenticates admin users against a Store.
type Service struct {
	store  Store
	policy Policy
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used for security events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// NewService creates an authentication service.
func NewService(st Store, policy Policy, opts ...Option) *Service {
	s := &Service{
		store:  st,
		policy: policy,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Policy returns the policy the service enforces.
func (s *Service) Policy() Policy { return s.policy }

// HashPassword hashes password with the configured cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.policy.BcryptCost)
}

// ValidateCredentials checks a login and records exactly one LoginAttempt.
// The failure count and the new attempt are not written atomically, so two
// concurrent logins may both pass the limit check.
func (s *Service) ValidateCredentials(ctx context.Context, username, password, ip string) (Result, error) {
	now := s.now().UTC()

	failed, err := s.store.CountFailedLoginAttempts(ctx, username, now.Add(-s.policy.Window))
	if err != nil {
		return Result{}, fmt.Errorf("counting failed attempts: %w", err)
	}
	if failed >= s.policy.MaxAttempts {
		if err := s.record(ctx, username, ip, false, now); err != nil {
			return Result{}, err
		}
		LoginAttemptsTotal.WithLabelValues(OutcomeLocked).Inc()
		s.logger.Warn("login blocked: too many failed attempts",
			"username", username, "ip", ip, "failed_attempts", failed)
		return Result{Message: s.policy.LockoutMessage()}, nil
	}

	user, err := s.store.GetAdminUserByUsername(ctx, username)
	if err != nil {
		return Result{}, fmt.Errorf("looking up admin user: %w", err)
	}
	if user == nil {
		if err := s.record(ctx, username, ip, false, now); err != nil {
			return Result{}, err
		}
		LoginAttemptsTotal.WithLabelValues(OutcomeInvalid).Inc()
		return Result{Message: MsgInvalidCredentials}, nil
	}
	if !user.IsActive {
		if err := s.record(ctx, username, ip, false, now); err != nil {
			return Result{}, err
		}
		LoginAttemptsTotal.WithLabelValues(OutcomeInactive).Inc()
		return Result{Message: MsgAccountInactive}, nil
	}

	ok := CheckPassword(user.PasswordHash, password)
	if err := s.record(ctx, username, ip, ok, now); err != nil {
		return Result{}, err
	}
	if !ok {
		LoginAttemptsTotal.WithLabelValues(OutcomeInvalid).Inc()
		s.logger.Info("login failed: wrong password", "username", username, "ip", ip)
		return Result{Message: MsgInvalidCredentials}, nil
	}

	if err := s.store.UpdateAdminUserLastLogin(ctx, username, now); err != nil {
		return Result{}, fmt.Errorf("updating last login: %w", err)
	}
	LoginAttemptsTotal.WithLabelValues(OutcomeSuccess).Inc()
	if NeedsRehash(user.PasswordHash, s.policy.BcryptCost) {
		s.logger.Info("password hash uses an outdated cost", "username", username)
	}
	return Result{Valid: true}, nil
}

func (s *Service) record(ctx context.Context, username, ip string, ok bool, at time.Time) error {
	a := model.LoginAttempt{
		Username:    username,
		Successful:  ok,
		AttemptedAt: at,
	}
	if ip != "" {
		a.IPAddress = &ip
	}
	if _, err := s.store.RecordLoginAttempt(ctx, a); err != nil {
		return fmt.Errorf("recording login attempt: %w", err)
	}
	return nil
}

// CreateSession issues a new session for username and returns its token.
func (s *Service) CreateSession(ctx context.Context, username string) (string, error) {
	token, err := NewToken()
	if err != nil {
		return "", err
	}
	sess := model.Session{
		ID:        token,
		Username:  username,
		ExpiresAt: s.now().UTC().Add(s.policy.SessionTTL),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	SessionsCreatedTotal.Inc()
	return token, nil
}

// ValidateSession resolves a token to its username. An expired session is
// deleted and reported as not ok.
func (s *Service) ValidateSession(ctx context.Context, token string) (string, bool, error) {
	if token == "" {
		return "", false, nil
	}
	sess, err := s.store.GetSession(ctx, token)
	if err != nil {
		return "", false, fmt.Errorf("getting session: %w", err)
	}
	if sess == nil {
		return "", false, nil
	}
	if !sess.ValidAt(s.now()) {
		if err := s.store.DeleteSession(ctx, token); err != nil {
			return "", false, fmt.Errorf("deleting expired session: %w", err)
		}
		SessionsExpiredTotal.Inc()
		return "", false, nil
	}
	return sess.Username, true, nil
}

// DeleteSession ends a session. Unknown tokens are ignored.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	if err := s.store.DeleteSession(ctx, token); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

// SweepExpiredSessions removes every session that has expired by now.
func (s *Service) SweepExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteExpiredSessions(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweeping expired sessions: %w", err)
	}
	if n > 0 {
		SessionsExpiredTotal.Add(float64(n))
		s.logger.Info("swept expired sessions", "count", n)
	}
	return n, nil
}
