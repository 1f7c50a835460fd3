// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/olegiv/olabel-go/internal/model"
)

// SeedAdmin creates the bootstrap admin account unless one with the same
// username exists. It reports whether an account was created.
func SeedAdmin(ctx context.Context, st AuthStore, username, passwordHash string) (bool, error) {
	existing, err := st.GetAdminUserByUsername(ctx, username)
	if err != nil {
		return false, fmt.Errorf("checking for admin user: %w", err)
	}
	if existing != nil {
		slog.Info("admin user already exists, skipping seed", "username", username)
		return false, nil
	}

	u, err := st.CreateAdminUser(ctx, model.AdminUser{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
		IsActive:     true,
	})
	if errors.Is(err, ErrDuplicate) {
		// Another instance seeded concurrently.
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", u.ID, "username", u.Username)
	return true, nil
}
