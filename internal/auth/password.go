// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth authenticates admin users: password hashing, login rate
// limiting and the lifecycle of opaque bearer sessions.
package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt cost bounds. DefaultCost matches what the site has always used.
const (
	DefaultCost = 10
	MinCost     = bcrypt.MinCost
	MaxCost     = bcrypt.MaxCost
)

// HashPassword creates a bcrypt hash of the password with the given cost.
func HashPassword(password string, cost int) (string, error) {
	if cost < MinCost || cost > MaxCost {
		return "", fmt.Errorf("bcrypt cost %d out of range [%d, %d]", cost, MinCost, MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the bcrypt hash.
// A malformed hash never matches.
func CheckPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// NeedsRehash reports whether hash was created with a cost other than cost,
// or cannot be parsed at all.
func NeedsRehash(hash string, cost int) bool {
	got, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return got != cost
}
