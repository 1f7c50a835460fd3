// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the domain records of the label site: admin accounts,
// sessions and login attempts, the public content entities, radio settings
// and analytics.
package model

import "time"

// Admin roles.
const (
	RoleAdmin       = "admin"
	RoleEditor      = "editor"
	RoleContributor = "contributor"
)

// ValidRoles lists every role an admin account may hold.
var ValidRoles = []string{RoleAdmin, RoleEditor, RoleContributor}

// IsValidRole reports whether role is one of ValidRoles.
func IsValidRole(role string) bool {
	for _, r := range ValidRoles {
		if r == role {
			return true
		}
	}
	return false
}

// AdminUser is a dashboard account.
type AdminUser struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	PasswordHash string     `json:"-"` // Never expose in JSON
	Role         string     `json:"role"`
	IsActive     bool       `json:"isActive"`
	LastLoginAt  *time.Time `json:"lastLoginAt"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// IsAdmin returns true if the user has admin role.
func (u *AdminUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// LoginAttempt is an append-only record of one credential check.
type LoginAttempt struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	IPAddress   *string   `json:"ipAddress"`
	Successful  bool      `json:"successful"`
	AttemptedAt time.Time `json:"attemptedAt"`
}

// Session maps an opaque bearer token to a username until ExpiresAt.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ValidAt reports whether the session may authorize a request at now.
func (s *Session) ValidAt(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
