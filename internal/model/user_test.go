package model

import (
	"testing"
	"time"
)

func TestAdminUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role string
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "editor role", role: RoleEditor, want: false},
		{name: "contributor role", role: RoleContributor, want: false},
		{name: "empty role", role: "", want: false},
		{name: "Admin uppercase", role: "Admin", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &AdminUser{Role: tt.role}
			if got := u.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range ValidRoles {
		if !IsValidRole(role) {
			t.Errorf("IsValidRole(%q) = false, want true", role)
		}
	}
	if IsValidRole("owner") {
		t.Error("IsValidRole(\"owner\") = true, want false")
	}
}

func TestSessionValidAt(t *testing.T) {
	expires := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	s := &Session{ID: "t", Username: "admin", ExpiresAt: expires}

	if !s.ValidAt(expires.Add(-time.Second)) {
		t.Error("session should be valid before expiry")
	}
	if s.ValidAt(expires) {
		t.Error("session must be invalid exactly at expiry")
	}
	if s.ValidAt(expires.Add(time.Minute)) {
		t.Error("session must be invalid after expiry")
	}
}
