// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for the olabel project.
package testutil

import (
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/olabel-go/internal/store"
)

// TestLogger creates a silent test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestDB creates a temporary SQLite database with migrations applied.
// The database is closed when the test finishes.
func TestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "olabel-test.db")
	db, dialect, err := store.NewDB(path)
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := store.Migrate(db, dialect); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return db
}

// TestSQLStore returns a SQL store over a fresh temporary database.
func TestSQLStore(t *testing.T) *store.SQL {
	t.Helper()
	return store.NewSQL(TestDB(t), store.DialectSQLite)
}

// ForEachStorage runs fn as a subtest against a fresh instance of every
// storage variant.
func ForEachStorage(t *testing.T, fn func(t *testing.T, st store.Storage)) {
	t.Helper()
	t.Run(store.KindMemory, func(t *testing.T) {
		fn(t, store.NewMemory())
	})
	t.Run(store.KindSQL, func(t *testing.T) {
		fn(t, TestSQLStore(t))
	})
}
