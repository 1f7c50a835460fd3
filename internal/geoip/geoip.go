// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package geoip resolves visitor addresses to ISO country codes using a
// MaxMind GeoLite2-Country database. Without a database every lookup
// returns an empty code.
package geoip

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/olegiv/olabel-go/internal/util"
)

// Lookup handles IP to country lookup. The zero value is disabled.
type Lookup struct {
	mu        sync.RWMutex
	db        *maxminddb.Reader
	dbPath    string
	dbModTime time.Time
}

// countryRecord matches the GeoLite2-Country database structure.
type countryRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// Open loads the database at path. An empty path yields a disabled Lookup.
func Open(path string) (*Lookup, error) {
	l := &Lookup{dbPath: path}
	if path == "" {
		return l, nil
	}
	if err := l.load(); err != nil {
		return l, err
	}
	return l, nil
}

// load opens or reopens the database. Caller must hold the write lock or
// own l exclusively.
func (l *Lookup) load() error {
	info, err := os.Stat(l.dbPath)
	if err != nil {
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}
	if l.db != nil && info.ModTime().Equal(l.dbModTime) {
		return nil
	}

	db, err := maxminddb.Open(l.dbPath)
	if err != nil {
		return fmt.Errorf("opening GeoIP database: %w", err)
	}
	if l.db != nil {
		_ = l.db.Close()
	}
	l.db = db
	l.dbModTime = info.ModTime()
	return nil
}

// Reload reopens the database if the file changed since it was loaded.
func (l *Lookup) Reload() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.dbPath == "" {
		return nil
	}
	return l.load()
}

// Enabled reports whether a database is loaded.
func (l *Lookup) Enabled() bool {
	if l == nil {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.db != nil
}

// Country returns the two-letter ISO code for ip, or "" when it is private,
// invalid, unknown, or no database is loaded.
func (l *Lookup) Country(ip string) string {
	if l == nil || util.IsPrivateIP(ip) {
		return ""
	}
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return ""
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.db == nil {
		return ""
	}

	var rec countryRecord
	if err := l.db.Lookup(parsed, &rec); err != nil {
		return ""
	}
	return rec.Country.ISOCode
}

// Close releases the database.
func (l *Lookup) Close() error {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}
