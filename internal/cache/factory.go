// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"fmt"
	"time"
)

// Config selects and tunes a cache backend.
type Config struct {
	// RedisURL selects the Redis backend when set, e.g. redis://localhost:6379/0.
	RedisURL string
	// Prefix namespaces Redis keys.
	Prefix     string
	DefaultTTL time.Duration
	// MaxSize bounds the memory backend (0 = unlimited).
	MaxSize int
}

// New creates a Redis cache when cfg.RedisURL is set and a memory cache
// otherwise. It returns the backend name alongside the cache.
func New(cfg Config) (Cache, string, error) {
	if cfg.RedisURL != "" {
		opts := DefaultRedisOptions()
		opts.URL = cfg.RedisURL
		if cfg.Prefix != "" {
			opts.Prefix = cfg.Prefix
		}
		if cfg.DefaultTTL > 0 {
			opts.DefaultTTL = cfg.DefaultTTL
		}
		c, err := NewRedisCache(opts)
		if err != nil {
			return nil, "", fmt.Errorf("connecting to redis: %w", err)
		}
		return c, BackendRedis, nil
	}

	return NewMemoryCache(MemoryOptions{
		DefaultTTL:      cfg.DefaultTTL,
		MaxSize:         cfg.MaxSize,
		CleanupInterval: time.Minute,
	}), BackendMemory, nil
}

// Backend names.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)
