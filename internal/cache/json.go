// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var lookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "olabel_cache_lookups_total",
		Help: "Total number of cache lookups by result",
	},
	[]string{"result"}, // hit, miss, error
)

// GetOrLoad returns the JSON value cached under key, or calls load, caches
// its result for ttl and returns it. Cache failures fall through to load;
// a nil cache always loads.
func GetOrLoad[T any](ctx context.Context, c Cache, key string, ttl time.Duration, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	data, err := c.Get(ctx, key)
	switch {
	case err == nil:
		var v T
		if jsonErr := json.Unmarshal(data, &v); jsonErr == nil {
			lookupsTotal.WithLabelValues("hit").Inc()
			return v, nil
		}
		lookupsTotal.WithLabelValues("error").Inc()
	case errors.Is(err, ErrCacheMiss):
		lookupsTotal.WithLabelValues("miss").Inc()
	default:
		lookupsTotal.WithLabelValues("error").Inc()
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	if data, err := json.Marshal(v); err == nil {
		_ = c.Set(ctx, key, data, ttl)
	}
	return v, nil
}
