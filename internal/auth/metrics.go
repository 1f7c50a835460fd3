// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login outcomes used as the outcome label of LoginAttemptsTotal.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
	OutcomeInactive = "inactive"
	OutcomeLocked   = "locked"
)

var (
	// LoginAttemptsTotal counts credential checks by outcome.
	LoginAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "olabel_login_attempts_total",
			Help: "Total number of admin login attempts by outcome",
		},
		[]string{"outcome"},
	)

	// SessionsCreatedTotal counts issued sessions.
	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "olabel_sessions_created_total",
			Help: "Total number of admin sessions created",
		},
	)

	// SessionsExpiredTotal counts sessions removed because they expired,
	// either on access or by the sweep.
	SessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "olabel_sessions_expired_total",
			Help: "Total number of expired admin sessions removed",
		},
	)
)
