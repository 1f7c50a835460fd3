// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/olegiv/olabel-go/internal/testutil"
)

func TestNew(t *testing.T) {
	s := New(testutil.TestLogger(), 0)
	if s == nil {
		t.Fatal("New() returned nil")
	}
	if s.timeout != time.Minute {
		t.Errorf("timeout = %v, want 1m default", s.timeout)
	}
}

func TestScheduler_AddAndTrigger(t *testing.T) {
	s := New(testutil.TestLogger(), time.Second)

	var calls atomic.Int32
	err := s.Add("sweep", "@every 1h", func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("job context should carry a deadline")
		}
		calls.Add(1)
		return nil
	})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	if err := s.Trigger("sweep"); err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}

	jobs := s.Jobs()
	if len(jobs) != 1 || jobs[0].Name != "sweep" || jobs[0].Schedule != "@every 1h" {
		t.Fatalf("Jobs() = %+v", jobs)
	}
	if jobs[0].LastRun.IsZero() {
		t.Error("LastRun should be set after Trigger")
	}
}

func TestScheduler_AddErrors(t *testing.T) {
	s := New(testutil.TestLogger(), time.Second)
	noop := func(context.Context) error { return nil }

	if err := s.Add("bad", "not a schedule", noop); err == nil {
		t.Error("Add() with invalid schedule should fail")
	}
	if err := s.Add("job", "@hourly", noop); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Add("job", "@hourly", noop); err == nil {
		t.Error("Add() with duplicate name should fail")
	}
	if err := s.Trigger("missing"); err == nil {
		t.Error("Trigger() of unknown job should fail")
	}
}

func TestScheduler_TriggerRecordsError(t *testing.T) {
	s := New(testutil.TestLogger(), time.Second)
	boom := errors.New("boom")
	if err := s.Add("failing", "@daily", func(context.Context) error { return boom }); err != nil {
		t.Fatal(err)
	}

	if err := s.Trigger("failing"); !errors.Is(err, boom) {
		t.Errorf("Trigger() error = %v, want boom", err)
	}
	if jobs := s.Jobs(); !errors.Is(jobs[0].LastErr, boom) {
		t.Errorf("LastErr = %v, want boom", jobs[0].LastErr)
	}
}

func TestScheduler_RunsOnSchedule(t *testing.T) {
	s := New(testutil.TestLogger(), time.Second)
	ran := make(chan struct{}, 1)
	if err := s.Add("tick", "@every 1s", func(context.Context) error {
		select {
		case ran <- struct{}{}:
		default:
		}
		return nil
	}); err != nil {
		t.Fatal(err)
	}

	s.Start()
	defer s.Stop()

	select {
	case <-ran:
	case <-time.After(3 * time.Second):
		t.Fatal("job did not run within 3s")
	}
}
