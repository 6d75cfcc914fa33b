// Animerec - Collaborative Filtering Anime Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/animerec

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

var _ suture.Service = (*ReloadService)(nil)

func TestNewReloadService_Defaults(t *testing.T) {
	t.Parallel()

	svc := NewReloadService(newTestEngine(t), &memorySource{}, ReloadServiceConfig{}, zerolog.Nop())
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.config.Timeout != 30*time.Minute {
		t.Errorf("Timeout = %v, want 30m", svc.config.Timeout)
	}
	if svc.String() != "snapshot-reload" {
		t.Errorf("String() = %q", svc.String())
	}
}

func TestReloadService_LoadOnStartAndTick(t *testing.T) {
	t.Parallel()

	engine := newTestEngine(t)
	src := &memorySource{ratings: fixtureRatings()}
	svc := NewReloadService(engine, src, ReloadServiceConfig{
		LoadOnStart: true,
		Interval:    20 * time.Millisecond,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
	if src.calls.Load() < 3 {
		t.Fatalf("Ratings calls = %d, want at least 3", src.calls.Load())
	}

	snap := engine.Snapshot()
	if snap == nil {
		t.Fatal("no snapshot published")
	}
	// the third load may be interrupted by cancel
	if snap.Version < 2 {
		t.Errorf("snapshot version = %d, want at least 2", snap.Version)
	}
}

func TestReloadService_FailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	engine := newLoadedEngine(t)
	before := engine.Snapshot()

	src := &memorySource{err: errors.New("dataset unavailable")}
	svc := NewReloadService(engine, src, ReloadServiceConfig{LoadOnStart: true, Interval: time.Hour}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for src.calls.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-errCh

	if engine.Snapshot() != before {
		t.Error("failed reload replaced the snapshot")
	}
	if engine.GetStatus().LastError == "" {
		t.Error("LastError should record the failed reload")
	}
}
