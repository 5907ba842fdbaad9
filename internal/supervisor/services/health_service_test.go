// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakePinger returns the queued results in order, then the last one forever.
type fakePinger struct {
	mu      sync.Mutex
	results []error
	calls   int
}

func (p *fakePinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if len(p.results) == 0 {
		return nil
	}
	err := p.results[0]
	if len(p.results) > 1 {
		p.results = p.results[1:]
	}
	return err
}

func (p *fakePinger) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestDatabaseHealthService(t *testing.T) {
	t.Parallel()

	locked := errors.New("database is locked")
	pinger := &fakePinger{results: []error{nil, locked, nil}}
	svc := NewDatabaseHealthService(pinger, 10*time.Millisecond)

	if svc.Healthy() {
		t.Error("Healthy() = true before the first check")
	}

	// Step through the checks by hand.
	ctx := context.Background()
	svc.check(ctx)
	if !svc.Healthy() {
		t.Error("Healthy() = false after a successful ping")
	}

	svc.check(ctx)
	healthy, lastCheck, lastErr := svc.Status()
	if healthy || !errors.Is(lastErr, locked) || lastCheck.IsZero() {
		t.Errorf("Status() = %v, %v, %v after a failed ping", healthy, lastCheck, lastErr)
	}

	svc.check(ctx)
	if !svc.Healthy() {
		t.Error("Healthy() = false after recovery")
	}
}

func TestDatabaseHealthService_Serve(t *testing.T) {
	t.Parallel()

	pinger := &fakePinger{}
	svc := NewDatabaseHealthService(pinger, 5*time.Millisecond)
	if svc.String() != "database-health" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for pinger.callCount() < 3 {
		if time.Now().After(deadline) {
			t.Fatalf("only %d pings", pinger.callCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !svc.Healthy() {
		t.Error("Healthy() = false with a working database")
	}

	cancel()
	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() error = %v, want context.Canceled", err)
	}
}

func TestNewDatabaseHealthService_DefaultInterval(t *testing.T) {
	t.Parallel()

	if got := NewDatabaseHealthService(&fakePinger{}, 0).interval; got != 30*time.Second {
		t.Errorf("interval = %v, want 30s", got)
	}
}
