// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package supervisor

import (
	"context"
	"errors"
	"sync/atomic"
)

// mockService is a controllable suture.Service.
type mockService struct {
	name       string
	starts     atomic.Int32
	failsLeft  atomic.Int32
	terminated atomic.Bool
}

func newMockService(name string) *mockService {
	return &mockService{name: name}
}

// failTimes makes the next n Serve calls fail immediately.
func (m *mockService) failTimes(n int32) *mockService {
	m.failsLeft.Store(n)
	return m
}

func (m *mockService) Serve(ctx context.Context) error {
	m.starts.Add(1)
	if m.failsLeft.Add(-1) >= 0 {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	m.terminated.Store(true)
	return ctx.Err()
}

func (m *mockService) String() string {
	return m.name
}
