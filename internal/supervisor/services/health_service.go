// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package services

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/ekrili/internal/logging"
)

// Pinger is satisfied by *database.DB.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DatabaseHealthService pings the database periodically and remembers the
// outcome for the readiness probe. It logs transitions, not every check.
type DatabaseHealthService struct {
	db       Pinger
	interval time.Duration
	timeout  time.Duration

	mu        sync.RWMutex
	healthy   bool
	lastErr   error
	lastCheck time.Time
}

// NewDatabaseHealthService creates the monitor. A non-positive interval
// becomes 30s.
func NewDatabaseHealthService(db Pinger, interval time.Duration) *DatabaseHealthService {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &DatabaseHealthService{db: db, interval: interval, timeout: 5 * time.Second}
}

// Serve checks once immediately, then every interval.
func (s *DatabaseHealthService) Serve(ctx context.Context) error {
	s.check(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.check(ctx)
		}
	}
}

func (s *DatabaseHealthService) check(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	err := s.db.Ping(pingCtx)
	cancel()
	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	was := s.healthy
	first := s.lastCheck.IsZero()
	s.healthy = err == nil
	s.lastErr = err
	s.lastCheck = time.Now()
	s.mu.Unlock()

	switch {
	case err != nil && (was || first):
		logging.Error().Err(err).Msg("database health check failed")
	case err == nil && !was && !first:
		logging.Info().Msg("database healthy again")
	}
}

// Status returns the last outcome. Before the first check the database
// counts as unhealthy.
func (s *DatabaseHealthService) Status() (healthy bool, lastCheck time.Time, lastErr error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.healthy, s.lastCheck, s.lastErr
}

// Healthy reports the last outcome.
func (s *DatabaseHealthService) Healthy() bool {
	healthy, _, _ := s.Status()
	return healthy
}

func (s *DatabaseHealthService) String() string {
	return "database-health"
}
