// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/ekrili/internal/logging"
)

// gcDiscardRatio is the fraction of a value log file that must be stale
// before it is rewritten.
const gcDiscardRatio = 0.5

// Serve runs value log garbage collection every GCInterval until ctx is
// done. It implements suture.Service.
func (l *Ledger) Serve(ctx context.Context) error {
	ticker := time.NewTicker(l.cfg.GCInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := l.collect(); err != nil {
				if errors.Is(err, ErrLedgerClosed) {
					return err
				}
				logging.Warn().Err(err).Msg("ledger value log GC failed")
			}
		}
	}
}

// String names the service in supervisor logs.
func (l *Ledger) String() string {
	return "notification-ledger-gc"
}

// collect rewrites value log files until there is nothing left to reclaim.
func (l *Ledger) collect() error {
	if err := l.checkNotClosed(); err != nil {
		return err
	}

	rewritten := 0
	for {
		err := l.db.RunValueLogGC(gcDiscardRatio)
		switch {
		case err == nil:
			rewritten++
			continue
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			if rewritten > 0 {
				logging.Debug().Int("files", rewritten).Msg("ledger value log compacted")
			}
			return nil
		default:
			return err
		}
	}
}
