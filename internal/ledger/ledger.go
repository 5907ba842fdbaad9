// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/metrics"
)

var (
	// ErrLedgerClosed is returned by every operation after Close.
	ErrLedgerClosed = errors.New("ledger is closed")

	// ErrNotFound is returned by Get for pairs that were never claimed or
	// whose claim expired.
	ErrNotFound = errors.New("ledger entry not found")
)

const prefixSent = "sent:"

// Config configures a Ledger.
type Config struct {
	// Path is the BadgerDB directory. Empty opens an in-memory ledger.
	Path string

	// TTL is how long a claim is kept. Zero keeps claims forever.
	TTL time.Duration

	// SyncWrites fsyncs every claim.
	SyncWrites bool

	// GCInterval is the value log GC period used by Serve.
	GCInterval time.Duration
}

// Entry is the stored form of a claim.
type Entry struct {
	UserID    int64     `json:"user_id"`
	ListingID string    `json:"listing_id"`
	Score     float64   `json:"score"`
	ClaimedAt time.Time `json:"claimed_at"`
}

// Ledger is a BadgerDB-backed set of (user, listing) notification claims.
type Ledger struct {
	db  *badger.DB
	cfg Config

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the ledger described by cfg.
func Open(cfg Config) (*Ledger, error) {
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("ledger TTL must not be negative, got %v", cfg.TTL)
	}
	if cfg.GCInterval <= 0 {
		cfg.GCInterval = 10 * time.Minute
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.Path == "" {
		opts = opts.WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.Path == "").
		Dur("ttl", cfg.TTL).
		Msg("notification ledger opened")

	return &Ledger{db: db, cfg: cfg}, nil
}

func key(userID int64, listingID string) []byte {
	return []byte(prefixSent + strconv.FormatInt(userID, 10) + ":" + listingID)
}

func (l *Ledger) checkNotClosed() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return ErrLedgerClosed
	}
	return nil
}

// Claim records that userID is being notified about listingID. It returns
// false when the pair is already claimed, including when a concurrent claim
// for the same pair won the transaction.
func (l *Ledger) Claim(ctx context.Context, userID int64, listingID string, score float64) (bool, error) {
	if err := l.checkNotClosed(); err != nil {
		return false, err
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	data, err := json.Marshal(&Entry{
		UserID:    userID,
		ListingID: listingID,
		Score:     score,
		ClaimedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("marshal ledger entry: %w", err)
	}

	k := key(userID, listingID)
	claimed := false
	err = l.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(k)
		if err == nil {
			return nil
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("get ledger entry: %w", err)
		}

		e := badger.NewEntry(k, data)
		if l.cfg.TTL > 0 {
			e = e.WithTTL(l.cfg.TTL)
		}
		if err := txn.SetEntry(e); err != nil {
			return fmt.Errorf("set ledger entry: %w", err)
		}
		claimed = true
		return nil
	})
	if errors.Is(err, badger.ErrConflict) {
		metrics.RecordLedgerClaim(false)
		return false, nil
	}
	if err != nil {
		return false, err
	}

	metrics.RecordLedgerClaim(claimed)
	return claimed, nil
}

// Release removes a claim so the pair can be notified again. Releasing an
// unclaimed pair is a no-op.
func (l *Ledger) Release(ctx context.Context, userID int64, listingID string) error {
	if err := l.checkNotClosed(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := l.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key(userID, listingID))
	}); err != nil {
		return fmt.Errorf("release ledger entry: %w", err)
	}
	return nil
}

// Seen reports whether the pair is currently claimed.
func (l *Ledger) Seen(ctx context.Context, userID int64, listingID string) (bool, error) {
	_, err := l.Get(ctx, userID, listingID)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Get returns the claim for the pair.
func (l *Ledger) Get(ctx context.Context, userID int64, listingID string) (*Entry, error) {
	if err := l.checkNotClosed(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var entry Entry
	err := l.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key(userID, listingID))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get ledger entry: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Count returns the number of live claims.
func (l *Ledger) Count(ctx context.Context) (int, error) {
	if err := l.checkNotClosed(); err != nil {
		return 0, err
	}

	n := 0
	err := l.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(prefixSent)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// Close closes the underlying database. Close is idempotent.
func (l *Ledger) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("notification ledger closed")
	return nil
}
