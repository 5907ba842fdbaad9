// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package ledger records which users were already notified about which
// listings, using BadgerDB.
//
// Listing events are delivered at least once: a consumer can see the same
// ListingSaved event twice after a crash, a redelivery or a manual replay.
// The ledger turns that into at-most-once notification per (user, listing)
// pair. A sender claims the pair before delivering and releases it if
// delivery fails:
//
//	Claim(user, listing) → send → (on failure) Release(user, listing)
//	        ↓ (already claimed)
//	   skip, counted as duplicate
//
// Claims expire after the configured TTL, after which a later edit of the
// same listing can notify the user again.
//
// An empty Path opens an in-memory ledger, used in tests and when no data
// directory is configured.
package ledger
