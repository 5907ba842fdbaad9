// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package notify delivers relevance decisions to users.
//
// A Sink implements relevance.Sink. For every decision it:
//
//  1. looks up the recipient (opted-out and deleted users are refused)
//  2. claims the (user, listing) pair in the notification ledger, skipping
//     pairs that were already notified
//  3. waits for the outgoing rate limiter
//  4. renders the mail and sends it through the Channel, behind a circuit
//     breaker
//  5. releases the ledger claim if sending failed, so a redelivered event
//     can try again
//
// Channel errors are classified into codes. Transient codes (connection,
// timeout, rate limiting, server errors) count against the circuit breaker;
// permanent ones (bad address, auth, rejected recipient) do not.
//
// LogSink is used when mail is disabled: it logs decisions and sends
// nothing.
package notify
