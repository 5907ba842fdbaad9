// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package services adapts blocking components to suture.Service.
//
// HTTPServerService turns ListenAndServe/Shutdown into a context-aware
// Serve. DatabaseHealthService is a ticker loop whose last result backs
// the readiness probe. Components that already implement Serve (the
// notification ledger GC, the listing event consumer) are added to the
// tree directly.
package services
