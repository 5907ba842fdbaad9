// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package database is the DuckDB data layer of Ekrili.
//
// *DB implements the stores the relevance engine reads from:
//   - relevance.VocabularyProvider (Vocabularies)
//   - relevance.HistoryStore (SearchRecords)
//   - relevance.ListingStore (Listing)
//
// and the recipient lookup used by the notifier (Recipient).
//
// # Files
//
//   - database.go: connection lifecycle
//   - database_schema.go: tables, sequences and indexes
//   - database_utils.go: context timeouts, metrics, checkpoint
//   - vocabulary.go, history.go, listings.go, users.go: data access
//   - seed.go: YAML reference data loader (LoadSeedFile, ApplySeed)
//
// All queries are parameterized. Every public operation is timed into the
// ekrili_duckdb_query_duration_seconds histogram.
package database
