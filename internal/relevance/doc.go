// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package relevance decides which users should hear about a listing.
//
// When a listing is created or updated, every user's recent searches are
// replayed against it:
//
//  1. EligibilityFilter keeps searches younger than MaxSearchAge made by
//     users who logged in within MaxInactivity, grouped per user.
//  2. query.Extractor turns each search into Features (type, size, region,
//     sub-region, district, price).
//  3. Scorer embeds the listing and the features in a TF-IDF space where
//     each attribute value is repeated according to Weights, and returns
//     their cosine similarity in percent. A query naming another region is
//     penalized by RegionMismatchPenalty.
//  4. Pipeline emits one Decision per user whose best query scores above
//     NotifyThreshold and hands it to a Sink.
//
// The package has no dependency on storage or transport. Stores, vocabulary
// providers and sinks are interfaces implemented by the database, notify and
// eventprocessor packages.
//
// # Failure isolation
//
// Problems affecting the whole pass (unknown listing, empty vocabularies,
// unreadable history) abort it. Problems affecting one user (owner missing,
// delivery failed) are recorded as *UserError in the DecisionReport and the
// remaining users are still served.
package relevance
