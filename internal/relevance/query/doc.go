// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package query turns free-text listing searches into structured features.
//
// A search such as "appartement tunis s3 500" is split into tokens and each
// token is classified, in a fixed priority order, as a price, a property type,
// a room-count code, a region, a sub-region or a district:
//
//	ex := query.NewExtractor(vocab, query.NewMatcher(query.DefaultThreshold))
//	f := ex.Extract("appartement tunis s3 500")
//	// f.Type == "Appartements", f.State == "Tunis", f.Size == "s+3", f.Price == "500"
//
// Vocabulary lookups are approximate. Tokens are compared against canonical
// names with the sequence-matcher ratio (2*M/T over matching blocks) and the
// first name in vocabulary order reaching the threshold wins. This is
// deliberately "first acceptable" rather than best match.
//
// Recognition failures are never errors: a token that matches nothing is
// dropped and the corresponding feature stays empty.
//
// Everything in this package is immutable after construction and safe for
// concurrent use.
package query
