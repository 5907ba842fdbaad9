// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// Vocabularies loads the four controlled vocabularies in insertion order.
// Sub-regions carry their region as Parent, districts their sub-region.
func (db *DB) Vocabularies(ctx context.Context) (vocab query.Vocabularies, err error) {
	defer db.observe("vocabularies", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if vocab.Types, err = db.loadTerms(ctx, `SELECT name, '' FROM property_types ORDER BY id`); err != nil {
		return query.Vocabularies{}, fmt.Errorf("failed to load property types: %w", err)
	}
	if vocab.Regions, err = db.loadTerms(ctx, `SELECT name, '' FROM states ORDER BY id`); err != nil {
		return query.Vocabularies{}, fmt.Errorf("failed to load states: %w", err)
	}
	if vocab.SubRegions, err = db.loadTerms(ctx, `
		SELECT d.name, s.name
		FROM delegations d
		JOIN states s ON s.id = d.state_id
		ORDER BY d.id`); err != nil {
		return query.Vocabularies{}, fmt.Errorf("failed to load delegations: %w", err)
	}
	if vocab.Districts, err = db.loadTerms(ctx, `
		SELECT j.name, d.name
		FROM jurisdictions j
		JOIN delegations d ON d.id = j.delegation_id
		ORDER BY j.id`); err != nil {
		return query.Vocabularies{}, fmt.Errorf("failed to load jurisdictions: %w", err)
	}

	return vocab, nil
}

func (db *DB) loadTerms(ctx context.Context, q string) (query.Vocabulary, error) {
	rows, err := db.conn.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer closeWithLog(rows, "rows")

	var terms query.Vocabulary
	for rows.Next() {
		var t query.Term
		if err := rows.Scan(&t.Name, &t.Parent); err != nil {
			return nil, fmt.Errorf("failed to scan term: %w", err)
		}
		terms = append(terms, t)
	}
	return terms, rows.Err()
}
