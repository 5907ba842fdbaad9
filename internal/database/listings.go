// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/tomtom215/ekrili/internal/relevance"
	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// Listing returns the scoring attributes of a listing with vocabulary ids
// resolved to names. Unknown ids yield relevance.ErrListingNotFound.
func (db *DB) Listing(ctx context.Context, id string) (l *relevance.ListingAttributes, err error) {
	defer db.observe("listing", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var (
		price                                     sql.NullFloat64
		typeName, state, delegation, jurisdiction sql.NullString
	)
	l = &relevance.ListingAttributes{ID: id}

	err = db.conn.QueryRowContext(ctx, `
		SELECT l.title, l.description, l.size, l.price, t.name, s.name, d.name, j.name
		FROM listings l
		LEFT JOIN property_types t ON t.id = l.type_id
		LEFT JOIN states s ON s.id = l.state_id
		LEFT JOIN delegations d ON d.id = l.delegation_id
		LEFT JOIN jurisdictions j ON j.id = l.jurisdiction_id
		WHERE l.id = ?`, id).Scan(
		&l.Title, &l.Description, &l.Size, &price,
		&typeName, &state, &delegation, &jurisdiction,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("listing %s: %w", id, relevance.ErrListingNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load listing %s: %w", id, err)
	}

	if price.Valid {
		l.Price = strconv.FormatFloat(price.Float64, 'f', -1, 64)
	}
	l.Type = typeName.String
	l.State = state.String
	l.Delegation = delegation.String
	l.Jurisdiction = jurisdiction.String
	return l, nil
}

// UpsertListing stores a listing, resolving its vocabulary names to ids.
// Empty names store NULL; names missing from the vocabulary are rejected
// with *UnknownTermError. Size is normalized before storage.
func (db *DB) UpsertListing(ctx context.Context, l *relevance.ListingAttributes) (err error) {
	defer db.observe("upsert_listing", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var price sql.NullFloat64
	if l.Price != "" {
		p, perr := strconv.ParseFloat(l.Price, 64)
		if perr != nil {
			return fmt.Errorf("listing %s: invalid price %q: %w", l.ID, l.Price, perr)
		}
		price = sql.NullFloat64{Float64: p, Valid: true}
	}

	typeID, err := db.lookupID(ctx, "property type", `SELECT id FROM property_types WHERE name = ?`, l.Type)
	if err != nil {
		return err
	}
	stateID, err := db.lookupID(ctx, "state", `SELECT id FROM states WHERE name = ?`, l.State)
	if err != nil {
		return err
	}
	delegationID, err := db.lookupID(ctx, "delegation", `
		SELECT d.id FROM delegations d JOIN states s ON s.id = d.state_id
		WHERE d.name = ? AND s.name = ?`, l.Delegation, l.State)
	if err != nil {
		return err
	}
	jurisdictionID, err := db.lookupID(ctx, "jurisdiction", `
		SELECT j.id FROM jurisdictions j JOIN delegations d ON d.id = j.delegation_id
		WHERE j.name = ? AND d.name = ?`, l.Jurisdiction, l.Delegation)
	if err != nil {
		return err
	}

	size := l.Size
	if normalized := query.NormalizeSize(size); normalized != "" {
		size = normalized
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO listings (id, title, description, size, price, type_id, state_id, delegation_id, jurisdiction_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			size = EXCLUDED.size,
			price = EXCLUDED.price,
			type_id = EXCLUDED.type_id,
			state_id = EXCLUDED.state_id,
			delegation_id = EXCLUDED.delegation_id,
			jurisdiction_id = EXCLUDED.jurisdiction_id,
			updated_at = EXCLUDED.updated_at`,
		l.ID, l.Title, l.Description, size, price, typeID, stateID, delegationID, jurisdictionID)
	if err != nil {
		return fmt.Errorf("failed to upsert listing %s: %w", l.ID, err)
	}
	return nil
}

// lookupID resolves a vocabulary name. The first argument is the name; an
// empty name resolves to NULL without querying.
func (db *DB) lookupID(ctx context.Context, category, q string, args ...any) (sql.NullInt64, error) {
	if name, _ := args[0].(string); name == "" {
		return sql.NullInt64{}, nil
	}

	var id int64
	err := db.conn.QueryRowContext(ctx, q, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return sql.NullInt64{}, &UnknownTermError{Category: category, Name: args[0].(string)}
	}
	if err != nil {
		return sql.NullInt64{}, fmt.Errorf("failed to resolve %s: %w", category, err)
	}
	return sql.NullInt64{Int64: id, Valid: true}, nil
}
