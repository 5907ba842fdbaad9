// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
database_schema.go - Database Schema Management

Tables:
  - property_types: controlled vocabulary of listing types
  - states, delegations, jurisdictions: the three level location tree
    (region, sub-region, district); each level is unique within its parent
  - users: notification recipients with last login and the opt-in flag
  - search_history: raw search strings replayed against new listings
  - listings: the attributes scored against searches

search_history.user_id deliberately carries no foreign key: searches of
deleted accounts are kept and reported as missing owners during a pass.
Vocabulary ids come from sequences so insertion order is the match order.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

// createTables creates the sequences and tables
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %s: %w", query, err)
		}
	}
	return nil
}

var tableCreationQueries = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_property_types START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_states START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_delegations START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_jurisdictions START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_search_history START 1`,

	`CREATE TABLE IF NOT EXISTS property_types (
		id INTEGER PRIMARY KEY DEFAULT nextval('seq_property_types'),
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS states (
		id INTEGER PRIMARY KEY DEFAULT nextval('seq_states'),
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS delegations (
		id INTEGER PRIMARY KEY DEFAULT nextval('seq_delegations'),
		state_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		UNIQUE (state_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS jurisdictions (
		id INTEGER PRIMARY KEY DEFAULT nextval('seq_jurisdictions'),
		delegation_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		UNIQUE (delegation_id, name)
	)`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY,
		email TEXT NOT NULL,
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		date_joined TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		last_login TIMESTAMP,
		recommended BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS search_history (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_search_history'),
		user_id BIGINT NOT NULL,
		search_query TEXT NOT NULL,
		date_of_search TIMESTAMP
	)`,

	`CREATE TABLE IF NOT EXISTS listings (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		size TEXT NOT NULL DEFAULT '',
		price DOUBLE,
		type_id INTEGER,
		state_id INTEGER,
		delegation_id INTEGER,
		jurisdiction_id INTEGER,
		updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
}

// createIndexes creates indexes for the lookups done per pass
func (db *DB) createIndexes() error {
	ctx, cancel := schemaContext()
	defer cancel()

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_search_history_user ON search_history(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_search_history_date ON search_history(date_of_search)`,
	}
	for _, query := range indexes {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create index: %s: %w", query, err)
		}
	}
	return nil
}
