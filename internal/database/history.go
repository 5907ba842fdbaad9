// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/ekrili/internal/relevance"
)

// SearchRecords returns every stored search joined with its owner's last
// login, in insertion order.
//
// Searches of users who opted out of recommendations are left out. Searches
// whose owner no longer exists are returned with a nil LastLogin so the
// eligibility filter can report them. An owner who never logged in is
// treated as having logged in when the account was created.
func (db *DB) SearchRecords(ctx context.Context) (records []relevance.SearchRecord, err error) {
	defer db.observe("search_records", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT
			h.id,
			h.user_id,
			h.search_query,
			h.date_of_search,
			CASE WHEN u.id IS NULL THEN NULL ELSE COALESCE(u.last_login, u.date_joined) END
		FROM search_history h
		LEFT JOIN users u ON u.id = h.user_id
		WHERE u.id IS NULL OR u.recommended
		ORDER BY h.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query search history: %w", err)
	}
	defer closeWithLog(rows, "rows")

	for rows.Next() {
		var (
			r         relevance.SearchRecord
			searched  sql.NullTime
			lastLogin sql.NullTime
		)
		if err := rows.Scan(&r.ID, &r.UserID, &r.Query, &searched, &lastLogin); err != nil {
			return nil, fmt.Errorf("failed to scan search record: %w", err)
		}
		if searched.Valid {
			t := searched.Time
			r.SearchDate = &t
		}
		if lastLogin.Valid {
			t := lastLogin.Time
			r.LastLogin = &t
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate search history: %w", err)
	}
	return records, nil
}

// RecordSearch stores a raw search string for a user. A nil at stores the
// search without a date.
func (db *DB) RecordSearch(ctx context.Context, userID int64, searchQuery string, at *time.Time) (err error) {
	defer db.observe("record_search", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var date sql.NullTime
	if at != nil {
		date = sql.NullTime{Time: *at, Valid: true}
	}
	if _, err = db.conn.ExecContext(ctx,
		`INSERT INTO search_history (user_id, search_query, date_of_search) VALUES (?, ?, ?)`,
		userID, searchQuery, date); err != nil {
		return fmt.Errorf("failed to insert search: %w", err)
	}
	return nil
}
