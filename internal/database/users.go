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
	"time"
)

// User is a notification recipient account.
type User struct {
	ID        int64
	Email     string
	FirstName string
	LastName  string
	LastLogin *time.Time

	// Recommended is the user's opt-in to listing recommendations.
	Recommended bool
}

// Recipient is what a notification needs to address a user.
type Recipient struct {
	UserID    int64
	Email     string
	FirstName string
}

// UpsertUser inserts a user or updates every field of an existing one.
func (db *DB) UpsertUser(ctx context.Context, u *User) (err error) {
	defer db.observe("upsert_user", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	var lastLogin sql.NullTime
	if u.LastLogin != nil {
		lastLogin = sql.NullTime{Time: *u.LastLogin, Valid: true}
	}

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO users (id, email, first_name, last_name, last_login, recommended)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			last_login = EXCLUDED.last_login,
			recommended = EXCLUDED.recommended`,
		u.ID, u.Email, u.FirstName, u.LastName, lastLogin, u.Recommended)
	if err != nil {
		return fmt.Errorf("failed to upsert user %d: %w", u.ID, err)
	}
	return nil
}

// DeleteUser removes a user. Their searches are kept.
func (db *DB) DeleteUser(ctx context.Context, id int64) (err error) {
	defer db.observe("delete_user", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	if _, err = db.conn.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	return nil
}

// Recipient returns the address of an opted-in user. Unknown and opted-out
// users yield ErrRecipientNotFound.
func (db *DB) Recipient(ctx context.Context, userID int64) (r *Recipient, err error) {
	defer db.observe("recipient", time.Now(), &err)
	ctx, cancel := db.ensureContext(ctx)
	defer cancel()

	r = &Recipient{UserID: userID}
	err = db.conn.QueryRowContext(ctx,
		`SELECT email, first_name FROM users WHERE id = ? AND recommended`,
		userID).Scan(&r.Email, &r.FirstName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %d: %w", userID, ErrRecipientNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load recipient %d: %w", userID, err)
	}
	return r, nil
}
