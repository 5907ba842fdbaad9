// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package database

import (
	"errors"
	"fmt"
)

var (
	// ErrRecipientNotFound is returned when a user is unknown or has opted
	// out of recommendations.
	ErrRecipientNotFound = errors.New("recipient not found")

	// ErrInvalidSeed is returned for seed files that break the location tree.
	ErrInvalidSeed = errors.New("invalid seed data")
)

// UnknownTermError is returned when a listing names a vocabulary term that
// is not in the database.
type UnknownTermError struct {
	Category string
	Name     string
}

func (e *UnknownTermError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Category, e.Name)
}
