// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyVocabulary aborts a pass when types or regions are missing.
	ErrEmptyVocabulary = errors.New("empty vocabulary")

	// ErrListingNotFound aborts a pass for an unknown listing.
	ErrListingNotFound = errors.New("listing not found")

	// ErrUserNotFound marks a search whose owner no longer exists.
	ErrUserNotFound = errors.New("user not found")
)

// UserError is a failure confined to one user. The pass records it and
// continues with the remaining users.
type UserError struct {
	UserID int64
	Err    error
}

func (e *UserError) Error() string {
	return fmt.Sprintf("user %d: %v", e.UserID, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}
