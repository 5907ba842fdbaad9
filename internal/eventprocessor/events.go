// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"time"

	"github.com/google/uuid"
)

// Action is what happened to the listing.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// maxListingIDLength matches the listing id column.
const maxListingIDLength = 64

// ListingSaved is published after a listing is created or updated.
type ListingSaved struct {
	// EventID is unique per event and doubles as the Nats-Msg-Id.
	EventID string `json:"event_id"`

	ListingID string `json:"listing_id"`
	Action    Action `json:"action"`

	// OccurredAt is when the listing was saved. The trigger delay is
	// measured from here, not from delivery time.
	OccurredAt time.Time `json:"occurred_at"`

	CorrelationID string `json:"correlation_id,omitempty"`
}

// NewListingSaved creates an event with a fresh id and the current time.
func NewListingSaved(listingID string, action Action) *ListingSaved {
	return &ListingSaved{
		EventID:    uuid.New().String(),
		ListingID:  listingID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
}

// Validate checks the required fields.
func (e *ListingSaved) Validate() error {
	if e.EventID == "" {
		return &ValidationError{Field: "event_id", Message: "required"}
	}
	if e.ListingID == "" {
		return &ValidationError{Field: "listing_id", Message: "required"}
	}
	if len(e.ListingID) > maxListingIDLength {
		return &ValidationError{Field: "listing_id", Message: "too long"}
	}
	switch e.Action {
	case ActionCreated, ActionUpdated:
	default:
		return &ValidationError{Field: "action", Message: "must be created or updated"}
	}
	if e.OccurredAt.IsZero() {
		return &ValidationError{Field: "occurred_at", Message: "required"}
	}
	return nil
}

// ProcessAt is the earliest time the event should be scored.
func (e *ListingSaved) ProcessAt(delay time.Duration) time.Time {
	return e.OccurredAt.Add(delay)
}
