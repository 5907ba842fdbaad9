// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"context"
	"time"

	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// ListingAttributes is the part of a listing used for scoring, plus the
// fields a notification needs to describe it.
type ListingAttributes struct {
	// ID identifies the listing in the listing store.
	ID string `json:"id"`

	// Title is the free-text headline; it is part of the listing document.
	Title string `json:"title"`

	// Description is only used in notifications.
	Description string `json:"description,omitempty"`

	// Size is a normalized size code such as "s+3".
	Size string `json:"size"`

	// State is the region name.
	State string `json:"state"`

	// Delegation is the sub-region name, if known.
	Delegation string `json:"delegation,omitempty"`

	// Jurisdiction is the district name, if known.
	Jurisdiction string `json:"jurisdiction,omitempty"`

	// Type is the property type name.
	Type string `json:"type"`

	// Price is the asking price as a decimal string.
	Price string `json:"price"`
}

// SearchRecord is one stored search joined with its owner's last login.
// A nil LastLogin means the owner could not be found.
type SearchRecord struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Query      string     `json:"query"`
	SearchDate *time.Time `json:"search_date,omitempty"`
	LastLogin  *time.Time `json:"last_login,omitempty"`
}

// UserQueries is one user's eligible raw search strings, in record order.
type UserQueries struct {
	UserID  int64    `json:"user_id"`
	Queries []string `json:"queries"`
}

// ScoredCandidate is a listing's similarity to one query.
type ScoredCandidate struct {
	ListingID string `json:"listing_id"`
	Title     string `json:"title"`

	// Score is the cosine similarity in percent, after any penalty.
	Score float64 `json:"score"`
}

// Decision says a user should be notified about a listing.
type Decision struct {
	UserID    int64  `json:"user_id"`
	ListingID string `json:"listing_id"`

	// Query is the stored search that triggered the decision.
	Query string `json:"query"`

	// Matched is the recognized part of Query, as quoted to the user.
	Matched string `json:"matched"`

	Score float64 `json:"score"`
}

// DecisionReport summarizes one decision pass over a listing.
type DecisionReport struct {
	ListingID string        `json:"listing_id"`
	Weights   Weights       `json:"weights"`
	Users     int           `json:"users"`
	Queries   int           `json:"queries"`
	Decisions []Decision    `json:"decisions"`
	Delivered int           `json:"delivered"`
	Failures  []error       `json:"-"`
	Duration  time.Duration `json:"duration"`
}

// FailureMessages renders Failures for JSON responses.
func (r *DecisionReport) FailureMessages() []string {
	out := make([]string, len(r.Failures))
	for i, err := range r.Failures {
		out[i] = err.Error()
	}
	return out
}

// VocabularyProvider loads the controlled vocabularies, fully, per call.
type VocabularyProvider interface {
	Vocabularies(ctx context.Context) (query.Vocabularies, error)
}

// HistoryStore supplies stored searches in any order.
type HistoryStore interface {
	SearchRecords(ctx context.Context) ([]SearchRecord, error)
}

// ListingStore supplies the attributes of one listing. Implementations
// return an error wrapping ErrListingNotFound for unknown IDs.
type ListingStore interface {
	Listing(ctx context.Context, id string) (*ListingAttributes, error)
}

// Sink delivers a notify decision.
type Sink interface {
	Notify(ctx context.Context, d Decision, listing *ListingAttributes) error
}
