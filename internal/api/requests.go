// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/ekrili/internal/eventprocessor"
	"github.com/tomtom215/ekrili/internal/relevance"
	"github.com/tomtom215/ekrili/internal/relevance/query"
	"github.com/tomtom215/ekrili/internal/validation"
)

// maxBodyBytes caps request bodies; the largest is a search query.
const maxBodyBytes = 16 << 10

// ExtractRequest is the body of POST /api/v1/extract.
type ExtractRequest struct {
	Query string `json:"query" validate:"required,max=500"`
}

// ExtractResponse shows what the engine recognizes in a search.
type ExtractResponse struct {
	Query    string            `json:"query"`
	Features query.Features    `json:"features"`
	Matched  string            `json:"matched"`
	Empty    bool              `json:"empty"`
	Fields   map[string]string `json:"fields"`
}

// PublishRequest is the optional body of POST /api/v1/listings/{id}/events.
type PublishRequest struct {
	Action eventprocessor.Action `json:"action" validate:"omitempty,oneof=created updated"`
}

// listingPath carries the validated {id} path parameter.
type listingPath struct {
	ID string `validate:"required,listingid"`
}

// EvaluateResponse is a dry-run DecisionReport with printable failures.
type EvaluateResponse struct {
	*relevance.DecisionReport
	DurationMs int64    `json:"duration_ms"`
	Failures   []string `json:"failures"`
}

// PublishResponse acknowledges a published event.
type PublishResponse struct {
	EventID   string                `json:"event_id"`
	ListingID string                `json:"listing_id"`
	Action    eventprocessor.Action `json:"action"`
}

var errEmptyBody = errors.New("empty body")

// decodeJSON reads one JSON value into dst. An empty body returns
// errEmptyBody so callers can treat the body as optional.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errEmptyBody
	}
	return json.Unmarshal(body, dst)
}

// validate returns the API error for an invalid struct, or nil.
func validate(v interface{}) *validation.APIError {
	if verr := validation.ValidateStruct(v); verr != nil {
		return verr.ToAPIError()
	}
	return nil
}
