// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/ekrili/internal/eventprocessor"
	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/relevance"
	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// Evaluator runs dry decision passes and exposes the current extractor.
// *relevance.Pipeline satisfies it.
type Evaluator interface {
	Evaluate(ctx context.Context, listingID string) (*relevance.DecisionReport, error)
	Extractor(ctx context.Context) (*query.Extractor, error)
}

// EventPublisher publishes listing events. *eventprocessor.Publisher
// satisfies it.
type EventPublisher interface {
	PublishListingSaved(ctx context.Context, event *eventprocessor.ListingSaved) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves the admin API.
type Handler struct {
	evaluator    Evaluator
	publisher    EventPublisher
	db           Pinger
	readyTimeout time.Duration
}

// NewHandler creates the handler. publisher may be nil when the event
// pipeline is disabled; the events endpoint then answers 503.
func NewHandler(evaluator Evaluator, publisher EventPublisher, db Pinger) *Handler {
	return &Handler{
		evaluator:    evaluator,
		publisher:    publisher,
		db:           db,
		readyTimeout: 2 * time.Second,
	}
}

// Healthz is the liveness probe.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	newResponseWriter(w, r).success(http.StatusOK, map[string]string{"status": "ok"})
}

// Readyz reports ready only when the database answers a ping.
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	ctx, cancel := context.WithTimeout(r.Context(), h.readyTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("readiness check failed")
		rw.fail(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "database unavailable")
		return
	}
	rw.success(http.StatusOK, map[string]string{"status": "ready"})
}

// Extract shows the features recognized in a search query.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	var req ExtractRequest
	if err := decodeJSON(w, r, &req); err != nil {
		rw.fail(http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if apiErr := validate(&req); apiErr != nil {
		rw.apiError(http.StatusBadRequest, apiErr)
		return
	}

	ex, err := h.evaluator.Extractor(r.Context())
	if err != nil {
		h.passError(rw, err)
		return
	}
	features := ex.Extract(req.Query)
	rw.success(http.StatusOK, ExtractResponse{
		Query:    req.Query,
		Features: features,
		Matched:  features.String(),
		Empty:    features.Empty(),
		Fields:   features.Map(),
	})
}

// Evaluate runs a decision pass for the listing without notifying anyone.
// Per-user failures are reported alongside the decisions.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	id, ok := listingID(rw, r)
	if !ok {
		return
	}
	ctx := logging.ContextWithListingID(r.Context(), id)

	report, err := h.evaluator.Evaluate(ctx, id)
	if report == nil {
		h.passError(rw, err)
		return
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Int("failures", len(report.Failures)).Msg("dry run finished with user failures")
	}
	rw.success(http.StatusOK, EvaluateResponse{
		DecisionReport: report,
		DurationMs:     report.Duration.Milliseconds(),
		Failures:       report.FailureMessages(),
	})
}

// PublishEvent publishes a ListingSaved event for the listing. The body is
// optional and defaults to an update.
func (h *Handler) PublishEvent(w http.ResponseWriter, r *http.Request) {
	rw := newResponseWriter(w, r)

	if h.publisher == nil {
		rw.fail(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "event publishing is disabled")
		return
	}
	id, ok := listingID(rw, r)
	if !ok {
		return
	}

	var req PublishRequest
	if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		rw.fail(http.StatusBadRequest, ErrCodeBadRequest, "invalid request body")
		return
	}
	if apiErr := validate(&req); apiErr != nil {
		rw.apiError(http.StatusBadRequest, apiErr)
		return
	}
	if req.Action == "" {
		req.Action = eventprocessor.ActionUpdated
	}

	event := eventprocessor.NewListingSaved(id, req.Action)
	ctx := logging.ContextWithListingID(r.Context(), id)
	if err := h.publisher.PublishListingSaved(ctx, event); err != nil {
		if errors.Is(err, eventprocessor.ErrInvalidEvent) {
			rw.fail(http.StatusBadRequest, ErrCodeBadRequest, err.Error())
			return
		}
		logging.Ctx(ctx).Error().Err(err).Msg("failed to publish listing event")
		rw.fail(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "failed to publish event")
		return
	}
	rw.success(http.StatusAccepted, PublishResponse{
		EventID:   event.EventID,
		ListingID: event.ListingID,
		Action:    event.Action,
	})
}

// passError maps a pass-level failure to a response.
func (h *Handler) passError(rw *responseWriter, err error) {
	switch {
	case errors.Is(err, relevance.ErrListingNotFound):
		rw.fail(http.StatusNotFound, ErrCodeNotFound, "listing not found")
	case errors.Is(err, relevance.ErrEmptyVocabulary):
		rw.fail(http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "vocabularies are not loaded")
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("relevance pass failed")
		rw.fail(http.StatusInternalServerError, ErrCodeInternalError, "internal error")
	}
}

// listingID reads and validates the {id} path parameter. On failure it has
// already written the response.
func listingID(rw *responseWriter, r *http.Request) (string, bool) {
	p := listingPath{ID: chi.URLParam(r, "id")}
	if apiErr := validate(&p); apiErr != nil {
		rw.apiError(http.StatusBadRequest, apiErr)
		return "", false
	}
	return p.ID, true
}
