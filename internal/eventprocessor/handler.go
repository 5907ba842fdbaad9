// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/metrics"
	"github.com/tomtom215/ekrili/internal/notify"
	"github.com/tomtom215/ekrili/internal/relevance"
)

const correlationIDMetadata = "correlation_id"

// Outcomes recorded per consumed event.
const (
	OutcomeProcessed = "processed"
	OutcomePartial   = "partial"
	OutcomeSkipped   = "skipped"
	OutcomeInvalid   = "invalid"
	OutcomeFailed    = "failed"
)

// PassRunner runs a decision pass. *relevance.Pipeline satisfies it.
type PassRunner interface {
	Run(ctx context.Context, listingID string) (*relevance.DecisionReport, error)
}

// Handler turns a ListingSaved message into a decision pass.
type Handler struct {
	runner PassRunner
	delay  time.Duration
	now    func() time.Time
}

// NewHandler creates a handler that scores a listing no earlier than delay
// after it was saved.
func NewHandler(runner PassRunner, delay time.Duration) *Handler {
	return &Handler{runner: runner, delay: delay, now: time.Now}
}

// Handle is a message.NoPublishHandlerFunc. A returned error makes the
// router retry the message.
func (h *Handler) Handle(msg *message.Message) error {
	ctx := msg.Context()

	event, err := Unmarshal(msg.Payload)
	if err != nil {
		metrics.EventsConsumed.WithLabelValues(OutcomeInvalid).Inc()
		logging.Ctx(ctx).Warn().
			Err(err).
			Str("message_uuid", msg.UUID).
			Msg("dropping malformed listing event")
		return nil
	}

	correlationID := event.CorrelationID
	if correlationID == "" {
		correlationID = msg.Metadata.Get(correlationIDMetadata)
	}
	if correlationID == "" {
		correlationID = logging.GenerateCorrelationID()
	}
	ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	ctx = logging.ContextWithListingID(ctx, event.ListingID)

	if err := h.wait(ctx, event); err != nil {
		return err
	}

	report, err := h.runner.Run(ctx, event.ListingID)
	outcome, err := classify(report, err)
	metrics.EventsConsumed.WithLabelValues(outcome).Inc()

	log := logging.Ctx(ctx)
	switch outcome {
	case OutcomeFailed:
		log.Warn().Err(err).Str("event_id", event.EventID).Msg("decision pass failed, will retry")
	case OutcomeSkipped:
		log.Info().Str("event_id", event.EventID).Msg("listing no longer exists, event skipped")
	case OutcomePartial:
		log.Warn().
			Str("event_id", event.EventID).
			Strs("failures", report.FailureMessages()).
			Msg("decision pass finished with permanent user failures")
	default:
		log.Debug().Str("event_id", event.EventID).Msg("listing event processed")
	}
	return err
}

// wait blocks until the event is due. A cancelled context returns its error
// so the message is redelivered later.
func (h *Handler) wait(ctx context.Context, event *ListingSaved) error {
	if h.delay <= 0 {
		return nil
	}
	remaining := event.ProcessAt(h.delay).Sub(h.now())
	if remaining <= 0 {
		return nil
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for trigger delay: %w", ctx.Err())
	}
}

// classify maps a pass result to an outcome and the error to hand back to
// the router. Only failures that may succeed later are returned.
func classify(report *relevance.DecisionReport, err error) (string, error) {
	switch {
	case err == nil:
		return OutcomeProcessed, nil
	case errors.Is(err, relevance.ErrListingNotFound):
		return OutcomeSkipped, nil
	case report == nil:
		// The pass never reached the users.
		return OutcomeFailed, err
	}

	for _, f := range report.Failures {
		if notify.Retryable(f) {
			return OutcomeFailed, err
		}
	}
	return OutcomePartial, nil
}
