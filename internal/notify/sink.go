// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/database"
	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/metrics"
	"github.com/tomtom215/ekrili/internal/relevance"
)

// ErrCircuitOpen is returned while the channel's circuit breaker is open.
var ErrCircuitOpen = errors.New("notification channel circuit open")

// Delivery statuses used in metrics.
const (
	StatusSent      = "sent"
	StatusDuplicate = "duplicate"
	StatusFailed    = "failed"
	StatusRejected  = "rejected"
)

// RecipientLookup resolves a user to a mail address.
type RecipientLookup interface {
	Recipient(ctx context.Context, userID int64) (*database.Recipient, error)
}

// Claimer is the notification ledger.
type Claimer interface {
	Claim(ctx context.Context, userID int64, listingID string, score float64) (bool, error)
	Release(ctx context.Context, userID int64, listingID string) error
}

// Sink delivers relevance decisions through a Channel.
type Sink struct {
	channel    Channel
	recipients RecipientLookup
	claims     Claimer
	composer   *Composer
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

var _ relevance.Sink = (*Sink)(nil)

// NewSink wires a sink from the notify settings.
func NewSink(cfg *config.NotifyConfig, channel Channel, recipients RecipientLookup, claims Claimer) (*Sink, error) {
	if channel == nil || recipients == nil || claims == nil {
		return nil, errors.New("channel, recipient lookup and ledger are required")
	}
	if cfg.SendRate <= 0 || cfg.SendBurst < 1 {
		return nil, fmt.Errorf("invalid send rate %v/s with burst %d", cfg.SendRate, cfg.SendBurst)
	}

	name := channel.Name() + "-channel"
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !IsTransient(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return &Sink{
		channel:    channel,
		recipients: recipients,
		claims:     claims,
		composer:   NewComposer(cfg.FrontURL),
		limiter:    rate.NewLimiter(rate.Limit(cfg.SendRate), cfg.SendBurst),
		breaker:    breaker,
	}, nil
}

// Notify delivers one decision. A pair already present in the ledger is
// skipped without error.
//
//nolint:gocritic // Decision is passed by value per relevance.Sink
func (s *Sink) Notify(ctx context.Context, d relevance.Decision, listing *relevance.ListingAttributes) error {
	began := time.Now()
	channel := s.channel.Name()
	log := logging.Ctx(ctx).With().
		Int64("user_id", d.UserID).
		Str("listing_id", d.ListingID).
		Float64("score", d.Score).
		Logger()

	recipient, err := s.recipients.Recipient(ctx, d.UserID)
	if err != nil {
		metrics.RecordDelivery(channel, StatusRejected, time.Since(began))
		return fmt.Errorf("resolve recipient: %w", err)
	}

	claimed, err := s.claims.Claim(ctx, d.UserID, d.ListingID, d.Score)
	if err != nil {
		return fmt.Errorf("claim notification: %w", err)
	}
	if !claimed {
		metrics.RecordDelivery(channel, StatusDuplicate, time.Since(began))
		log.Debug().Msg("notification already sent, skipping")
		return nil
	}

	if err := s.deliver(ctx, recipient, &d, listing); err != nil {
		if relErr := s.claims.Release(context.WithoutCancel(ctx), d.UserID, d.ListingID); relErr != nil {
			log.Error().Err(relErr).Msg("failed to release notification claim")
		}
		status := StatusFailed
		if errors.Is(err, ErrCircuitOpen) {
			status = StatusRejected
		}
		metrics.RecordDelivery(channel, status, time.Since(began))
		return err
	}

	metrics.RecordDelivery(channel, StatusSent, time.Since(began))
	log.Info().
		Str("channel", channel).
		Str("to", logging.SanitizeEmail(recipient.Email)).
		Msg("notification sent")
	return nil
}

func (s *Sink) deliver(ctx context.Context, r *database.Recipient, d *relevance.Decision, listing *relevance.ListingAttributes) error {
	msg, err := s.composer.Compose(r, d, listing)
	if err != nil {
		return err
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	_, err = s.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, s.channel.Send(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrCircuitOpen, err)
	}
	if err != nil {
		return fmt.Errorf("send via %s: %w", s.channel.Name(), err)
	}
	return nil
}

// Retryable reports whether a Notify error may succeed on a later attempt.
// A recipient that is gone or opted out stays gone.
func Retryable(err error) bool {
	if errors.Is(err, database.ErrRecipientNotFound) || errors.Is(err, relevance.ErrUserNotFound) {
		return false
	}
	return IsTransient(err)
}

// BreakerState returns the circuit breaker state.
func (s *Sink) BreakerState() gobreaker.State {
	return s.breaker.State()
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// LogSink logs decisions without delivering them.
type LogSink struct{}

var _ relevance.Sink = LogSink{}

// Notify logs the decision.
//
//nolint:gocritic // Decision is passed by value per relevance.Sink
func (LogSink) Notify(ctx context.Context, d relevance.Decision, listing *relevance.ListingAttributes) error {
	logging.Ctx(ctx).Info().
		Int64("user_id", d.UserID).
		Str("listing_id", d.ListingID).
		Str("title", listing.Title).
		Str("matched", d.Matched).
		Float64("score", d.Score).
		Msg("notification disabled, decision logged only")
	return nil
}
