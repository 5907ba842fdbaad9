// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ekrili/internal/metrics"
	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// Pipeline decides which users to notify about a new or updated listing.
// It holds no per-listing state; concurrent passes over different listings
// are independent.
type Pipeline struct {
	config   *Config
	logger   zerolog.Logger
	vocab    VocabularyProvider
	history  HistoryStore
	listings ListingStore
	sink     Sink
	now      func() time.Time
}

// Dependencies are the collaborators a Pipeline reads from and writes to.
// Sink may be nil for pipelines only used for dry runs.
type Dependencies struct {
	Vocabularies VocabularyProvider
	History      HistoryStore
	Listings     ListingStore
	Sink         Sink
}

// NewPipeline validates cfg and wires the collaborators.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(cfg *Config, deps Dependencies, logger zerolog.Logger) (*Pipeline, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Vocabularies == nil || deps.History == nil || deps.Listings == nil {
		return nil, errors.New("vocabulary, history and listing stores are required")
	}

	return &Pipeline{
		config:   cfg.Clone(),
		logger:   logger.With().Str("component", "relevance").Logger(),
		vocab:    deps.Vocabularies,
		history:  deps.History,
		listings: deps.Listings,
		sink:     deps.Sink,
		now:      time.Now,
	}, nil
}

// Config returns a copy of the pipeline configuration.
func (p *Pipeline) Config() *Config {
	return p.config.Clone()
}

// Extractor returns a feature extractor over the current vocabularies.
func (p *Pipeline) Extractor(ctx context.Context) (*query.Extractor, error) {
	vocab, err := p.loadVocabularies(ctx)
	if err != nil {
		return nil, err
	}
	return query.NewExtractor(vocab, query.NewMatcher(p.config.MatchThreshold)), nil
}

// Run performs a full pass for listingID and delivers every notify decision
// to the sink.
//
// Missing reference data for the whole pass (unknown listing, empty
// vocabularies, unreadable history) aborts the pass and is returned.
// Failures tied to a single user (missing owner, failed delivery) are
// recorded in the report, the pass continues, and the joined user failures
// are returned after all other users were served.
func (p *Pipeline) Run(ctx context.Context, listingID string) (*DecisionReport, error) {
	return p.pass(ctx, listingID, true)
}

// Evaluate performs the same pass as Run without notifying anyone.
func (p *Pipeline) Evaluate(ctx context.Context, listingID string) (*DecisionReport, error) {
	return p.pass(ctx, listingID, false)
}

func (p *Pipeline) pass(ctx context.Context, listingID string, deliver bool) (report *DecisionReport, err error) {
	began := time.Now()
	defer func() {
		metrics.RecordPass(time.Since(began), err)
	}()

	if deliver && p.sink == nil {
		return nil, errors.New("no notification sink configured")
	}

	listing, err := p.listings.Listing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("load listing %s: %w", listingID, err)
	}
	vocab, err := p.loadVocabularies(ctx)
	if err != nil {
		return nil, err
	}
	records, err := p.history.SearchRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("load search history: %w", err)
	}

	eligible, missing := NewEligibilityFilter(p.config.Freshness).Filter(records, p.now())

	report, err = p.Decide(ctx, listing, vocab, eligible)
	if err != nil {
		return nil, err
	}
	report.Failures = append(report.Failures, missing...)

	if deliver {
		for _, d := range report.Decisions {
			if err := p.sink.Notify(ctx, d, listing); err != nil {
				report.Failures = append(report.Failures, &UserError{UserID: d.UserID, Err: err})
				continue
			}
			report.Delivered++
		}
	}

	for range report.Failures {
		metrics.UserFailuresTotal.Inc()
	}
	report.Duration = time.Since(began)

	var event *zerolog.Event
	if len(report.Failures) > 0 {
		event = p.logger.Warn().Errs("failures", report.Failures)
	} else {
		event = p.logger.Info()
	}
	event.
		Str("listing_id", listing.ID).
		Int("users", report.Users).
		Int("queries", report.Queries).
		Int("decisions", len(report.Decisions)).
		Int("delivered", report.Delivered).
		Dur("duration", report.Duration).
		Bool("dry_run", !deliver).
		Msg("decision pass finished")

	return report, errors.Join(report.Failures...)
}

// Decide scores every eligible query against listing and returns one notify
// decision per user whose query exceeds the notify threshold. Scanning a
// user stops at their first qualifying query. Decide never calls the sink.
//
// The only errors are a scorer that cannot be built (bad weights, empty
// listing document set) and context cancellation between users.
//
//nolint:gocritic // Vocabularies is four slice headers
func (p *Pipeline) Decide(ctx context.Context, listing *ListingAttributes, vocab query.Vocabularies, history []UserQueries) (*DecisionReport, error) {
	weights := p.config.WeightsFor(listing)
	scorer, err := NewScorer([]ListingAttributes{*listing}, weights, p.config.RegionMismatchPenalty)
	if err != nil {
		return nil, err
	}
	extractor := query.NewExtractor(vocab, query.NewMatcher(p.config.MatchThreshold))

	report := &DecisionReport{ListingID: listing.ID, Weights: weights}
	for _, uq := range history {
		if err := ctx.Err(); err != nil {
			return report, fmt.Errorf("decision pass for listing %s interrupted: %w", listing.ID, err)
		}
		report.Users++

		d, ok, scanned := p.decideUser(listing, extractor, scorer, uq)
		report.Queries += scanned
		metrics.RecordDecision(ok)
		if ok {
			report.Decisions = append(report.Decisions, d)
		}
	}
	return report, nil
}

//nolint:gocritic // UserQueries is read only
func (p *Pipeline) decideUser(listing *ListingAttributes, ex *query.Extractor, s *Scorer, uq UserQueries) (Decision, bool, int) {
	scanned := 0
	for _, raw := range uq.Queries {
		scanned++
		f := ex.Extract(raw)
		metrics.RecordExtraction(f.Empty())

		candidates := s.Recommend(f)
		if len(candidates) == 0 {
			continue
		}
		best := candidates[0].Score
		metrics.QueryScore.Observe(best)

		p.logger.Debug().
			Int64("user_id", uq.UserID).
			Str("listing_id", listing.ID).
			Str("matched", f.String()).
			Float64("score", best).
			Float64("threshold", p.config.NotifyThreshold).
			Msg("query scored")

		if best > p.config.NotifyThreshold {
			return Decision{
				UserID:    uq.UserID,
				ListingID: listing.ID,
				Query:     raw,
				Matched:   f.String(),
				Score:     best,
			}, true, scanned
		}
	}
	return Decision{}, false, scanned
}

func (p *Pipeline) loadVocabularies(ctx context.Context) (query.Vocabularies, error) {
	vocab, err := p.vocab.Vocabularies(ctx)
	if err != nil {
		return query.Vocabularies{}, fmt.Errorf("load vocabularies: %w", err)
	}
	if len(vocab.Types) == 0 {
		return query.Vocabularies{}, fmt.Errorf("property types: %w", ErrEmptyVocabulary)
	}
	if len(vocab.Regions) == 0 {
		return query.Vocabularies{}, fmt.Errorf("regions: %w", ErrEmptyVocabulary)
	}
	return vocab, nil
}
