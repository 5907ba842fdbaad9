// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/ekrili/internal/relevance/query"
)

var testNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type fakeVocabularies struct {
	vocab query.Vocabularies
	err   error
}

func (f *fakeVocabularies) Vocabularies(context.Context) (query.Vocabularies, error) {
	return f.vocab, f.err
}

type fakeHistory struct {
	records []SearchRecord
	err     error
}

func (f *fakeHistory) SearchRecords(context.Context) ([]SearchRecord, error) {
	return f.records, f.err
}

type fakeListings map[string]ListingAttributes

func (f fakeListings) Listing(_ context.Context, id string) (*ListingAttributes, error) {
	l, ok := f[id]
	if !ok {
		return nil, fmt.Errorf("listing %s: %w", id, ErrListingNotFound)
	}
	return &l, nil
}

type recordingSink struct {
	mu        sync.Mutex
	delivered []Decision
	failFor   map[int64]error
}

func (s *recordingSink) Notify(_ context.Context, d Decision, _ *ListingAttributes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFor[d.UserID]; err != nil {
		return err
	}
	s.delivered = append(s.delivered, d)
	return nil
}

func pipelineVocabularies() query.Vocabularies {
	return query.Vocabularies{
		Types:      query.Terms("Appartements", "Villas"),
		Regions:    query.Terms("Tunis", "Sousse", "Monastir"),
		SubRegions: query.Vocabulary{{Name: "Carthage", Parent: "Tunis"}},
		Districts:  query.Vocabulary{{Name: "Salammbo", Parent: "Carthage"}},
	}
}

func record(userID int64, q string) SearchRecord {
	login := testNow.Add(-time.Hour)
	searched := testNow.Add(-24 * time.Hour)
	return SearchRecord{UserID: userID, Query: q, SearchDate: &searched, LastLogin: &login}
}

func newTestPipeline(t *testing.T, records []SearchRecord, sink Sink) *Pipeline {
	t.Helper()
	p, err := NewPipeline(DefaultConfig(), Dependencies{
		Vocabularies: &fakeVocabularies{vocab: pipelineVocabularies()},
		History:      &fakeHistory{records: records},
		Listings:     fakeListings{"L-1": tunisListing()},
		Sink:         sink,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	p.now = func() time.Time { return testNow }
	return p
}

func TestNewPipeline(t *testing.T) {
	t.Parallel()

	deps := Dependencies{
		Vocabularies: &fakeVocabularies{},
		History:      &fakeHistory{},
		Listings:     fakeListings{},
	}

	if _, err := NewPipeline(nil, deps, zerolog.Nop()); err != nil {
		t.Errorf("nil config should fall back to defaults, got %v", err)
	}

	bad := DefaultConfig()
	bad.NotifyThreshold = -1
	if _, err := NewPipeline(bad, deps, zerolog.Nop()); err == nil {
		t.Error("expected error for invalid config")
	}

	if _, err := NewPipeline(nil, Dependencies{}, zerolog.Nop()); err == nil {
		t.Error("expected error for missing stores")
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	p := newTestPipeline(t, []SearchRecord{
		record(1, "appartements tunis s+3 500"),
		record(2, "villas sousse"),
	}, sink)

	report, err := p.Run(context.Background(), "L-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if report.Users != 2 {
		t.Errorf("Users = %d, want 2", report.Users)
	}
	if report.Weights != ReducedWeights() {
		t.Errorf("Weights = %+v, want reduced for a listing without sub-region", report.Weights)
	}
	if len(sink.delivered) != 1 {
		t.Fatalf("delivered %d decisions, want 1", len(sink.delivered))
	}

	d := sink.delivered[0]
	if d.UserID != 1 || d.ListingID != "L-1" {
		t.Errorf("decision = %+v, want user 1 for L-1", d)
	}
	if d.Score <= 90 {
		t.Errorf("score = %f, want > 90", d.Score)
	}
	if d.Matched == "" {
		t.Error("Matched is empty")
	}
	if report.Delivered != 1 {
		t.Errorf("Delivered = %d, want 1", report.Delivered)
	}
}

func TestPipeline_FirstQualifyingQueryWins(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	p := newTestPipeline(t, []SearchRecord{
		record(1, "villas monastir"),
		record(1, "appartements tunis s+3 500"),
		record(1, "appartements tunis"),
	}, sink)

	report, err := p.Run(context.Background(), "L-1")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sink.delivered) != 1 {
		t.Fatalf("delivered %d decisions, want exactly 1 per user", len(sink.delivered))
	}
	if got := sink.delivered[0].Query; got != "appartements tunis s+3 500" {
		t.Errorf("Query = %q, want the first qualifying search", got)
	}
	if report.Queries != 2 {
		t.Errorf("Queries = %d, want scanning to stop after the second search", report.Queries)
	}
}

func TestPipeline_UserFailuresAreIsolated(t *testing.T) {
	t.Parallel()

	t.Run("missing owner", func(t *testing.T) {
		t.Parallel()
		orphan := record(9, "appartements tunis s+3 500")
		orphan.LastLogin = nil

		sink := &recordingSink{}
		p := newTestPipeline(t, []SearchRecord{orphan, record(1, "appartements tunis s+3 500")}, sink)

		report, err := p.Run(context.Background(), "L-1")
		if !errors.Is(err, ErrUserNotFound) {
			t.Fatalf("Run() error = %v, want ErrUserNotFound", err)
		}
		if report == nil || len(sink.delivered) != 1 || sink.delivered[0].UserID != 1 {
			t.Errorf("remaining user not served: report=%+v delivered=%+v", report, sink.delivered)
		}
	})

	t.Run("delivery failure", func(t *testing.T) {
		t.Parallel()
		errSMTP := errors.New("smtp unavailable")
		sink := &recordingSink{failFor: map[int64]error{1: errSMTP}}
		p := newTestPipeline(t, []SearchRecord{
			record(1, "appartements tunis s+3 500"),
			record(2, "appartement tunis s3"),
		}, sink)

		report, err := p.Run(context.Background(), "L-1")
		if !errors.Is(err, errSMTP) {
			t.Fatalf("Run() error = %v, want the delivery error", err)
		}

		var ue *UserError
		if !errors.As(err, &ue) || ue.UserID != 1 {
			t.Errorf("error = %v, want *UserError for user 1", err)
		}
		if report.Delivered != 1 || len(report.Decisions) != 2 {
			t.Errorf("Delivered = %d, Decisions = %d, want 1 and 2", report.Delivered, len(report.Decisions))
		}
		if msgs := report.FailureMessages(); len(msgs) != 1 {
			t.Errorf("FailureMessages() = %v, want one entry", msgs)
		}
	})
}

func TestPipeline_PassErrors(t *testing.T) {
	t.Parallel()

	errDB := errors.New("database closed")

	tests := []struct {
		name    string
		deps    Dependencies
		listing string
		wantErr error
	}{
		{
			name: "unknown listing",
			deps: Dependencies{
				Vocabularies: &fakeVocabularies{vocab: pipelineVocabularies()},
				History:      &fakeHistory{},
				Listings:     fakeListings{},
			},
			listing: "L-404",
			wantErr: ErrListingNotFound,
		},
		{
			name: "no property types",
			deps: Dependencies{
				Vocabularies: &fakeVocabularies{vocab: query.Vocabularies{Regions: query.Terms("Tunis")}},
				History:      &fakeHistory{},
				Listings:     fakeListings{"L-1": tunisListing()},
			},
			listing: "L-1",
			wantErr: ErrEmptyVocabulary,
		},
		{
			name: "no regions",
			deps: Dependencies{
				Vocabularies: &fakeVocabularies{vocab: query.Vocabularies{Types: query.Terms("Villas")}},
				History:      &fakeHistory{},
				Listings:     fakeListings{"L-1": tunisListing()},
			},
			listing: "L-1",
			wantErr: ErrEmptyVocabulary,
		},
		{
			name: "history unavailable",
			deps: Dependencies{
				Vocabularies: &fakeVocabularies{vocab: pipelineVocabularies()},
				History:      &fakeHistory{err: errDB},
				Listings:     fakeListings{"L-1": tunisListing()},
			},
			listing: "L-1",
			wantErr: errDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			sink := &recordingSink{}
			tt.deps.Sink = sink
			p, err := NewPipeline(DefaultConfig(), tt.deps, zerolog.Nop())
			if err != nil {
				t.Fatalf("NewPipeline() error = %v", err)
			}

			report, err := p.Run(context.Background(), tt.listing)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Run() error = %v, want %v", err, tt.wantErr)
			}
			if report != nil {
				t.Errorf("aborted pass returned report %+v", report)
			}
			if len(sink.delivered) != 0 {
				t.Error("aborted pass delivered notifications")
			}
		})
	}
}

func TestPipeline_Evaluate(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	p := newTestPipeline(t, []SearchRecord{record(1, "appartements tunis s+3 500")}, sink)

	report, err := p.Evaluate(context.Background(), "L-1")
	if err != nil {
		t.Fatalf("Evaluate() error = %v", err)
	}
	if len(report.Decisions) != 1 {
		t.Errorf("Decisions = %d, want 1", len(report.Decisions))
	}
	if report.Delivered != 0 || len(sink.delivered) != 0 {
		t.Error("Evaluate must not notify")
	}
}

func TestPipeline_RunWithoutSink(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, nil, nil)
	if _, err := p.Run(context.Background(), "L-1"); err == nil {
		t.Error("Run() without sink should fail")
	}
	if _, err := p.Evaluate(context.Background(), "L-1"); err != nil {
		t.Errorf("Evaluate() without sink error = %v", err)
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	t.Parallel()

	sink := &recordingSink{}
	p := newTestPipeline(t, []SearchRecord{record(1, "appartements tunis s+3 500")}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, "L-1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if len(sink.delivered) != 0 {
		t.Error("cancelled pass delivered notifications")
	}
}

func TestPipeline_Decide(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, nil, nil)
	listing := tunisListing()
	listing.Delegation = "Carthage"

	report, err := p.Decide(context.Background(), &listing, pipelineVocabularies(), []UserQueries{
		{UserID: 1, Queries: []string{"appartements carthage tunis s+3 500"}},
		{UserID: 2, Queries: []string{"villas"}},
	})
	if err != nil {
		t.Fatalf("Decide() error = %v", err)
	}
	if report.Weights != FullWeights() {
		t.Errorf("Weights = %+v, want full for a listing with a sub-region", report.Weights)
	}
	if len(report.Decisions) != 1 || report.Decisions[0].UserID != 1 {
		t.Errorf("Decisions = %+v, want only user 1", report.Decisions)
	}
}

func TestPipeline_Extractor(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(t, nil, nil)
	ex, err := p.Extractor(context.Background())
	if err != nil {
		t.Fatalf("Extractor() error = %v", err)
	}
	f := ex.Extract("Appartement à Tunis, S+2")
	if f.Type != "Appartements" || f.State != "Tunis" || f.Size != "s+2" {
		t.Errorf("Extract() = %+v", f)
	}
}
