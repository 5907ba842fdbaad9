// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/ekrili/internal/relevance/query"
	"github.com/tomtom215/ekrili/internal/relevance/vectorspace"
)

// Scorer compares query features with a fixed set of listings in a TF-IDF
// space fitted over the listings' weighted documents. It is immutable and
// safe for concurrent use.
type Scorer struct {
	listings []ListingAttributes
	weights  Weights
	penalty  float64
	space    *vectorspace.Vectorizer
	docs     []vectorspace.Vector
}

// NewScorer fits the vector space over listings. penalty is applied to
// scores when a single listing is scored against a query naming another
// region; it must be in [0, 1].
//
//nolint:gocritic // Weights is a small value type
func NewScorer(listings []ListingAttributes, weights Weights, penalty float64) (*Scorer, error) {
	if len(listings) == 0 {
		return nil, fmt.Errorf("build scorer: %w", vectorspace.ErrNoDocuments)
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}
	if penalty < 0 || penalty > 1 {
		return nil, fmt.Errorf("build scorer: penalty must be in [0, 1], got %f", penalty)
	}

	docs := make([]string, len(listings))
	for i := range listings {
		docs[i] = ListingDocument(&listings[i], weights)
	}
	space, vectors, err := vectorspace.Fit(docs)
	if err != nil {
		return nil, fmt.Errorf("build scorer: %w", err)
	}

	return &Scorer{
		listings: append([]ListingAttributes(nil), listings...),
		weights:  weights,
		penalty:  penalty,
		space:    space,
		docs:     vectors,
	}, nil
}

// Weights returns the weights the scorer was built with.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Recommend scores every listing against f, best first. Empty features are
// scored like any other query and yield zero similarity.
//
// When the scorer holds exactly one listing and f names a region different
// from that listing's region, the score is multiplied by the penalty. With
// several listings no penalty is applied; callers check regions per listing.
//
//nolint:gocritic // Features is passed by value for immutability
func (s *Scorer) Recommend(f query.Features) []ScoredCandidate {
	q := s.space.Transform(QueryDocument(f, s.weights))

	out := make([]ScoredCandidate, len(s.listings))
	for i := range s.listings {
		out[i] = ScoredCandidate{
			ListingID: s.listings[i].ID,
			Title:     s.listings[i].Title,
			Score:     vectorspace.Cosine(q, s.docs[i]) * 100,
		}
	}

	if len(s.listings) == 1 && f.State != "" && !strings.EqualFold(f.State, s.listings[0].State) {
		out[0].Score *= s.penalty
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// ListingDocument renders a listing as the weighted text indexed by the
// vector space: the title followed by each attribute repeated weight times.
//
//nolint:gocritic // Weights is a small value type
func ListingDocument(l *ListingAttributes, w Weights) string {
	var b strings.Builder
	b.WriteString(l.Title)
	b.WriteByte(' ')
	writeWeighted(&b, l.Size, l.State, l.Delegation, l.Jurisdiction, l.Type, l.Price, w)
	return b.String()
}

// QueryDocument renders features with the same weighting as ListingDocument.
// Missing features contribute nothing.
//
//nolint:gocritic // Features and Weights are small value types
func QueryDocument(f query.Features, w Weights) string {
	var b strings.Builder
	writeWeighted(&b, f.Size, f.State, f.Delegation, f.Jurisdiction, f.Type, f.Price, w)
	return b.String()
}

//nolint:gocritic // Weights is a small value type
func writeWeighted(b *strings.Builder, size, state, delegation, jurisdiction, typ, price string, w Weights) {
	for _, a := range [...]struct {
		value  string
		weight int
	}{
		{size, w.Size},
		{state, w.State},
		{delegation, w.Delegation},
		{jurisdiction, w.Jurisdiction},
		{typ, w.Type},
		{price, w.Price},
	} {
		b.WriteString(strings.Repeat(strings.ToLower(a.value)+" ", a.weight))
	}
}
