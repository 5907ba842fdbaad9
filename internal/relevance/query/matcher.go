// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

import "strings"

// DefaultThreshold is the minimum ratio for a token to match a term.
const DefaultThreshold = 0.8

// Matcher performs first-acceptable fuzzy lookups against a vocabulary.
type Matcher struct {
	threshold float64
}

// NewMatcher returns a Matcher accepting ratios >= threshold.
// A non-positive threshold falls back to DefaultThreshold.
func NewMatcher(threshold float64) Matcher {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return Matcher{threshold: threshold}
}

// Threshold returns the acceptance threshold.
func (m Matcher) Threshold() float64 {
	return m.threshold
}

// Match returns the canonical name of the first term in vocab whose name is
// similar enough to token. Both sides are case-folded before comparison.
func (m Matcher) Match(token string, vocab Vocabulary) (string, bool) {
	folded := strings.ToLower(token)
	for _, t := range vocab {
		if Ratio(folded, strings.ToLower(t.Name)) >= m.threshold {
			return t.Name, true
		}
	}
	return "", false
}

// MatchWord is Match comparing token against each whitespace-separated word
// of every term, so "commerces" selects "Magasins Commerces".
func (m Matcher) MatchWord(token string, vocab Vocabulary) (string, bool) {
	folded := strings.ToLower(token)
	for _, t := range vocab {
		for _, word := range strings.Fields(strings.ToLower(t.Name)) {
			if Ratio(folded, word) >= m.threshold {
				return t.Name, true
			}
		}
	}
	return "", false
}
