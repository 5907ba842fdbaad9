// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

import (
	"strings"
	"unicode"
)

// Extractor classifies query tokens into Features.
type Extractor struct {
	vocab   Vocabularies
	matcher Matcher
}

// NewExtractor binds the vocabularies and matcher used for classification.
//
//nolint:gocritic // Vocabularies is four slice headers, copied once per extractor
func NewExtractor(vocab Vocabularies, matcher Matcher) *Extractor {
	if matcher.threshold <= 0 {
		matcher = NewMatcher(DefaultThreshold)
	}
	return &Extractor{vocab: vocab, matcher: matcher}
}

// Tokenize drops every character other than letters, digits, underscore,
// whitespace and '+', then splits on whitespace.
func Tokenize(raw string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if isWordRune(r) || unicode.IsSpace(r) || r == '+' {
			return r
		}
		return -1
	}, raw)
	return strings.Fields(cleaned)
}

// Extract tokenizes raw and classifies the tokens.
func (e *Extractor) Extract(raw string) Features {
	return e.ExtractTokens(Tokenize(raw))
}

// ExtractTokens runs the single-pass classifier. For each token the rules
// are tried in order and the first one that fires consumes the token:
//
//  1. all digits: price (only the first number is kept)
//  2. property type (matched per word of multi-word types)
//  3. size code
//  4. region
//  5. sub-region
//  6. district
//
// A rule whose feature is already set is skipped. Sub-region and district
// share one locality slot: once either is known the other is not tried.
// Unmatched tokens are dropped.
func (e *Extractor) ExtractTokens(tokens []string) Features {
	var f Features
	for _, tok := range tokens {
		if tok == "" {
			continue
		}

		if isDigits(tok) {
			if f.Price == "" {
				f.Price = tok
			}
			continue
		}

		if f.Type == "" {
			if name, ok := e.matcher.MatchWord(tok, e.vocab.Types); ok {
				f.Type = name
				continue
			}
		}

		if f.Size == "" {
			if code := NormalizeSize(tok); code != "" {
				f.Size = code
				continue
			}
		}

		if f.State == "" {
			if name, ok := e.matcher.Match(tok, e.vocab.Regions); ok {
				f.State = name
				continue
			}
		}

		if f.Delegation != "" || f.Jurisdiction != "" {
			continue
		}
		if name, ok := e.matcher.Match(tok, e.vocab.SubRegions); ok {
			f.Delegation = name
			continue
		}
		if name, ok := e.matcher.Match(tok, e.vocab.Districts); ok {
			f.Jurisdiction = name
		}
	}
	return f
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}
