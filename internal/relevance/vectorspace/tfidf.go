// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package vectorspace implements the TF-IDF document space used to compare
// search queries with listings.
//
// The weighting matches the common text-mining defaults: documents are
// lower-cased, tokens are runs of two or more word characters, term
// frequency is the raw count, inverse document frequency is smoothed as
// ln((1+n)/(1+df)) + 1, and every vector is L2-normalized.
package vectorspace

import (
	"errors"
	"math"
	"sort"
	"strings"
	"unicode"
)

// ErrNoDocuments is returned when fitting an empty corpus.
var ErrNoDocuments = errors.New("vectorspace: no documents to fit")

// Vector is a sparse vector keyed by term index.
type Vector map[int]float64

// Vectorizer holds a fitted vocabulary and IDF table. It is immutable after
// Fit and safe for concurrent Transform calls.
type Vectorizer struct {
	terms map[string]int
	idf   []float64
}

// Fit builds the term vocabulary and IDF weights over docs and returns the
// fitted vectorizer together with the document vectors.
func Fit(docs []string) (*Vectorizer, []Vector, error) {
	if len(docs) == 0 {
		return nil, nil, ErrNoDocuments
	}

	tokenized := make([][]string, len(docs))
	df := map[string]int{}
	for i, d := range docs {
		tokenized[i] = Tokenize(d)
		seen := map[string]bool{}
		for _, tok := range tokenized[i] {
			if !seen[tok] {
				seen[tok] = true
				df[tok]++
			}
		}
	}

	// Sorted term order keeps indices deterministic across runs.
	vocab := make([]string, 0, len(df))
	for term := range df {
		vocab = append(vocab, term)
	}
	sort.Strings(vocab)

	v := &Vectorizer{
		terms: make(map[string]int, len(vocab)),
		idf:   make([]float64, len(vocab)),
	}
	n := float64(len(docs))
	for i, term := range vocab {
		v.terms[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	vectors := make([]Vector, len(docs))
	for i, toks := range tokenized {
		vectors[i] = v.vectorize(toks)
	}
	return v, vectors, nil
}

// Transform maps text into the fitted space. Terms unseen during Fit are
// ignored; text with no known terms yields an empty vector.
func (v *Vectorizer) Transform(text string) Vector {
	return v.vectorize(Tokenize(text))
}

// Len returns the vocabulary size.
func (v *Vectorizer) Len() int {
	return len(v.idf)
}

// Index returns the column of term, if it is part of the vocabulary.
func (v *Vectorizer) Index(term string) (int, bool) {
	i, ok := v.terms[strings.ToLower(term)]
	return i, ok
}

func (v *Vectorizer) vectorize(tokens []string) Vector {
	vec := Vector{}
	for _, tok := range tokens {
		if i, ok := v.terms[tok]; ok {
			vec[i]++
		}
	}
	for i, tf := range vec {
		vec[i] = tf * v.idf[i]
	}
	return vec.normalized()
}

func (vec Vector) norm() float64 {
	var sum float64
	for _, x := range vec {
		sum += x * x
	}
	return math.Sqrt(sum)
}

func (vec Vector) normalized() Vector {
	n := vec.norm()
	if n == 0 {
		return vec
	}
	for i, x := range vec {
		vec[i] = x / n
	}
	return vec
}

// Cosine returns the cosine similarity of a and b, or 0 when either vector
// is empty.
func Cosine(a, b Vector) float64 {
	na, nb := a.norm(), b.norm()
	if na == 0 || nb == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for i, x := range a {
		dot += x * b[i]
	}
	return dot / (na * nb)
}

// Tokenize lower-cases text and returns every maximal run of word
// characters (letters, numbers, underscore) that is at least two runes long.
func Tokenize(text string) []string {
	var (
		tokens []string
		cur    []rune
	)
	flush := func() {
		if len(cur) >= 2 {
			tokens = append(tokens, string(cur))
		}
		cur = cur[:0]
	}
	for _, r := range strings.ToLower(text) {
		if r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r) {
			cur = append(cur, r)
			continue
		}
		flush()
	}
	flush()
	return tokens
}
