// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package query

import (
	"fmt"
	"strings"
)

// Term is one canonical vocabulary entry. Parent names the enclosing term one
// level up the location tree (region for a sub-region, sub-region for a
// district) and is empty for regions and property types.
type Term struct {
	Name   string `json:"name" yaml:"name"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Vocabulary is an ordered list of canonical terms for one category.
// Order matters: the first acceptable fuzzy match wins.
type Vocabulary []Term

// Terms builds a parentless vocabulary from plain names.
func Terms(names ...string) Vocabulary {
	v := make(Vocabulary, len(names))
	for i, n := range names {
		v[i] = Term{Name: n}
	}
	return v
}

// Names returns the canonical names in order.
func (v Vocabulary) Names() []string {
	names := make([]string, len(v))
	for i, t := range v {
		names[i] = t.Name
	}
	return names
}

// Contains reports whether name is a term of v, ignoring case.
func (v Vocabulary) Contains(name string) bool {
	for _, t := range v {
		if strings.EqualFold(t.Name, name) {
			return true
		}
	}
	return false
}

// Vocabularies groups the four controlled vocabularies used for extraction.
// Regions, SubRegions and Districts form a strict three level tree.
type Vocabularies struct {
	Types      Vocabulary `json:"types" yaml:"types"`
	Regions    Vocabulary `json:"regions" yaml:"regions"`
	SubRegions Vocabulary `json:"sub_regions" yaml:"sub_regions"`
	Districts  Vocabulary `json:"districts" yaml:"districts"`
}

// Validate checks the location tree: every sub-region parent must be a
// region and every district parent a sub-region. Empty parents are allowed
// for vocabularies loaded as flat name lists.
func (v Vocabularies) Validate() error {
	for _, t := range v.Types {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("types: empty term name")
		}
	}
	for _, t := range v.Regions {
		if strings.TrimSpace(t.Name) == "" {
			return fmt.Errorf("regions: empty term name")
		}
	}
	for _, t := range v.SubRegions {
		if t.Parent != "" && !v.Regions.Contains(t.Parent) {
			return fmt.Errorf("sub-region %q: unknown region %q", t.Name, t.Parent)
		}
	}
	for _, t := range v.Districts {
		if t.Parent != "" && !v.SubRegions.Contains(t.Parent) {
			return fmt.Errorf("district %q: unknown sub-region %q", t.Name, t.Parent)
		}
	}
	return nil
}
