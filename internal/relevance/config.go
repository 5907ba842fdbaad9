// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"fmt"
	"time"

	"github.com/tomtom215/ekrili/internal/relevance/query"
)

// WeightMode selects which attribute weights a listing is scored with.
type WeightMode string

const (
	// WeightModeAuto scores listings that carry a sub-region or district with
	// FullWeights and all others with ReducedWeights.
	WeightModeAuto WeightMode = "auto"

	// WeightModeFull always uses FullWeights.
	WeightModeFull WeightMode = "full"

	// WeightModeReduced always uses ReducedWeights.
	WeightModeReduced WeightMode = "reduced"
)

// Weights is how many times each attribute value is repeated in the
// documents fed to the vector space. Zero removes an attribute.
type Weights struct {
	Size         int `json:"size"`
	State        int `json:"state"`
	Delegation   int `json:"delegation"`
	Jurisdiction int `json:"jurisdiction"`
	Type         int `json:"type"`
	Price        int `json:"price"`
}

// FullWeights is used when listings carry the whole location hierarchy.
func FullWeights() Weights {
	return Weights{Size: 3, State: 4, Delegation: 4, Jurisdiction: 4, Type: 1, Price: 1}
}

// ReducedWeights is used when listings only carry a region.
func ReducedWeights() Weights {
	return Weights{Size: 3, State: 4, Type: 3, Price: 1}
}

// Validate rejects negative weights and the all-zero configuration.
func (w Weights) Validate() error {
	fields := [...]struct {
		name string
		v    int
	}{
		{"size", w.Size}, {"state", w.State}, {"delegation", w.Delegation},
		{"jurisdiction", w.Jurisdiction}, {"type", w.Type}, {"price", w.Price},
	}
	total := 0
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("weights.%s must be non-negative, got %d", f.name, f.v)
		}
		total += f.v
	}
	if total == 0 {
		return fmt.Errorf("weights must not all be zero")
	}
	return nil
}

// Config contains all tunables of the relevance engine.
type Config struct {
	// WeightMode selects the attribute weights per listing.
	// Default: auto.
	WeightMode WeightMode `json:"weight_mode"`

	// RegionMismatchPenalty multiplies the score when the query names a
	// different region than the single scored listing.
	// Default: 0.1.
	RegionMismatchPenalty float64 `json:"region_mismatch_penalty"`

	// NotifyThreshold is the score (percent) a query must exceed for its user
	// to be notified.
	// Default: 50.
	NotifyThreshold float64 `json:"notify_threshold"`

	// MatchThreshold is the minimum fuzzy ratio for a vocabulary match.
	// Default: 0.8.
	MatchThreshold float64 `json:"match_threshold"`

	// Freshness bounds which historical searches are considered.
	Freshness FreshnessConfig `json:"freshness"`
}

// FreshnessConfig bounds the age of eligible search history.
type FreshnessConfig struct {
	// MaxSearchAge excludes searches made before now minus this duration.
	// Default: 31 days.
	MaxSearchAge time.Duration `json:"max_search_age"`

	// MaxInactivity excludes users whose last login is before now minus this
	// duration.
	// Default: 61 days.
	MaxInactivity time.Duration `json:"max_inactivity"`
}

// DefaultConfig returns the production defaults.
func DefaultConfig() *Config {
	return &Config{
		WeightMode:            WeightModeAuto,
		RegionMismatchPenalty: 0.1,
		NotifyThreshold:       50.0,
		MatchThreshold:        query.DefaultThreshold,
		Freshness: FreshnessConfig{
			MaxSearchAge:  31 * 24 * time.Hour,
			MaxInactivity: 61 * 24 * time.Hour,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.WeightMode {
	case WeightModeAuto, WeightModeFull, WeightModeReduced:
	default:
		return fmt.Errorf("weight_mode must be one of auto, full, reduced, got %q", c.WeightMode)
	}
	if c.RegionMismatchPenalty < 0 || c.RegionMismatchPenalty > 1 {
		return fmt.Errorf("region_mismatch_penalty must be in [0, 1], got %f", c.RegionMismatchPenalty)
	}
	if c.NotifyThreshold < 0 || c.NotifyThreshold > 100 {
		return fmt.Errorf("notify_threshold must be in [0, 100], got %f", c.NotifyThreshold)
	}
	if c.MatchThreshold <= 0 || c.MatchThreshold > 1 {
		return fmt.Errorf("match_threshold must be in (0, 1], got %f", c.MatchThreshold)
	}
	if c.Freshness.MaxSearchAge <= 0 {
		return fmt.Errorf("freshness.max_search_age must be positive, got %v", c.Freshness.MaxSearchAge)
	}
	if c.Freshness.MaxInactivity <= 0 {
		return fmt.Errorf("freshness.max_inactivity must be positive, got %v", c.Freshness.MaxInactivity)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// WeightsFor returns the weights a listing is scored with under c.
func (c *Config) WeightsFor(l *ListingAttributes) Weights {
	switch c.WeightMode {
	case WeightModeFull:
		return FullWeights()
	case WeightModeReduced:
		return ReducedWeights()
	default:
		if l.Delegation != "" || l.Jurisdiction != "" {
			return FullWeights()
		}
		return ReducedWeights()
	}
}
