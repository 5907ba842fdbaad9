// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package relevance

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	t.Run("behavioral constants", func(t *testing.T) {
		if cfg.RegionMismatchPenalty != 0.1 {
			t.Errorf("RegionMismatchPenalty = %f, want 0.1", cfg.RegionMismatchPenalty)
		}
		if cfg.NotifyThreshold != 50 {
			t.Errorf("NotifyThreshold = %f, want 50", cfg.NotifyThreshold)
		}
		if cfg.MatchThreshold != 0.8 {
			t.Errorf("MatchThreshold = %f, want 0.8", cfg.MatchThreshold)
		}
	})

	t.Run("freshness windows", func(t *testing.T) {
		if cfg.Freshness.MaxSearchAge != 31*24*time.Hour {
			t.Errorf("MaxSearchAge = %v, want 31 days", cfg.Freshness.MaxSearchAge)
		}
		if cfg.Freshness.MaxInactivity != 61*24*time.Hour {
			t.Errorf("MaxInactivity = %v, want 61 days", cfg.Freshness.MaxInactivity)
		}
	})

	t.Run("validates", func(t *testing.T) {
		if err := cfg.Validate(); err != nil {
			t.Errorf("Validate() error = %v", err)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name      string
		modify    func(*Config)
		wantError bool
	}{
		{"default is valid", func(*Config) {}, false},
		{"unknown weight mode", func(c *Config) { c.WeightMode = "heavy" }, true},
		{"negative penalty", func(c *Config) { c.RegionMismatchPenalty = -0.1 }, true},
		{"penalty above one", func(c *Config) { c.RegionMismatchPenalty = 1.5 }, true},
		{"zero penalty allowed", func(c *Config) { c.RegionMismatchPenalty = 0 }, false},
		{"threshold above 100", func(c *Config) { c.NotifyThreshold = 101 }, true},
		{"zero match threshold", func(c *Config) { c.MatchThreshold = 0 }, true},
		{"zero search age", func(c *Config) { c.Freshness.MaxSearchAge = 0 }, true},
		{"negative inactivity", func(c *Config) { c.Freshness.MaxInactivity = -time.Hour }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantError {
				t.Errorf("Validate() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()
	clone.NotifyThreshold = 75

	if cfg.NotifyThreshold != 50 {
		t.Error("modifying the clone changed the original")
	}
}

func TestConfig_WeightsFor(t *testing.T) {
	withLocality := &ListingAttributes{State: "Tunis", Delegation: "Carthage"}
	regionOnly := &ListingAttributes{State: "Tunis"}

	tests := []struct {
		name    string
		mode    WeightMode
		listing *ListingAttributes
		want    Weights
	}{
		{"auto with sub-region", WeightModeAuto, withLocality, FullWeights()},
		{"auto region only", WeightModeAuto, regionOnly, ReducedWeights()},
		{"forced full", WeightModeFull, regionOnly, FullWeights()},
		{"forced reduced", WeightModeReduced, withLocality, ReducedWeights()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.WeightMode = tt.mode
			if got := cfg.WeightsFor(tt.listing); got != tt.want {
				t.Errorf("WeightsFor() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
