// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package main

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/eventprocessor"
	"github.com/tomtom215/ekrili/internal/notify"
	"github.com/tomtom215/ekrili/internal/relevance"
)

func TestRelevanceConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights string
		want    relevance.WeightMode
	}{
		{"auto", "auto", relevance.WeightModeAuto},
		{"full", "full", relevance.WeightModeFull},
		{"reduced", "reduced", relevance.WeightModeReduced},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := &config.RelevanceConfig{
				Weights:               tt.weights,
				RegionMismatchPenalty: 0.1,
				NotifyThreshold:       50,
				MatchThreshold:        0.8,
				MaxSearchAge:          31 * 24 * time.Hour,
				MaxInactivity:         61 * 24 * time.Hour,
			}
			got := relevanceConfig(in)
			if got.WeightMode != tt.want {
				t.Errorf("WeightMode = %q, want %q", got.WeightMode, tt.want)
			}
			if err := got.Validate(); err != nil {
				t.Errorf("Validate() = %v", err)
			}
			if got.Freshness.MaxInactivity != in.MaxInactivity || got.NotifyThreshold != 50 {
				t.Errorf("config = %+v", got)
			}
		})
	}
}

func TestRelevanceConfig_MatchesEngineDefaults(t *testing.T) {
	t.Parallel()

	cfg := &config.RelevanceConfig{
		Weights:               "auto",
		RegionMismatchPenalty: 0.1,
		NotifyThreshold:       50,
		MatchThreshold:        0.8,
		MaxSearchAge:          31 * 24 * time.Hour,
		MaxInactivity:         61 * 24 * time.Hour,
	}
	if got, want := *relevanceConfig(cfg), *relevance.DefaultConfig(); got != want {
		t.Errorf("relevanceConfig() = %+v, want %+v", got, want)
	}
}

func TestSubscriberConfig_AckWaitCoversDelayAndRetries(t *testing.T) {
	t.Parallel()

	cfg := &config.Config{
		NATS: config.NATSConfig{
			StreamName:                 "LISTINGS",
			DurableName:                "relevance-engine",
			QueueGroup:                 "relevance",
			RouterRetryCount:           3,
			RouterRetryInitialInterval: time.Second,
			RouterCloseTimeout:         5 * time.Second,
		},
		Relevance: config.RelevanceConfig{TriggerDelay: time.Minute},
	}
	routerCfg := eventprocessor.RouterConfigFrom(&cfg.NATS)
	sub := subscriberConfig(cfg, "nats://127.0.0.1:4222", &routerCfg)

	// 1s + 2s + 4s of backoff on top of the delay and the base deadline.
	if want := 30*time.Second + time.Minute + 7*time.Second; sub.AckWait != want {
		t.Errorf("AckWait = %v, want %v", sub.AckWait, want)
	}
	if sub.StreamName != "LISTINGS" || sub.DurableName != "relevance-engine" || sub.QueueGroup != "relevance" {
		t.Errorf("subscriber config = %+v", sub)
	}
}

func TestInitEvents_Disabled(t *testing.T) {
	t.Parallel()

	c, err := InitEvents(context.Background(), &config.Config{}, nil)
	if err != nil || c != nil {
		t.Fatalf("InitEvents() = %v, %v, want nil, nil", c, err)
	}
	// Shutdown tolerates the nil components.
	c.Shutdown(context.Background())
}

func TestInitSink_Disabled(t *testing.T) {
	t.Parallel()

	sink, err := initSink(&config.NotifyConfig{Enabled: false}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := sink.(notify.LogSink); !ok {
		t.Errorf("sink = %T, want notify.LogSink", sink)
	}
}

func TestInitSink_InvalidSMTP(t *testing.T) {
	t.Parallel()

	if _, err := initSink(&config.NotifyConfig{Enabled: true, SMTPPort: 587}, nil, nil); err == nil {
		t.Error("initSink() accepted an empty SMTP host")
	}
}

func TestSeedVocabulary_NoFile(t *testing.T) {
	t.Parallel()

	if err := seedVocabulary(context.Background(), nil, &config.VocabularyConfig{}); err != nil {
		t.Errorf("seedVocabulary() = %v", err)
	}
}

func TestSeedVocabulary_MissingFile(t *testing.T) {
	t.Parallel()

	cfg := &config.VocabularyConfig{SeedFile: t.TempDir() + "/missing.yaml"}
	if err := seedVocabulary(context.Background(), nil, cfg); err == nil {
		t.Error("seedVocabulary() accepted a missing file")
	}
}

func TestLedgerConfig(t *testing.T) {
	t.Parallel()

	got := ledgerConfig(&config.NotifyConfig{LedgerPath: "/data/ledger", LedgerTTL: 90 * 24 * time.Hour})
	if got.Path != "/data/ledger" || got.TTL != 90*24*time.Hour || !got.SyncWrites {
		t.Errorf("ledgerConfig() = %+v", got)
	}
}
