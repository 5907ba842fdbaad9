// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/database"
	"github.com/tomtom215/ekrili/internal/ledger"
	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/notify"
	"github.com/tomtom215/ekrili/internal/relevance"
)

// relevanceConfig maps the loaded settings onto the engine configuration.
func relevanceConfig(cfg *config.RelevanceConfig) *relevance.Config {
	return &relevance.Config{
		WeightMode:            relevance.WeightMode(cfg.Weights),
		RegionMismatchPenalty: cfg.RegionMismatchPenalty,
		NotifyThreshold:       cfg.NotifyThreshold,
		MatchThreshold:        cfg.MatchThreshold,
		Freshness: relevance.FreshnessConfig{
			MaxSearchAge:  cfg.MaxSearchAge,
			MaxInactivity: cfg.MaxInactivity,
		},
	}
}

// seedVocabulary loads the configured seed file, if any, into the database.
func seedVocabulary(ctx context.Context, db *database.DB, cfg *config.VocabularyConfig) error {
	if cfg.SeedFile == "" {
		logging.Info().Msg("no vocabulary seed file configured")
		return nil
	}
	seed, err := database.LoadSeedFile(cfg.SeedFile)
	if err != nil {
		return err
	}
	if err := db.ApplySeed(ctx, seed); err != nil {
		return fmt.Errorf("apply seed file %s: %w", cfg.SeedFile, err)
	}
	logging.Info().
		Str("file", cfg.SeedFile).
		Int("types", len(seed.Types)).
		Int("states", len(seed.States)).
		Msg("vocabulary seeded")
	return nil
}

// initSink returns the e-mail sink when notifications are enabled and a
// logging sink otherwise.
func initSink(cfg *config.NotifyConfig, db *database.DB, claims *ledger.Ledger) (relevance.Sink, error) {
	if !cfg.Enabled {
		logging.Warn().Msg("notifications disabled (NOTIFY_ENABLED=false); decisions are only logged")
		return notify.LogSink{}, nil
	}
	channel, err := notify.NewEmailChannel(cfg)
	if err != nil {
		return nil, fmt.Errorf("email channel: %w", err)
	}
	sink, err := notify.NewSink(cfg, channel, db, claims)
	if err != nil {
		return nil, fmt.Errorf("notification sink: %w", err)
	}
	logging.Info().
		Str("smtp_host", cfg.SMTPHost).
		Int("smtp_port", cfg.SMTPPort).
		Float64("send_rate", cfg.SendRate).
		Msg("e-mail notifications enabled")
	return sink, nil
}

// ledgerConfig returns the ledger settings.
func ledgerConfig(cfg *config.NotifyConfig) ledger.Config {
	return ledger.Config{
		Path:       cfg.LedgerPath,
		TTL:        cfg.LedgerTTL,
		SyncWrites: true,
	}
}
