// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/ekrili/internal/api"
	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/database"
	"github.com/tomtom215/ekrili/internal/ledger"
	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/relevance"
	"github.com/tomtom215/ekrili/internal/supervisor"
	"github.com/tomtom215/ekrili/internal/supervisor/services"
)

func main() {
	if err := run(); err != nil {
		logging.Error().Err(err).Msg("ekrili exited with error")
		os.Exit(1)
	}
}

//nolint:gocyclo // sequential startup steps
func run() error {
	// Load configuration first to get logging settings
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logging.Info().
		Str("db_path", cfg.Database.Path).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Bool("notify_enabled", cfg.Notify.Enabled).
		Str("weights", cfg.Relevance.Weights).
		Float64("notify_threshold", cfg.Relevance.NotifyThreshold).
		Msg("starting ekrili with supervisor tree")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Data layer
	db, err := database.New(&cfg.Database)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing database")
		}
	}()
	if err := seedVocabulary(ctx, db, &cfg.Vocabulary); err != nil {
		return err
	}

	claims, err := ledger.Open(ledgerConfig(&cfg.Notify))
	if err != nil {
		return err
	}
	defer func() {
		if err := claims.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing notification ledger")
		}
	}()

	// Relevance engine
	sink, err := initSink(&cfg.Notify, db, claims)
	if err != nil {
		return err
	}
	pipeline, err := relevance.NewPipeline(relevanceConfig(&cfg.Relevance), relevance.Dependencies{
		Vocabularies: db,
		History:      db,
		Listings:     db,
		Sink:         sink,
	}, logging.WithComponent("relevance"))
	if err != nil {
		return err
	}

	// Event pipeline (optional)
	events, err := InitEvents(ctx, cfg, pipeline)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		events.Shutdown(shutdownCtx)
	}()

	// Supervisor tree
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureDecay:     30,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return err
	}

	tree.AddDataService(services.NewDatabaseHealthService(db, cfg.Database.HealthInterval))
	tree.AddDataService(claims)

	var publisher api.EventPublisher
	if events != nil {
		tree.AddMessagingService(events.Consumer)
		publisher = events.Publisher
	}

	handler := api.NewHandler(pipeline, publisher, db)
	httpServer := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, &cfg.Server),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))

	logging.Info().Str("addr", httpServer.Addr).Msg("admin API listening")

	err = tree.Serve(ctx)
	if report, reportErr := tree.UnstoppedServiceReport(); reportErr == nil && len(report) > 0 {
		for _, svc := range report {
			logging.Warn().Str("service", svc.Name).Msg("service did not stop in time")
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logging.Info().Msg("ekrili stopped")
	return nil
}
