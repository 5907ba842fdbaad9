// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/eventprocessor"
	"github.com/tomtom215/ekrili/internal/logging"
)

// EventComponents holds the listing event pipeline for lifecycle management.
type EventComponents struct {
	server    *eventprocessor.EmbeddedServer
	natsConn  *natsgo.Conn
	rawPub    message.Publisher
	Publisher *eventprocessor.Publisher
	Consumer  *eventprocessor.Consumer
}

// InitEvents starts the embedded server (if configured), provisions the
// stream and builds the publisher and consumer. It returns nil when
// NATS_ENABLED=false.
func InitEvents(ctx context.Context, cfg *config.Config, runner eventprocessor.PassRunner) (*EventComponents, error) {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("listing events disabled (NATS_ENABLED=false); passes run only through the admin API")
		return nil, nil
	}

	c := &EventComponents{}
	natsURL := cfg.NATS.URL

	// Step 1: embedded server
	if cfg.NATS.EmbeddedServer {
		serverCfg, err := eventprocessor.ServerConfigFrom(&cfg.NATS)
		if err != nil {
			return nil, err
		}
		srv, err := eventprocessor.NewEmbeddedServer(&serverCfg)
		if err != nil {
			return nil, err
		}
		c.server = srv
		natsURL = srv.ClientURL()
		logging.Info().Str("url", natsURL).Msg("embedded NATS server started")
	} else {
		logging.Info().Str("url", natsURL).Msg("using external NATS server")
	}

	// Step 2: stream
	nc, err := natsgo.Connect(natsURL,
		natsgo.Name("ekrili-admin"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
	)
	if err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	c.natsConn = nc

	js, err := jetstream.New(nc)
	if err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}
	streamCfg := eventprocessor.StreamConfigFrom(&cfg.NATS)
	streams, err := eventprocessor.NewStreamInitializer(js, &streamCfg)
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	if _, err := streams.EnsureStream(ctx); err != nil {
		c.Shutdown(ctx)
		return nil, fmt.Errorf("ensure stream %s: %w", streamCfg.Name, err)
	}

	// Step 3: publisher, shared by the admin API and the poison queue
	wmLogger := eventprocessor.NewLogger()
	rawPub, err := eventprocessor.NewNATSPublisher(natsURL, wmLogger)
	if err != nil {
		c.Shutdown(ctx)
		return nil, err
	}
	c.rawPub = rawPub
	if c.Publisher, err = eventprocessor.NewPublisher(rawPub, cfg.NATS.Subject); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}

	// Step 4: consumer
	routerCfg := eventprocessor.RouterConfigFrom(&cfg.NATS)
	subCfg := subscriberConfig(cfg, natsURL, &routerCfg)
	newSubscriber := func() (message.Subscriber, error) {
		return eventprocessor.NewNATSSubscriber(&subCfg, wmLogger)
	}
	handler := eventprocessor.NewHandler(runner, cfg.Relevance.TriggerDelay)
	if c.Consumer, err = eventprocessor.NewConsumer(cfg.NATS.Subject, &routerCfg, newSubscriber, rawPub, handler, wmLogger); err != nil {
		c.Shutdown(ctx)
		return nil, err
	}

	logging.Info().
		Str("stream", streamCfg.Name).
		Str("subject", cfg.NATS.Subject).
		Str("durable", subCfg.DurableName).
		Dur("ack_wait", subCfg.AckWait).
		Dur("trigger_delay", cfg.Relevance.TriggerDelay).
		Msg("listing event pipeline ready")
	return c, nil
}

// subscriberConfig sizes the ack deadline so that a delayed, retried
// message is not redelivered while it is still being handled.
func subscriberConfig(cfg *config.Config, natsURL string, routerCfg *eventprocessor.RouterConfig) eventprocessor.SubscriberConfig {
	return eventprocessor.SubscriberConfig{
		URL:          natsURL,
		StreamName:   cfg.NATS.StreamName,
		DurableName:  cfg.NATS.DurableName,
		QueueGroup:   cfg.NATS.QueueGroup,
		AckWait:      eventprocessor.AckWaitFor(cfg.Relevance.TriggerDelay, routerCfg.RetryBudget()),
		CloseTimeout: cfg.NATS.RouterCloseTimeout,
	}
}

// Shutdown closes the publisher and connection, then stops the embedded
// server. It is safe on a nil receiver and on partially built components.
func (c *EventComponents) Shutdown(ctx context.Context) {
	if c == nil {
		return
	}
	var errs []error
	if c.Publisher != nil {
		errs = append(errs, c.Publisher.Close())
	} else if c.rawPub != nil {
		errs = append(errs, c.rawPub.Close())
	}
	if c.natsConn != nil {
		c.natsConn.Close()
	}
	if c.server != nil {
		errs = append(errs, c.server.Shutdown(ctx))
	}
	if err := errors.Join(errs...); err != nil {
		logging.Error().Err(err).Msg("error shutting down listing event pipeline")
		return
	}
	logging.Info().Msg("listing event pipeline stopped")
}
