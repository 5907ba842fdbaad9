// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/metrics"
)

// RouterConfig holds router and middleware settings.
type RouterConfig struct {
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64

	// PoisonQueueTopic receives events that still fail after all retries.
	// Empty disables the poison queue.
	PoisonQueueTopic string
}

// RouterConfigFrom maps the NATS configuration onto router settings.
func RouterConfigFrom(cfg *config.NATSConfig) RouterConfig {
	rc := RouterConfig{
		CloseTimeout:         cfg.RouterCloseTimeout,
		RetryMaxRetries:      cfg.RouterRetryCount,
		RetryInitialInterval: cfg.RouterRetryInitialInterval,
		RetryMaxInterval:     time.Minute,
		RetryMultiplier:      2.0,
	}
	if cfg.RouterPoisonQueueEnabled {
		rc.PoisonQueueTopic = cfg.RouterPoisonQueueTopic
	}
	return rc
}

// RetryBudget is the longest the retry middleware can back off in total.
func (c *RouterConfig) RetryBudget() time.Duration {
	var total time.Duration
	interval := c.RetryInitialInterval
	for i := 0; i < c.RetryMaxRetries; i++ {
		total += interval
		interval = time.Duration(float64(interval) * c.RetryMultiplier)
		if c.RetryMaxInterval > 0 && interval > c.RetryMaxInterval {
			interval = c.RetryMaxInterval
		}
	}
	return total
}

// NewRouter builds a Watermill router. Middleware runs outermost first:
//
//	PoisonQueue -> Retry -> Recoverer -> handler
//
// so a panic counts as one failed attempt and only exhausted retries reach
// the poison queue.
func NewRouter(cfg *RouterConfig, poisonPublisher message.Publisher, logger watermill.LoggerAdapter) (*message.Router, error) {
	router, err := message.NewRouter(message.RouterConfig{CloseTimeout: cfg.CloseTimeout}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	if poisonPublisher != nil && cfg.PoisonQueueTopic != "" {
		poisonQueue, err := middleware.PoisonQueue(countingPublisher{poisonPublisher}, cfg.PoisonQueueTopic)
		if err != nil {
			return nil, fmt.Errorf("create poison queue middleware: %w", err)
		}
		router.AddMiddleware(poisonQueue)
	}

	retry := middleware.Retry{
		MaxRetries:      cfg.RetryMaxRetries,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
		Multiplier:      cfg.RetryMultiplier,
		OnRetryHook: func(_ int, _ time.Duration) {
			metrics.EventsConsumed.WithLabelValues("retried").Inc()
		},
		Logger: logger,
	}
	router.AddMiddleware(retry.Middleware, middleware.Recoverer)

	return router, nil
}

// countingPublisher counts events handed to the poison queue.
type countingPublisher struct {
	message.Publisher
}

func (p countingPublisher) Publish(topic string, msgs ...*message.Message) error {
	if err := p.Publisher.Publish(topic, msgs...); err != nil {
		return err
	}
	metrics.EventsConsumed.WithLabelValues("poisoned").Add(float64(len(msgs)))
	return nil
}

// NewLogger adapts the process logger for Watermill and NATS callbacks.
func NewLogger() watermill.LoggerAdapter {
	return watermill.NewSlogLogger(logging.NewSlogLogger())
}
