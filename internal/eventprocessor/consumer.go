// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const consumerHandlerName = "listing-relevance"

// SubscriberFactory opens a fresh subscriber for each consumer run.
type SubscriberFactory func() (message.Subscriber, error)

// Consumer routes listing events to a Handler. It implements
// suture.Service; a Watermill router runs only once, so every Serve call
// builds its own.
type Consumer struct {
	topic         string
	routerConfig  RouterConfig
	newSubscriber SubscriberFactory
	poison        message.Publisher
	handler       *Handler
	logger        watermill.LoggerAdapter

	mu      sync.Mutex
	running chan struct{}
}

// NewConsumer wires a consumer. poison may be nil when the poison queue is
// disabled.
func NewConsumer(topic string, cfg *RouterConfig, newSubscriber SubscriberFactory, poison message.Publisher, handler *Handler, logger watermill.LoggerAdapter) (*Consumer, error) {
	if topic == "" || newSubscriber == nil || handler == nil {
		return nil, fmt.Errorf("%w: topic, subscriber factory and handler required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Consumer{
		topic:         topic,
		routerConfig:  *cfg,
		newSubscriber: newSubscriber,
		poison:        poison,
		handler:       handler,
		logger:        logger,
		running:       make(chan struct{}),
	}, nil
}

// Serve runs the router until ctx is cancelled.
func (c *Consumer) Serve(ctx context.Context) error {
	sub, err := c.newSubscriber()
	if err != nil {
		return fmt.Errorf("open subscriber: %w", err)
	}
	defer func() {
		if err := sub.Close(); err != nil {
			c.logger.Debug("subscriber close", watermill.LogFields{"error": err.Error()})
		}
	}()

	router, err := NewRouter(&c.routerConfig, c.poison, c.logger)
	if err != nil {
		return err
	}
	router.AddConsumerHandler(consumerHandlerName, c.topic, sub, c.handler.Handle)

	go c.signalRunning(ctx, router)

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("listing event router: %w", err)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return errors.New("listing event router stopped unexpectedly")
}

func (c *Consumer) signalRunning(ctx context.Context, router *message.Router) {
	select {
	case <-router.Running():
		c.mu.Lock()
		select {
		case <-c.running:
		default:
			close(c.running)
		}
		c.mu.Unlock()
	case <-ctx.Done():
	}
}

// Running is closed once the first router is consuming.
func (c *Consumer) Running() <-chan struct{} {
	return c.running
}

// String names the service for the supervisor.
func (c *Consumer) String() string {
	return "listing-event-consumer"
}
