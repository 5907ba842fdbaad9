// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
)

// SubscriberConfig holds durable JetStream subscriber settings.
type SubscriberConfig struct {
	URL         string
	StreamName  string
	DurableName string
	QueueGroup  string

	// AckWait must cover the trigger delay plus retries, otherwise
	// JetStream redelivers an event that is still being processed.
	AckWait      time.Duration
	MaxDeliver   int
	CloseTimeout time.Duration
}

// minAckWait is the ack deadline when no trigger delay applies.
const minAckWait = 30 * time.Second

// AckWaitFor returns an ack deadline for a handler that may hold a message
// for triggerDelay and then retry for up to retryBudget.
func AckWaitFor(triggerDelay, retryBudget time.Duration) time.Duration {
	return minAckWait + triggerDelay + retryBudget
}

// NewNATSSubscriber creates a durable queue subscriber bound to the
// existing stream.
func NewNATSSubscriber(cfg *SubscriberConfig, logger watermill.LoggerAdapter) (message.Subscriber, error) {
	if cfg.StreamName == "" || cfg.DurableName == "" {
		return nil, fmt.Errorf("%w: stream and durable name required", ErrInvalidConfig)
	}
	ackWait := cfg.AckWait
	if ackWait <= 0 {
		ackWait = minAckWait
	}
	maxDeliver := cfg.MaxDeliver
	if maxDeliver <= 0 {
		maxDeliver = 5
	}

	natsOpts := []natsgo.Option{
		natsgo.Name("ekrili-consumer"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS subscriber disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS subscriber reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	subOpts := []natsgo.SubOpt{
		natsgo.BindStream(cfg.StreamName),
		natsgo.MaxDeliver(maxDeliver),
		natsgo.AckWait(ackWait),
		natsgo.ManualAck(),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		AckWaitTimeout:   ackWait,
		CloseTimeout:     cfg.CloseTimeout,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision:    false,
			AckAsync:         false,
			SubscribeOptions: subOpts,
			DurablePrefix:    cfg.DurableName,
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill subscriber: %w", err)
	}
	return sub, nil
}
