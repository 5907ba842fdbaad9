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
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/ekrili/internal/logging"
	"github.com/tomtom215/ekrili/internal/metrics"
)

const publisherBreakerName = "nats-publisher"

// Publisher publishes ListingSaved events behind a circuit breaker.
type Publisher struct {
	publisher message.Publisher
	topic     string
	breaker   *gobreaker.CircuitBreaker[struct{}]
	mu        sync.RWMutex
	closed    bool
}

// NewNATSPublisher connects a JetStream publisher. The stream must exist;
// StreamInitializer creates it.
func NewNATSPublisher(url string, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.Name("ekrili-publisher"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS publisher disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS publisher reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:         url,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			AutoProvision: false,
			TrackMsgId:    true,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// NewPublisher wraps pub. Events go to topic.
func NewPublisher(pub message.Publisher, topic string) (*Publisher, error) {
	if pub == nil {
		return nil, fmt.Errorf("%w: publisher required", ErrInvalidConfig)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic required", ErrInvalidConfig)
	}

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        publisherBreakerName,
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
			logging.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(publisherBreakerName).Set(0)

	return &Publisher{publisher: pub, topic: topic, breaker: breaker}, nil
}

// PublishListingSaved encodes and publishes event. The event id is the
// message UUID, so JetStream drops a republish within the duplicate window.
func (p *Publisher) PublishListingSaved(ctx context.Context, event *ListingSaved) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPublisherClosed
	}

	if event.CorrelationID == "" {
		event.CorrelationID = logging.CorrelationIDFromContext(ctx)
	}
	data, err := Marshal(event)
	if err != nil {
		metrics.EventsPublished.WithLabelValues("invalid").Inc()
		return err
	}

	msg := message.NewMessage(event.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set(natsgo.MsgIdHdr, event.EventID)
	msg.Metadata.Set("listing_id", event.ListingID)
	msg.Metadata.Set("action", string(event.Action))
	if event.CorrelationID != "" {
		msg.Metadata.Set(correlationIDMetadata, event.CorrelationID)
	}

	_, err = p.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, p.publisher.Publish(p.topic, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.EventsPublished.WithLabelValues("rejected").Inc()
		return fmt.Errorf("publish listing %s: %w", event.ListingID, err)
	case err != nil:
		metrics.EventsPublished.WithLabelValues("failed").Inc()
		return fmt.Errorf("publish listing %s: %w", event.ListingID, err)
	}

	metrics.EventsPublished.WithLabelValues("published").Inc()
	logging.Ctx(ctx).Debug().
		Str("event_id", event.EventID).
		Str("listing_id", event.ListingID).
		Str("topic", p.topic).
		Msg("listing event published")
	return nil
}

// BreakerState returns the circuit breaker state.
func (p *Publisher) BreakerState() gobreaker.State {
	return p.breaker.State()
}

// Close closes the underlying publisher once.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
