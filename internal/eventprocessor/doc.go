// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package eventprocessor triggers decision passes from listing-saved events.

The listing service publishes a ListingSaved event whenever a listing is
created or updated. Events travel over NATS JetStream through Watermill:

	listing service -> Publisher -> JetStream (LISTINGS) -> Subscriber
	    -> Router (poison queue, retry, recoverer) -> Handler -> relevance.Pipeline

Delivery is at-least-once. The notification ledger makes redelivered and
retried events harmless: a (user, listing) pair is only ever notified once.

# Components

  - EmbeddedServer: in-process NATS server with JetStream
  - StreamInitializer: creates or updates the LISTINGS stream
  - Publisher: circuit-breaker protected publisher with Nats-Msg-Id dedup
  - NewSubscriber: durable JetStream queue subscriber
  - NewRouter: Watermill router with the middleware stack
  - Handler: decodes events, waits out the trigger delay, runs the pass
  - Consumer: suture service that owns one router per run

# Error handling

The Handler separates failures that may succeed later (database
unavailable, SMTP timeouts, open circuit breaker) from failures that never
will (malformed payload, deleted listing, opted-out recipient). The former
are returned to the router and retried, then sent to the poison queue. The
latter are logged and acknowledged.
*/
package eventprocessor
