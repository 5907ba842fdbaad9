// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package main is the entry point of the Ekrili relevance engine.

Ekrili decides which users should hear about a new or updated property
listing. For every ListingSaved event it replays the stored searches of
recently active users against the listing, scores each search with a
weighted bag-of-words cosine similarity, and e-mails every user whose best
search clears the notify threshold. A BadgerDB ledger makes each (user,
listing) pair notify at most once, across redelivered events and restarts.

# Application Architecture

Long-lived components run under a Suture v4 supervisor tree:

	RootSupervisor ("ekrili")
	├── DataSupervisor ("data-layer")
	│   ├── database-health (DuckDB ping loop)
	│   └── notification-ledger-gc (BadgerDB value log GC)
	├── MessagingSupervisor ("messaging-layer")
	│   └── listing-event-consumer (Watermill router on NATS JetStream)
	└── APISupervisor ("api-layer")
	    └── http-server (admin API)

Startup order:

 1. Configuration: Koanf v2 (defaults, optional YAML, environment)
 2. Logging: zerolog, JSON or console
 3. Database: DuckDB, schema and optional vocabulary seed
 4. Notification ledger: BadgerDB
 5. Relevance pipeline with the e-mail sink, or a logging sink when
    notifications are disabled
 6. Event pipeline (optional): embedded NATS server, stream, publisher and
    consumer
 7. Supervisor tree and admin API

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=8090
	LOG_LEVEL=info
	DUCKDB_PATH=/data/ekrili.duckdb
	VOCABULARY_SEED_FILE=/etc/ekrili/vocabulary.yaml

	NATS_ENABLED=true
	NATS_EMBEDDED=true
	RELEVANCE_TRIGGER_DELAY=0s

	NOTIFY_ENABLED=true
	SMTP_HOST=smtp.example.com
	SMTP_FROM=alerts@example.com
	FRONT_URL=https://ekrili.example.com

# Signal Handling

SIGINT and SIGTERM cancel the root context. The tree stops the HTTP server
gracefully and lets the consumer finish its current message, then the event
pipeline, ledger and database are closed in reverse order.
*/
package main
