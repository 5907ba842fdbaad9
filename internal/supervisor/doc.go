// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package supervisor runs the engine's services under a suture v4 tree.

	ekrili (root)
	├── data-layer
	│   ├── database-health
	│   └── notification-ledger-gc
	├── messaging-layer
	│   └── listing-event-consumer (only when NATS is enabled)
	└── api-layer
	    └── http-server

Each layer restarts its own failing services with exponential backoff.
Supervisor events are logged through sutureslog into the process logger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}
	tree.AddDataService(services.NewDatabaseHealthService(db, cfg.Database.HealthInterval))
	tree.AddMessagingService(consumer)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	return tree.Serve(ctx)
*/
package supervisor
