// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package api implements the admin HTTP API.

The API is for operators. It exposes the probes and Prometheus metrics,
lets an operator see how a search query is read, runs dry decision passes
for a listing, and publishes ListingSaved events by hand when the event
pipeline is enabled.

Every JSON response uses the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Failures set success to false and carry an error object with a code such as
BAD_REQUEST, NOT_FOUND, SERVICE_UNAVAILABLE or VALIDATION_ERROR.
*/
package api
