// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package middleware provides the admin API's instrumentation middleware.

  - RequestID: honours or assigns X-Request-ID and uses it as the
    correlation ID of every log line the request produces
  - PrometheusMetrics: request counts and latency per chi route pattern

Both are plain func(http.Handler) http.Handler and are mounted with
chi.Router.Use:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
*/
package middleware
