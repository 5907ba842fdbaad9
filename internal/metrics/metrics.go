// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

// Package metrics holds the Prometheus instrumentation of the service.
// Metrics are registered on the default registry at init and exposed by the
// admin API under /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Relevance engine

	ExtractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_relevance_extractions_total",
			Help: "Search queries run through feature extraction, by outcome (empty, partial)",
		},
		[]string{"outcome"},
	)

	QueryScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ekrili_relevance_score",
			Help:    "Best similarity score (percent) of each evaluated query",
			Buckets: []float64{5, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	DecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_relevance_decisions_total",
			Help: "Per-user decisions taken during decision passes, by result (notify, skip)",
		},
		[]string{"result"},
	)

	UserFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ekrili_relevance_user_failures_total",
			Help: "Users skipped in a decision pass because of an isolated failure",
		},
	)

	PassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekrili_relevance_pass_duration_seconds",
			Help:    "Duration of a full decision pass over one listing",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	// Notification delivery

	DeliveriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_notify_deliveries_total",
			Help: "Notification delivery attempts by channel and status (sent, duplicate, failed, rejected)",
		},
		[]string{"channel", "status"},
	)

	DeliveryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekrili_notify_delivery_duration_seconds",
			Help:    "Duration of notification delivery attempts",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"channel"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "ekrili_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	LedgerClaimsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_notify_ledger_claims_total",
			Help: "Notification ledger claims by result (claimed, duplicate)",
		},
		[]string{"result"},
	)

	// Events

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_events_published_total",
			Help: "Listing events published, by status",
		},
		[]string{"status"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_events_consumed_total",
			Help: "Listing events consumed, by outcome (processed, partial, skipped, invalid, failed, retried, poisoned)",
		},
		[]string{"outcome"},
	)

	// Storage

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekrili_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_duckdb_query_errors_total",
			Help: "Total number of failed DuckDB queries",
		},
		[]string{"operation"},
	)

	// HTTP

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ekrili_api_requests_total",
			Help: "Admin API requests by method, route and status",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ekrili_api_request_duration_seconds",
			Help:    "Admin API request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)
)

// RecordExtraction counts one extracted query.
func RecordExtraction(empty bool) {
	outcome := "partial"
	if empty {
		outcome = "empty"
	}
	ExtractionsTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision counts one per-user decision.
func RecordDecision(notify bool) {
	result := "skip"
	if notify {
		result = "notify"
	}
	DecisionsTotal.WithLabelValues(result).Inc()
}

// RecordPass observes a finished decision pass.
func RecordPass(duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	PassDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordDelivery records one delivery attempt.
func RecordDelivery(channel, status string, duration time.Duration) {
	DeliveriesTotal.WithLabelValues(channel, status).Inc()
	DeliveryDuration.WithLabelValues(channel).Observe(duration.Seconds())
}

// RecordLedgerClaim counts one ledger claim attempt.
func RecordLedgerClaim(claimed bool) {
	result := "duplicate"
	if claimed {
		result = "claimed"
	}
	LedgerClaimsTotal.WithLabelValues(result).Inc()
}

// RecordDBQuery records one DuckDB query.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one admin API request.
func RecordAPIRequest(method, route string, status int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
