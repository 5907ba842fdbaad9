// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/ekrili/internal/config"
	"github.com/tomtom215/ekrili/internal/middleware"
)

// NewRouter mounts the admin API.
//
//	GET  /healthz
//	GET  /readyz
//	GET  /metrics
//	POST /api/v1/extract
//	POST /api/v1/listings/{id}/evaluate
//	POST /api/v1/listings/{id}/events
//
// Probes and metrics bypass rate limiting and CORS.
func NewRouter(h *Handler, cfg *config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)

	r.Get("/healthz", h.Healthz)
	r.Get("/readyz", h.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(corsHandler(cfg.CORSOrigins))
		r.Use(rateLimit(cfg))
		r.Use(chimiddleware.AllowContentType("application/json"))

		r.Post("/extract", h.Extract)
		r.Route("/listings/{id}", func(r chi.Router) {
			r.Post("/evaluate", h.Evaluate)
			r.Post("/events", h.PublishEvent)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		newResponseWriter(w, r).fail(http.StatusNotFound, ErrCodeNotFound, "no such endpoint")
	})
	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"http://localhost:*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	})
}

func rateLimit(cfg *config.ServerConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitDisabled || cfg.RateLimitReqs <= 0 || cfg.RateLimitWindow <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			newResponseWriter(w, r).fail(http.StatusTooManyRequests, ErrCodeTooManyRequests, "rate limit exceeded")
		}),
	)
}
