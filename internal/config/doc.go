// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

/*
Package config provides centralized configuration management for Ekrili.

Configuration is loaded with Koanf v2 from three layers, later layers
overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/ekrili/config.yaml
 3. Environment variables (see envMappings)

# Configuration Structure

  - ServerConfig: admin HTTP API (listen address, timeouts, rate limit, CORS)
  - DatabaseConfig: DuckDB file and tuning
  - NATSConfig: listing-saved event transport and router middleware
  - RelevanceConfig: weights preset, penalty, thresholds, freshness windows
  - NotifyConfig: SMTP relay, link base URL, send rate, circuit breaker, ledger
  - VocabularyConfig: optional seed file for types and the location tree
  - LoggingConfig: zerolog level and format

# Environment Variables

Relevance:
  - RELEVANCE_WEIGHTS: auto, full or reduced (default: auto)
  - RELEVANCE_NOTIFY_THRESHOLD: percent a query must exceed (default: 50)
  - RELEVANCE_REGION_MISMATCH_PENALTY: score multiplier (default: 0.1)
  - RELEVANCE_MAX_SEARCH_AGE: oldest search considered (default: 744h)
  - RELEVANCE_MAX_INACTIVITY: oldest last login considered (default: 1464h)
  - RELEVANCE_TRIGGER_DELAY: wait before scoring a saved listing (default: 0)

Notifications:
  - NOTIFY_ENABLED: send mail (default: false)
  - SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM
  - FRONT_URL: public site root for listing links

# Validation

Validate first checks struct tags with go-playground/validator, then
cross-field rules such as required SMTP settings when notifications are on.
Errors name the environment variable to fix.
*/
package config
