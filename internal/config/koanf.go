// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ekrili/config.yaml",
	"/etc/ekrili/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:              "0.0.0.0",
			Port:              8090,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      60 * time.Second, // evaluate replays the whole history
			ShutdownTimeout:   30 * time.Second,
			RateLimitReqs:     60,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
		},
		Database: DatabaseConfig{
			Path:           "/data/ekrili.duckdb",
			MaxMemory:      "1GB",
			Threads:        0,
			HealthInterval: 30 * time.Second,
		},
		NATS: NATSConfig{
			Enabled:                    true,
			URL:                        "nats://127.0.0.1:4222",
			EmbeddedServer:             true,
			StoreDir:                   "/data/nats/jetstream",
			MaxMemory:                  256 << 20, // 256MB
			MaxStore:                   1 << 30,   // 1GB
			StreamName:                 "LISTINGS",
			Subject:                    "listings.saved",
			StreamMaxAge:               7 * 24 * time.Hour,
			DuplicateWindow:            2 * time.Minute,
			DurableName:                "relevance-engine",
			QueueGroup:                 "relevance",
			RouterRetryCount:           3,
			RouterRetryInitialInterval: 500 * time.Millisecond,
			RouterPoisonQueueEnabled:   true,
			RouterPoisonQueueTopic:     "listings.poison",
			RouterCloseTimeout:         30 * time.Second,
		},
		Relevance: RelevanceConfig{
			Weights:               "auto",
			RegionMismatchPenalty: 0.1,
			NotifyThreshold:       50,
			MatchThreshold:        0.8,
			MaxSearchAge:          31 * 24 * time.Hour,
			MaxInactivity:         61 * 24 * time.Hour,
			TriggerDelay:          0,
		},
		Notify: NotifyConfig{
			Enabled:            false, // opt-in: decisions are logged until SMTP is configured
			SMTPPort:           587,
			SMTPFromName:       "Ekrili",
			SMTPUseTLS:         true,
			SendRate:           2,
			SendBurst:          5,
			Timeout:            30 * time.Second,
			BreakerMaxFailures: 5,
			BreakerTimeout:     time.Minute,
			LedgerPath:         "/data/ledger",
			LedgerTTL:          90 * 24 * time.Hour,
		},
		Vocabulary: VocabularyConfig{
			SeedFile: "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// Precedence is ENV > File > Defaults.
func LoadWithKoanf() (*Config, error) {
	return load(findConfigFile())
}

// LoadFile loads configuration from an explicit YAML file, still applying
// defaults underneath and environment variables on top.
func LoadFile(path string) (*Config, error) {
	return load(path)
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RELEVANCE_NOTIFY_THRESHOLD -> relevance.notify_threshold
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lower-cased) to koanf paths.
var envMappings = map[string]string{
	// Server mappings
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"rate_limit_requests":   "server.rate_limit_reqs",
	"rate_limit_window":     "server.rate_limit_window",
	"disable_rate_limit":    "server.rate_limit_disabled",
	"cors_origins":          "server.cors_origins",

	// Database mappings
	"duckdb_path":            "database.path",
	"duckdb_max_memory":      "database.max_memory",
	"duckdb_threads":         "database.threads",
	"duckdb_health_interval": "database.health_interval",

	// NATS mappings
	"nats_enabled":               "nats.enabled",
	"nats_url":                   "nats.url",
	"nats_embedded":              "nats.embedded_server",
	"nats_store_dir":             "nats.store_dir",
	"nats_max_memory":            "nats.max_memory",
	"nats_max_store":             "nats.max_store",
	"nats_subject":               "nats.subject",
	"nats_stream_name":           "nats.stream_name",
	"nats_stream_max_age":        "nats.stream_max_age",
	"nats_duplicate_window":      "nats.duplicate_window",
	"nats_durable_name":          "nats.durable_name",
	"nats_queue_group":           "nats.queue_group",
	"nats_router_retry_count":    "nats.router_retry_count",
	"nats_router_retry_interval": "nats.router_retry_initial_interval",
	"nats_router_poison_enabled": "nats.router_poison_queue_enabled",
	"nats_router_poison_topic":   "nats.router_poison_queue_topic",
	"nats_router_close_timeout":  "nats.router_close_timeout",

	// Relevance mappings
	"relevance_weights":                 "relevance.weights",
	"relevance_region_mismatch_penalty": "relevance.region_mismatch_penalty",
	"relevance_notify_threshold":        "relevance.notify_threshold",
	"relevance_match_threshold":         "relevance.match_threshold",
	"relevance_max_search_age":          "relevance.max_search_age",
	"relevance_max_inactivity":          "relevance.max_inactivity",
	"relevance_trigger_delay":           "relevance.trigger_delay",

	// Notification mappings
	"notify_enabled":              "notify.enabled",
	"smtp_host":                   "notify.smtp_host",
	"smtp_port":                   "notify.smtp_port",
	"smtp_username":               "notify.smtp_username",
	"smtp_password":               "notify.smtp_password",
	"smtp_from":                   "notify.smtp_from",
	"smtp_from_name":              "notify.smtp_from_name",
	"smtp_use_tls":                "notify.smtp_use_tls",
	"front_url":                   "notify.front_url",
	"notify_send_rate":            "notify.send_rate",
	"notify_send_burst":           "notify.send_burst",
	"notify_timeout":              "notify.timeout",
	"notify_breaker_max_failures": "notify.breaker_max_failures",
	"notify_breaker_timeout":      "notify.breaker_timeout",
	"notify_ledger_path":          "notify.ledger_path",
	"notify_ledger_ttl":           "notify.ledger_ttl",

	// Vocabulary mappings
	"vocabulary_seed_file": "vocabulary.seed_file",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped, so unrelated environment
// does not leak into the configuration.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - RELEVANCE_NOTIFY_THRESHOLD -> relevance.notify_threshold
//   - SMTP_HOST -> notify.smtp_host
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
