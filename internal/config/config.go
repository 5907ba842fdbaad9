// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package config

import "time"

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Database   DatabaseConfig   `koanf:"database"`
	NATS       NATSConfig       `koanf:"nats"`
	Relevance  RelevanceConfig  `koanf:"relevance"`
	Notify     NotifyConfig     `koanf:"notify"`
	Vocabulary VocabularyConfig `koanf:"vocabulary"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// ServerConfig holds admin HTTP server settings
type ServerConfig struct {
	Host            string        `koanf:"host" validate:"required"`
	Port            int           `koanf:"port" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `koanf:"read_timeout" validate:"gt=0"`
	WriteTimeout    time.Duration `koanf:"write_timeout" validate:"gt=0"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`

	// RateLimitReqs requests are allowed per RateLimitWindow and client IP.
	RateLimitReqs     int           `koanf:"rate_limit_reqs" validate:"min=0"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`

	CORSOrigins []string `koanf:"cors_origins"`
}

// DatabaseConfig holds DuckDB settings
type DatabaseConfig struct {
	Path      string `koanf:"path" validate:"required"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads" validate:"min=0"` // 0 = use NumCPU

	// HealthInterval is how often the supervisor pings the database.
	HealthInterval time.Duration `koanf:"health_interval" validate:"gt=0"`
}

// NATSConfig holds event transport settings for listing-saved events.
type NATSConfig struct {
	// Enabled controls whether listing events are consumed at all.
	// When false, passes can only be triggered through the admin API.
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	URL string `koanf:"url"`

	// EmbeddedServer starts an in-process NATS server with JetStream.
	// If false, expects an external NATS server at URL.
	EmbeddedServer bool `koanf:"embedded_server"`

	// StoreDir is the JetStream storage directory of the embedded server.
	StoreDir string `koanf:"store_dir"`

	MaxMemory int64 `koanf:"max_memory" validate:"min=0"`
	MaxStore  int64 `koanf:"max_store" validate:"min=0"`

	// StreamName is the JetStream stream holding Subject and the poison topic.
	StreamName string `koanf:"stream_name"`

	// Subject carries ListingSaved events.
	Subject string `koanf:"subject"`

	StreamMaxAge    time.Duration `koanf:"stream_max_age" validate:"min=0"`
	DuplicateWindow time.Duration `koanf:"duplicate_window" validate:"min=0"`

	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	// Router middleware settings
	RouterRetryCount           int           `koanf:"router_retry_count" validate:"min=0"`
	RouterRetryInitialInterval time.Duration `koanf:"router_retry_initial_interval"`
	RouterPoisonQueueEnabled   bool          `koanf:"router_poison_queue_enabled"`
	RouterPoisonQueueTopic     string        `koanf:"router_poison_queue_topic"`
	RouterCloseTimeout         time.Duration `koanf:"router_close_timeout"`
}

// RelevanceConfig holds the scoring and eligibility tunables.
type RelevanceConfig struct {
	// Weights selects the attribute weights: auto, full or reduced.
	Weights string `koanf:"weights" validate:"oneof=auto full reduced"`

	RegionMismatchPenalty float64 `koanf:"region_mismatch_penalty" validate:"gte=0,lte=1"`
	NotifyThreshold       float64 `koanf:"notify_threshold" validate:"gte=0,lte=100"`
	MatchThreshold        float64 `koanf:"match_threshold" validate:"gt=0,lte=1"`

	MaxSearchAge  time.Duration `koanf:"max_search_age" validate:"gt=0"`
	MaxInactivity time.Duration `koanf:"max_inactivity" validate:"gt=0"`

	// TriggerDelay defers processing of a listing event so that follow-up
	// edits to a freshly created listing land before scoring.
	TriggerDelay time.Duration `koanf:"trigger_delay" validate:"min=0"`
}

// NotifyConfig holds outgoing e-mail settings.
type NotifyConfig struct {
	// Enabled sends mail. When false, decisions are only logged.
	Enabled bool `koanf:"enabled"`

	SMTPHost     string `koanf:"smtp_host"`
	SMTPPort     int    `koanf:"smtp_port" validate:"min=0,max=65535"`
	SMTPUsername string `koanf:"smtp_username"`
	SMTPPassword string `koanf:"smtp_password"`
	SMTPFrom     string `koanf:"smtp_from" validate:"omitempty,email"`
	SMTPFromName string `koanf:"smtp_from_name"`
	SMTPUseTLS   bool   `koanf:"smtp_use_tls"`

	// FrontURL is the public site root used to build listing links.
	FrontURL string `koanf:"front_url" validate:"omitempty,url"`

	// SendRate is the sustained number of mails per second; SendBurst the
	// bucket size.
	SendRate  float64 `koanf:"send_rate" validate:"gt=0"`
	SendBurst int     `koanf:"send_burst" validate:"min=1"`

	Timeout time.Duration `koanf:"timeout" validate:"gt=0"`

	// Circuit breaker around the SMTP relay
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures" validate:"min=1"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout" validate:"gt=0"`

	// LedgerPath is the badger directory remembering delivered notifications.
	// Empty keeps the ledger in memory.
	LedgerPath string        `koanf:"ledger_path"`
	LedgerTTL  time.Duration `koanf:"ledger_ttl" validate:"gt=0"`
}

// VocabularyConfig holds reference data settings.
type VocabularyConfig struct {
	// SeedFile is an optional YAML file with types and the location tree,
	// loaded into the database on startup.
	SeedFile string `koanf:"seed_file"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Addr returns the HTTP listen address.
func (s *ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
