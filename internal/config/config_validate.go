// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package config

import (
	"fmt"
	"strings"

	"github.com/tomtom215/ekrili/internal/validation"
)

// Validate checks that required configuration is present and valid.
// Field ranges are checked from struct tags first, then cross-field rules.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	validators := []func() error{
		c.validateServer,
		c.validateNATS,
		c.validateNotify,
		c.validateLogging,
	}
	for _, validator := range validators {
		if err := validator(); err != nil {
			return err
		}
	}
	return nil
}

// validateServer validates rate limiting of the admin API
func (c *Config) validateServer() error {
	if c.Server.RateLimitDisabled {
		return nil
	}
	if c.Server.RateLimitReqs <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive unless DISABLE_RATE_LIMIT=true")
	}
	if c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	return nil
}

// validateNATS validates event transport configuration (only if enabled)
func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}

	if c.NATS.Subject == "" {
		return fmt.Errorf("NATS_SUBJECT is required when NATS_ENABLED=true")
	}
	if c.NATS.StreamName == "" {
		return fmt.Errorf("NATS_STREAM_NAME is required when NATS_ENABLED=true")
	}
	if c.NATS.DurableName == "" {
		return fmt.Errorf("NATS_DURABLE_NAME is required when NATS_ENABLED=true")
	}
	if c.NATS.RouterPoisonQueueEnabled && c.NATS.RouterPoisonQueueTopic == "" {
		return fmt.Errorf("NATS_ROUTER_POISON_TOPIC is required when the poison queue is enabled")
	}
	if c.NATS.RouterPoisonQueueTopic == c.NATS.Subject {
		return fmt.Errorf("NATS_ROUTER_POISON_TOPIC must differ from NATS_SUBJECT")
	}

	if c.NATS.EmbeddedServer {
		if c.NATS.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required when NATS_EMBEDDED=true")
		}
		return nil
	}

	if c.NATS.URL == "" {
		return fmt.Errorf("NATS_URL is required when NATS_EMBEDDED=false")
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL is invalid: %w", err)
	}
	return nil
}

// validateNotify validates SMTP delivery configuration (only if enabled)
func (c *Config) validateNotify() error {
	if !c.Notify.Enabled {
		return nil
	}

	if c.Notify.SMTPHost == "" {
		return fmt.Errorf("SMTP_HOST is required when NOTIFY_ENABLED=true")
	}
	if c.Notify.SMTPPort == 0 {
		return fmt.Errorf("SMTP_PORT is required when NOTIFY_ENABLED=true")
	}
	if c.Notify.SMTPFrom == "" {
		return fmt.Errorf("SMTP_FROM is required when NOTIFY_ENABLED=true")
	}
	if (c.Notify.SMTPUsername == "") != (c.Notify.SMTPPassword == "") {
		return fmt.Errorf("SMTP_USERNAME and SMTP_PASSWORD must be set together")
	}
	if c.Notify.FrontURL == "" {
		return fmt.Errorf("FRONT_URL is required when NOTIFY_ENABLED=true")
	}
	return validateFrontURL(c.Notify.FrontURL)
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true,
		"error": true, "fatal": true, "panic": true, "disabled": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic, disabled")
	}

	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
}
