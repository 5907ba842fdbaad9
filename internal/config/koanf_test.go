// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	// Relevance defaults match the production constants
	if cfg.Relevance.Weights != "auto" {
		t.Errorf("Relevance.Weights = %q, want auto", cfg.Relevance.Weights)
	}
	if cfg.Relevance.NotifyThreshold != 50 {
		t.Errorf("Relevance.NotifyThreshold = %f, want 50", cfg.Relevance.NotifyThreshold)
	}
	if cfg.Relevance.RegionMismatchPenalty != 0.1 {
		t.Errorf("Relevance.RegionMismatchPenalty = %f, want 0.1", cfg.Relevance.RegionMismatchPenalty)
	}
	if cfg.Relevance.MaxSearchAge != 31*24*time.Hour {
		t.Errorf("Relevance.MaxSearchAge = %v, want 31 days", cfg.Relevance.MaxSearchAge)
	}
	if cfg.Relevance.MaxInactivity != 61*24*time.Hour {
		t.Errorf("Relevance.MaxInactivity = %v, want 61 days", cfg.Relevance.MaxInactivity)
	}

	// NATS defaults (embedded)
	if !cfg.NATS.Enabled || !cfg.NATS.EmbeddedServer {
		t.Error("NATS should be enabled with the embedded server by default")
	}
	if cfg.NATS.Subject != "listings.saved" {
		t.Errorf("NATS.Subject = %q, want listings.saved", cfg.NATS.Subject)
	}

	// Notifications are opt-in
	if cfg.Notify.Enabled {
		t.Error("Notify.Enabled should be false by default")
	}

	if cfg.Server.Port != 8090 {
		t.Errorf("Server.Port = %d, want 8090", cfg.Server.Port)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"CORS_ORIGINS", "server.cors_origins"},
		{"DUCKDB_PATH", "database.path"},
		{"NATS_EMBEDDED", "nats.embedded_server"},
		{"NATS_ROUTER_POISON_TOPIC", "nats.router_poison_queue_topic"},
		{"RELEVANCE_NOTIFY_THRESHOLD", "relevance.notify_threshold"},
		{"RELEVANCE_WEIGHTS", "relevance.weights"},
		{"RELEVANCE_TRIGGER_DELAY", "relevance.trigger_delay"},
		{"SMTP_HOST", "notify.smtp_host"},
		{"FRONT_URL", "notify.front_url"},
		{"NOTIFY_LEDGER_TTL", "notify.ledger_ttl"},
		{"VOCABULARY_SEED_FILE", "vocabulary.seed_file"},
		{"LOG_LEVEL", "logging.level"},
		{"log_format", "logging.format"},

		// Unknown (should return empty)
		{"RANDOM_VAR", ""},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if result := envTransformFunc(tt.input); result != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestFindConfigFile verifies config file discovery
func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	t.Chdir(tmpDir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		configPath := filepath.Join(tmpDir, "config.yaml")
		if err := os.WriteFile(configPath, []byte("logging:\n  level: info\n"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(configPath)

		t.Setenv(ConfigPathEnvVar, "")
		if result := findConfigFile(); result != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", result)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		customPath := filepath.Join(tmpDir, "custom.yaml")
		if err := os.WriteFile(customPath, []byte("logging:\n  level: info\n"), 0o600); err != nil {
			t.Fatalf("Failed to create custom config file: %v", err)
		}

		t.Setenv(ConfigPathEnvVar, customPath)
		if result := findConfigFile(); result != customPath {
			t.Errorf("findConfigFile() = %q, want %q", result, customPath)
		}
	})

	t.Run("CONFIG_PATH env var with non-existent file", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if result := findConfigFile(); result != "" {
			t.Errorf("findConfigFile() = %q, want empty string", result)
		}
	})
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	return path
}

// TestLoadFile tests loading configuration from a YAML file
func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
relevance:
  weights: full
  notify_threshold: 65
  max_search_age: 72h
notify:
  enabled: true
  smtp_host: smtp.example.com
  smtp_from: annonces@example.com
  front_url: https://ekrili.example.com
vocabulary:
  seed_file: /etc/ekrili/vocabulary.yaml
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9100 {
		t.Errorf("Server.Port = %d, want 9100", cfg.Server.Port)
	}
	if cfg.Relevance.Weights != "full" {
		t.Errorf("Relevance.Weights = %q, want full", cfg.Relevance.Weights)
	}
	if cfg.Relevance.NotifyThreshold != 65 {
		t.Errorf("Relevance.NotifyThreshold = %f, want 65", cfg.Relevance.NotifyThreshold)
	}
	if cfg.Relevance.MaxSearchAge != 72*time.Hour {
		t.Errorf("Relevance.MaxSearchAge = %v, want 72h", cfg.Relevance.MaxSearchAge)
	}
	if cfg.Vocabulary.SeedFile != "/etc/ekrili/vocabulary.yaml" {
		t.Errorf("Vocabulary.SeedFile = %q", cfg.Vocabulary.SeedFile)
	}

	// Defaults are still applied for unset values
	if cfg.Notify.SMTPPort != 587 {
		t.Errorf("Notify.SMTPPort = %d, want 587 (default)", cfg.Notify.SMTPPort)
	}
	if cfg.Relevance.MaxInactivity != 61*24*time.Hour {
		t.Errorf("Relevance.MaxInactivity = %v, want default", cfg.Relevance.MaxInactivity)
	}
}

// TestLoadEnvOverridesFile tests that env vars override the config file
func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9100
logging:
  level: warn
`)

	t.Setenv("HTTP_PORT", "9999")
	t.Setenv("RELEVANCE_NOTIFY_THRESHOLD", "70.5")
	t.Setenv("RELEVANCE_TRIGGER_DELAY", "45s")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want 9999 (env override)", cfg.Server.Port)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn (from file)", cfg.Logging.Level)
	}
	if cfg.Relevance.NotifyThreshold != 70.5 {
		t.Errorf("Relevance.NotifyThreshold = %f, want 70.5", cfg.Relevance.NotifyThreshold)
	}
	if cfg.Relevance.TriggerDelay != 45*time.Second {
		t.Errorf("Relevance.TriggerDelay = %v, want 45s", cfg.Relevance.TriggerDelay)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example.com" {
		t.Errorf("Server.CORSOrigins = %v, want two trimmed origins", cfg.Server.CORSOrigins)
	}
}

// TestLoadRejectsInvalid verifies validation runs after loading
func TestLoadRejectsInvalid(t *testing.T) {
	path := writeConfig(t, `
relevance:
  weights: heavy
`)

	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile() should reject an unknown weights preset")
	}
}
