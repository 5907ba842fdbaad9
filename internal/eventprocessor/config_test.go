// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/ekrili/internal/config"
)

func testNATSConfig() *config.NATSConfig {
	return &config.NATSConfig{
		Enabled:                    true,
		URL:                        "nats://127.0.0.1:4222",
		EmbeddedServer:             true,
		StoreDir:                   "/data/nats/jetstream",
		MaxMemory:                  256 << 20,
		MaxStore:                   1 << 30,
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
	}
}

func TestServerConfigFrom(t *testing.T) {
	t.Parallel()

	got, err := ServerConfigFrom(testNATSConfig())
	if err != nil {
		t.Fatalf("ServerConfigFrom() error = %v", err)
	}
	want := ServerConfig{Host: "127.0.0.1", Port: 4222, StoreDir: "/data/nats/jetstream", MaxMemory: 256 << 20, MaxStore: 1 << 30}
	if got != want {
		t.Errorf("ServerConfigFrom() = %+v, want %+v", got, want)
	}

	for _, url := range []string{"nats://localhost", "nats://127.0.0.1:port", "://bad"} {
		cfg := testNATSConfig()
		cfg.URL = url
		if _, err := ServerConfigFrom(cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("ServerConfigFrom(%q) error = %v, want ErrInvalidConfig", url, err)
		}
	}
}

func TestStreamConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := testNATSConfig()
	got := StreamConfigFrom(cfg)
	if got.Name != "LISTINGS" || got.MaxAge != 7*24*time.Hour || got.DuplicateWindow != 2*time.Minute {
		t.Errorf("StreamConfigFrom() = %+v", got)
	}
	if want := []string{"listings.saved", "listings.poison"}; !reflect.DeepEqual(got.Subjects, want) {
		t.Errorf("Subjects = %v, want %v", got.Subjects, want)
	}

	cfg.RouterPoisonQueueEnabled = false
	if got := StreamConfigFrom(cfg).Subjects; !reflect.DeepEqual(got, []string{"listings.saved"}) {
		t.Errorf("Subjects without poison queue = %v", got)
	}
}

func TestRouterConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := testNATSConfig()
	rc := RouterConfigFrom(cfg)
	if rc.RetryMaxRetries != 3 || rc.RetryInitialInterval != 500*time.Millisecond || rc.PoisonQueueTopic != "listings.poison" {
		t.Errorf("RouterConfigFrom() = %+v", rc)
	}

	cfg.RouterPoisonQueueEnabled = false
	if rc := RouterConfigFrom(cfg); rc.PoisonQueueTopic != "" {
		t.Errorf("PoisonQueueTopic = %q, want empty when disabled", rc.PoisonQueueTopic)
	}
}

func TestRouterConfig_RetryBudget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  RouterConfig
		want time.Duration
	}{
		{"no retries", RouterConfig{RetryInitialInterval: time.Second, RetryMultiplier: 2}, 0},
		{"doubling", RouterConfig{RetryMaxRetries: 3, RetryInitialInterval: time.Second, RetryMultiplier: 2}, 7 * time.Second},
		{"capped", RouterConfig{RetryMaxRetries: 4, RetryInitialInterval: time.Second, RetryMultiplier: 10, RetryMaxInterval: 5 * time.Second}, 16 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.cfg.RetryBudget(); got != tt.want {
				t.Errorf("RetryBudget() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAckWaitFor(t *testing.T) {
	t.Parallel()

	if got := AckWaitFor(0, 0); got != 30*time.Second {
		t.Errorf("AckWaitFor(0, 0) = %v", got)
	}
	if got := AckWaitFor(5*time.Minute, 7*time.Second); got != 5*time.Minute+37*time.Second {
		t.Errorf("AckWaitFor() = %v", got)
	}
}

func TestNewNATSSubscriber_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewNATSSubscriber(&SubscriberConfig{URL: "nats://127.0.0.1:4222"}, NewLogger()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("NewNATSSubscriber() error = %v, want ErrInvalidConfig", err)
	}
}
