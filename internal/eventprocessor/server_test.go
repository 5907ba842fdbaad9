// Ekrili - Listing Relevance and Notification Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ekrili

package eventprocessor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats-server/v2/server"
	natsgo "github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

func startEmbeddedServer(t *testing.T) *EmbeddedServer {
	t.Helper()
	srv, err := NewEmbeddedServer(&ServerConfig{
		Host:      "127.0.0.1",
		Port:      server.RANDOM_PORT,
		StoreDir:  t.TempDir(),
		MaxMemory: 64 << 20,
		MaxStore:  256 << 20,
	})
	if err != nil {
		t.Fatalf("NewEmbeddedServer() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown() error = %v", err)
		}
	})
	return srv
}

func TestEmbeddedServer_StreamAndDedup(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping embedded NATS test in short mode")
	}

	srv := startEmbeddedServer(t)
	if !srv.IsRunning() || !srv.JetStreamEnabled() {
		t.Fatal("embedded server should run with JetStream")
	}

	nc, err := natsgo.Connect(srv.ClientURL())
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	defer nc.Close()
	js, err := jetstream.New(nc)
	if err != nil {
		t.Fatalf("jetstream.New() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	streamCfg := StreamConfigFrom(testNATSConfig())
	si, err := NewStreamInitializer(js, &streamCfg)
	if err != nil {
		t.Fatalf("NewStreamInitializer() error = %v", err)
	}
	if si.IsHealthy(ctx) {
		t.Error("IsHealthy() = true before the stream exists")
	}
	// Create, then update in place.
	for i := 0; i < 2; i++ {
		if _, err := si.EnsureStream(ctx); err != nil {
			t.Fatalf("EnsureStream() #%d error = %v", i+1, err)
		}
	}
	if !si.IsHealthy(ctx) {
		t.Error("IsHealthy() = false after EnsureStream")
	}

	wmPub, err := NewNATSPublisher(srv.ClientURL(), NewLogger())
	if err != nil {
		t.Fatalf("NewNATSPublisher() error = %v", err)
	}
	pub, err := NewPublisher(wmPub, "listings.saved")
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer pub.Close()

	event := NewListingSaved("L-1", ActionCreated)
	for i := 0; i < 2; i++ {
		if err := pub.PublishListingSaved(ctx, event); err != nil {
			t.Fatalf("PublishListingSaved() #%d error = %v", i+1, err)
		}
	}
	if err := pub.PublishListingSaved(ctx, NewListingSaved("L-2", ActionCreated)); err != nil {
		t.Fatalf("PublishListingSaved() error = %v", err)
	}

	stream, err := js.Stream(ctx, "LISTINGS")
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	info, err := stream.Info(ctx)
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.State.Msgs != 2 {
		t.Errorf("stream holds %d messages, want 2 (republished event deduplicated)", info.State.Msgs)
	}
}

func TestNewStreamInitializer_Validation(t *testing.T) {
	t.Parallel()

	if _, err := NewStreamInitializer(nil, &StreamConfig{Name: "S", Subjects: []string{"a"}}); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("nil JetStream error = %v", err)
	}
}
