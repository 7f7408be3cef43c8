package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xraph/courier/event"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courierd.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":8080" || cfg.Prefix != "/webhooks" || cfg.MetricsPath != "/metrics" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Relay.MaxRetries != 3 || !cfg.Relay.EnableHistory {
		t.Fatalf("unexpected relay defaults: %+v", cfg.Relay)
	}
}

func TestLoadConfigOverlay(t *testing.T) {
	path := writeConfig(t, `
addr: ":9090"
log_level: debug
relay:
  max_retries: 5
  retry_delay: 250ms
  max_history_entries: 50
redis:
  addr: localhost:6379
subscriptions:
  - url: https://example.com/hook
    events: [dispute.raised, dispute.resolved]
    addresses: ["0xABC"]
    dispute_ids: [42, 18446744073709551616]
    secret: s3cr3t
`)

	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Addr != ":9090" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Relay.MaxRetries != 5 || cfg.Relay.RetryDelay != 250*time.Millisecond || cfg.Relay.MaxHistoryEntries != 50 {
		t.Errorf("relay = %+v", cfg.Relay)
	}
	if cfg.Relay.RequestTimeout != 10*time.Second || !cfg.Relay.EnableHistory {
		t.Errorf("unset relay fields lost their defaults: %+v", cfg.Relay)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.Key != "courier:history" {
		t.Errorf("redis = %+v", cfg.Redis)
	}

	if len(cfg.Subscriptions) != 1 {
		t.Fatalf("expected 1 subscription, got %d", len(cfg.Subscriptions))
	}
	in := cfg.Subscriptions[0].input()
	if len(in.EventTypes) != 2 || in.EventTypes[0] != event.TypeDisputeRaised {
		t.Errorf("event types = %v", in.EventTypes)
	}
	if len(in.DisputeIDs) != 2 || in.DisputeIDs[1] != "18446744073709551616" {
		t.Errorf("dispute ids = %v", in.DisputeIDs)
	}

	lvl, err := cfg.level()
	if err != nil || lvl.String() != "DEBUG" {
		t.Errorf("level = %v, %v", lvl, err)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"bad yaml", "addr: [unterminated"},
		{"bad level", "log_level: loud"},
		{"bad relay", "relay:\n  max_retries: 0"},
		{"unknown event", "subscriptions:\n  - url: https://example.com\n    events: [invoice.paid]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
