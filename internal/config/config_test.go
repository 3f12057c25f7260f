package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleConfig = `
server:
  name: "vpn-test"
  location: "eu-west-1"

monitor:
  status_path: "/var/log/openvpn/status.log"
  log_path: "/var/log/openvpn/openvpn.log"
  poll_interval: "30s"

clickhouse:
  enabled: true
  host: "localhost"
  port: 9000
  database: "tunnelspectra"

alerter:
  enabled: true
  check_interval: "5m"
  rules:
    - metric: "cpu_percent"
      threshold: 90
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Name != "vpn-test" || cfg.Server.Location != "eu-west-1" {
		t.Errorf("Unexpected server identity: %+v", cfg.Server)
	}
	if cfg.Monitor.StatusPath != "/var/log/openvpn/status.log" {
		t.Errorf("Unexpected status path: %q", cfg.Monitor.StatusPath)
	}
	if !cfg.ClickHouse.Enabled || cfg.ClickHouse.Port != 9000 {
		t.Errorf("Unexpected clickhouse config: %+v", cfg.ClickHouse)
	}
	if len(cfg.Alerter.Rules) != 1 || cfg.Alerter.Rules[0].Threshold != 90 {
		t.Errorf("Unexpected alerter rules: %+v", cfg.Alerter.Rules)
	}

	interval, err := cfg.Monitor.PollIntervalDuration()
	if err != nil {
		t.Fatalf("PollIntervalDuration failed: %v", err)
	}
	if interval != 30*time.Second {
		t.Errorf("Expected 30s poll interval, got %s", interval)
	}
}

func TestLoadConfigRequiresStatusPath(t *testing.T) {
	if _, err := LoadConfig(writeConfig(t, "server:\n  name: x\n")); err == nil {
		t.Fatalf("Expected an error for a config without monitor.status_path")
	}
}

func TestPollIntervalDefaults(t *testing.T) {
	m := MonitorConfig{}
	interval, err := m.PollIntervalDuration()
	if err != nil {
		t.Fatalf("PollIntervalDuration failed: %v", err)
	}
	if interval != time.Minute {
		t.Errorf("Expected default of one minute, got %s", interval)
	}
}

func TestPollIntervalRejectsNegative(t *testing.T) {
	m := MonitorConfig{PollInterval: "-10s"}
	if _, err := m.PollIntervalDuration(); err == nil {
		t.Fatalf("Expected an error for a negative interval")
	}
}
