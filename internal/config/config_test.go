package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"vantron/internal/collector"
	"vantron/internal/engine"
)

func writeConfig(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vantron.yaml")
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	t.Setenv("COLLECTD_HOSTNAME", "vantron")
	t.Setenv("COLLECTD_INTERVAL", "30")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Fatalf("expected log level info, got %s", cfg.LogLevel)
	}
	if cfg.MQTT.Broker() != "tcp://0.0.0.0:1883" {
		t.Fatalf("expected default broker, got %s", cfg.MQTT.Broker())
	}
	if cfg.MQTT.ClientID != "vantron-collectd-support" {
		t.Fatalf("expected default client id, got %s", cfg.MQTT.ClientID)
	}
	if cfg.MQTT.StatePrefix != "collectd" || cfg.MQTT.DiscoveryPrefix != "homeassistant" {
		t.Fatalf("unexpected prefixes %s %s", cfg.MQTT.StatePrefix, cfg.MQTT.DiscoveryPrefix)
	}
	if cfg.Collectd.Hostname != "vantron" {
		t.Fatalf("expected hostname from COLLECTD_HOSTNAME, got %s", cfg.Collectd.Hostname)
	}
	if cfg.Collectd.Interval != 30*time.Second {
		t.Fatalf("expected interval from COLLECTD_INTERVAL, got %s", cfg.Collectd.Interval)
	}
	if cfg.Collectd.PMICCommand != "vcgencmd" || len(cfg.Collectd.PMICArgs) != 1 {
		t.Fatalf("unexpected pmic command %s %v", cfg.Collectd.PMICCommand, cfg.Collectd.PMICArgs)
	}
	if cfg.LocalDevice {
		t.Fatal("expected local device disabled by default")
	}
	if cfg.Thresholds != engine.DefaultConfig() {
		t.Fatalf("expected default thresholds, got %+v", cfg.Thresholds)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
local_device: true
mqtt:
  host: broker.lan
  port: 8883
  username: ha
  password: secret
  publish_timeout: 2s
collectd:
  hostname: vnet
  interval: 1m
  pmic_command: cat
  pmic_args: ["/tmp/pmic.txt"]
  textfile_path: /var/lib/node_exporter/vantron.prom
  disable_cpu: true
thresholds:
  temperature: {warning: 65, critical: 75}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.MQTT.Broker() != "tcp://broker.lan:8883" {
		t.Fatalf("unexpected broker %s", cfg.MQTT.Broker())
	}
	if cfg.MQTT.PublishTimeout != 2*time.Second {
		t.Fatalf("expected publish timeout 2s, got %s", cfg.MQTT.PublishTimeout)
	}
	if !cfg.LocalDevice {
		t.Fatal("expected local device enabled")
	}

	cc := cfg.Collectd.CollectorConfig()
	if cc.Hostname != "vnet" || cc.Interval != time.Minute {
		t.Fatalf("unexpected collector identity %s %s", cc.Hostname, cc.Interval)
	}
	if cc.PMICCommand != "cat" || len(cc.PMICArgs) != 1 || cc.PMICArgs[0] != "/tmp/pmic.txt" {
		t.Fatalf("unexpected pmic command %s %v", cc.PMICCommand, cc.PMICArgs)
	}
	if cc.EnableCPUMetrics || !cc.EnablePowerMetrics {
		t.Fatalf("unexpected feature flags cpu=%v power=%v", cc.EnableCPUMetrics, cc.EnablePowerMetrics)
	}
	if cc.TextfilePath != "/var/lib/node_exporter/vantron.prom" {
		t.Fatalf("unexpected textfile path %s", cc.TextfilePath)
	}

	if cfg.Thresholds.Temperature.Critical != 75 {
		t.Fatalf("expected temperature override, got %+v", cfg.Thresholds.Temperature)
	}
	if cfg.Thresholds.Power != engine.DefaultConfig().Power {
		t.Fatalf("expected default power thresholds, got %+v", cfg.Thresholds.Power)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "bad log level", data: "log_level: loud\ncollectd: {hostname: x}\n"},
		{name: "port out of range", data: "mqtt: {port: 70000}\ncollectd: {hostname: x}\n"},
		{name: "negative timeout", data: "mqtt: {publish_timeout: -1s}\ncollectd: {hostname: x}\n"},
		{name: "nothing to read", data: "collectd: {hostname: x, disable_cpu: true, disable_power: true}\n"},
		{name: "not yaml", data: "collectd: [\n"},
		{name: "negative history threads", data: "collectd: {hostname: x}\nhistory: {threads: -1}\n"},
		{name: "negative history retention", data: "collectd: {hostname: x}\nhistory: {retention: -1h}\n"},
		{name: "inverted thresholds", data: "collectd: {hostname: x}\nthresholds: {power: {warning: 20, critical: 10}}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestLoadValidationWrapsConfigError(t *testing.T) {
	_, err := Load(writeConfig(t, "collectd: {hostname: x, interval: -5s}\n"))

	var cfgErr *collector.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *collector.ConfigError, got %v", err)
	}
	if cfgErr.Field != "Interval" {
		t.Fatalf("expected Interval field, got %s", cfgErr.Field)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
