package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("MEDSUPPLY_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yaml"))
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Priority.SweepConcurrency != 1 || cfg.Priority.RequestAggregation != "touched" || cfg.Priority.TriggerMode != "job" {
		t.Fatalf("priority defaults: %+v", cfg.Priority)
	}
	if cfg.Alerts.ExpiringWithinDays != 30 {
		t.Fatalf("expiring default: %d", cfg.Alerts.ExpiringWithinDays)
	}
	if cfg.Location() != time.UTC {
		t.Fatalf("location: %v", cfg.Location())
	}
}

func TestLoadConfigLayers(t *testing.T) {
	path := writeConfig(t, `
log_mode: production
http:
  addr: ":9000"
  cors_origins: ["https://supply.example.org"]
priority:
  timezone: Asia/Shanghai
  sweep_concurrency: 4
  request_aggregation: all
  sweep_interval: 15m
alerts:
  expiring_within_days: 45
`)
	t.Setenv("MEDSUPPLY_CONFIG_PATH", path)
	t.Setenv("PRIORITY_SWEEP_CONCURRENCY", "2")
	t.Setenv("NATS_URL", "nats://localhost:4222")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.LogMode != "production" || cfg.HTTP.Addr != ":9000" || len(cfg.HTTP.CORSOrigins) != 1 {
		t.Fatalf("yaml values not applied: %+v", cfg.HTTP)
	}
	if cfg.Priority.SweepConcurrency != 2 {
		t.Fatalf("env should win over yaml, got %d", cfg.Priority.SweepConcurrency)
	}
	if cfg.Priority.RequestAggregation != "all" || cfg.Alerts.ExpiringWithinDays != 45 {
		t.Fatalf("yaml priority/alerts: %+v %+v", cfg.Priority, cfg.Alerts)
	}
	if cfg.Temporal.SweepInterval != 15*time.Minute {
		t.Fatalf("temporal sweep interval should inherit priority.sweep_interval, got %s", cfg.Temporal.SweepInterval)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("nats url: %q", cfg.NATS.URL)
	}
	if cfg.Location().String() != "Asia/Shanghai" {
		t.Fatalf("location: %v", cfg.Location())
	}
}

func TestConfigValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "timezone", mutate: func(c *Config) { c.Priority.Timezone = "Mars/Olympus" }, want: "priority.timezone"},
		{name: "aggregation", mutate: func(c *Config) { c.Priority.RequestAggregation = "sum" }, want: "priority.request_aggregation"},
		{name: "trigger_mode", mutate: func(c *Config) { c.Priority.TriggerMode = "cron" }, want: "priority.trigger_mode"},
		{name: "concurrency", mutate: func(c *Config) { c.Priority.SweepConcurrency = 0 }, want: "priority.sweep_concurrency"},
		{name: "expiring", mutate: func(c *Config) { c.Alerts.ExpiringWithinDays = 0 }, want: "alerts.expiring_within_days"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate() = %v, want mention of %q", err, tc.want)
			}
		})
	}
	if err := defaultConfig().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoadConfigRejectsBadYAML(t *testing.T) {
	t.Setenv("MEDSUPPLY_CONFIG_PATH", writeConfig(t, "priority: [unterminated"))
	if _, err := LoadConfig(); err == nil {
		t.Fatalf("expected parse error")
	}
}
