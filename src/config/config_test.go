package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sim-trader/src/models"
)

const validYAML = `
name: sim-trader
host: 127.0.0.1
port: 8000
log_level: INFO

storage:
  db_type: sqlite
  db_path: sim-trader.db

market:
  timezone: America/Los_Angeles
  open_time: "06:30"
  close_time: "13:00"
  tick_interval_seconds: 1
  default_start_date: "2020-05-22"
  use_exchange_calendar: false

alpaca:
  api_key: ""
  api_secret: ""
  base_url: https://api.alpaca.markets
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

// -----------------------------------------------------------------------------

func TestNewConfigLoadsYAML(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	if cfg.Name != "sim-trader" {
		t.Errorf("name = %q, want sim-trader", cfg.Name)
	}
	if cfg.Port != 8000 {
		t.Errorf("port = %d, want 8000", cfg.Port)
	}
	if cfg.Storage.DBType != "sqlite" {
		t.Errorf("db_type = %q, want sqlite", cfg.Storage.DBType)
	}
	if cfg.Market.Timezone != "America/Los_Angeles" {
		t.Errorf("timezone = %q", cfg.Market.Timezone)
	}
	if cfg.Market.OpenTime != "06:30" || cfg.Market.CloseTime != "13:00" {
		t.Errorf("session = %q-%q, want 06:30-13:00", cfg.Market.OpenTime, cfg.Market.CloseTime)
	}
	if cfg.Market.UseExchangeCalendar {
		t.Error("use_exchange_calendar should default to false")
	}
}

func TestNewConfigMissingFile(t *testing.T) {
	if _, err := NewConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestNewConfigMalformedYAML(t *testing.T) {
	if _, err := NewConfig(writeConfigFile(t, "name: [unclosed")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidateRejections(t *testing.T) {
	base := func() *Config {
		return &Config{MConfig: &models.MConfig{
			Name: "sim-trader",
			Host: "127.0.0.1",
			Port: 8000,
			Storage: models.MStorageConfig{
				DBType: "sqlite",
				DBPath: "sim-trader.db",
			},
			Market: models.MMarketConfig{
				Timezone:            "America/Los_Angeles",
				OpenTime:            "06:30",
				CloseTime:           "13:00",
				TickIntervalSeconds: 1,
			},
		}}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{"empty name", func(c *Config) { c.Name = "" }, "name"},
		{"empty host", func(c *Config) { c.Host = "" }, "host"},
		{"privileged port", func(c *Config) { c.Port = 80 }, "port"},
		{"port too high", func(c *Config) { c.Port = 70000 }, "port"},
		{"empty db type", func(c *Config) { c.Storage.DBType = "" }, "database type"},
		{"sqlite without path", func(c *Config) { c.Storage.DBPath = "" }, "database path"},
		{"postgres without dsn", func(c *Config) { c.Storage.DBType = "postgres" }, "connection string"},
		{"empty timezone", func(c *Config) { c.Market.Timezone = "" }, "timezone"},
		{"bogus timezone", func(c *Config) { c.Market.Timezone = "Mars/Olympus" }, "timezone"},
		{"zero tick interval", func(c *Config) { c.Market.TickIntervalSeconds = 0 }, "tick interval"},
		{"bad open time", func(c *Config) { c.Market.OpenTime = "630" }, "open time"},
		{"bad close time", func(c *Config) { c.Market.CloseTime = "25:00" }, "close time"},
		{"open after close", func(c *Config) { c.Market.OpenTime = "14:00" }, "before close"},
		{"bad start date", func(c *Config) { c.Market.DefaultStartDate = "22-05-2020" }, "start date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate should have failed")
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q does not mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestTickInterval(t *testing.T) {
	cfg := &Config{MConfig: &models.MConfig{
		Market: models.MMarketConfig{TickIntervalSeconds: 0.5},
	}}
	if got := cfg.TickInterval(); got != 500*time.Millisecond {
		t.Errorf("TickInterval() = %v, want 500ms", got)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cfg, err := NewConfig(writeConfigFile(t, validYAML))
	if err != nil {
		t.Fatalf("NewConfig: %v", err)
	}

	cfg.Market.TickIntervalSeconds = 2
	out := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.Save(out); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := NewConfig(out)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Market.TickIntervalSeconds != 2 {
		t.Errorf("tick_interval_seconds = %v, want 2", reloaded.Market.TickIntervalSeconds)
	}
}
