package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}

	if cfg.Device != "yearglass" {
		t.Errorf("device = %q, want yearglass", cfg.Device)
	}
	if cfg.Timezone != "Europe/Warsaw" {
		t.Errorf("timezone = %q, want Europe/Warsaw", cfg.Timezone)
	}
	if cfg.Pins.Key1 != 15 || cfg.Pins.Key2 != 17 || cfg.Pins.Key3 != 2 {
		t.Errorf("key pins = %d/%d/%d, want 15/17/2", cfg.Pins.Key1, cfg.Pins.Key2, cfg.Pins.Key3)
	}
	if cfg.Pins.LED != 25 {
		t.Errorf("led pin = %d, want 25", cfg.Pins.LED)
	}
	if cfg.Display.Cols != 22 || cfg.Display.Rows != 33 {
		t.Errorf("display = %dx%d, want 22x33", cfg.Display.Cols, cfg.Display.Rows)
	}
}

func TestDurationAccessors(t *testing.T) {
	cfg := Default()

	if got := cfg.Tick(); got != time.Minute {
		t.Errorf("tick = %v, want 1m", got)
	}
	if got := cfg.Heartbeat(); got != 15*time.Minute {
		t.Errorf("heartbeat = %v, want 15m", got)
	}
	if got := cfg.Watchdog.Timeout(); got != 25*time.Hour {
		t.Errorf("watchdog timeout = %v, want 25h", got)
	}
	if got := cfg.Pins.Debounce(); got != 20*time.Millisecond {
		t.Errorf("debounce = %v, want 20ms", got)
	}
	if got := cfg.Resolver.SyncInterval(); got != 24*time.Hour {
		t.Errorf("sync interval = %v, want 24h", got)
	}
	if got := cfg.Resolver.Tolerance(); got != 2*time.Second {
		t.Errorf("tolerance = %v, want 2s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file must fall back to defaults, got %v", err)
	}
	if cfg.Device != "yearglass" {
		t.Errorf("device = %q, want default", cfg.Device)
	}
}

func TestLoadOverridesKeepDefaults(t *testing.T) {
	raw := `
device: glass-atelier
mqtt:
  broker: tcp://192.168.1.200:1883
pins:
  key1: 5
rtc:
  enabled: false
wifi:
  ssid: atelier24
  password: hunter2
`
	path := filepath.Join(t.TempDir(), "yearglass.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Device != "glass-atelier" {
		t.Errorf("device = %q, want glass-atelier", cfg.Device)
	}
	if cfg.MQTT.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("broker = %q", cfg.MQTT.Broker)
	}
	if cfg.Pins.Key1 != 5 {
		t.Errorf("key1 = %d, want 5", cfg.Pins.Key1)
	}
	if cfg.RTC.Enabled {
		t.Error("rtc should be disabled")
	}
	if !cfg.NTPEnabled() {
		t.Error("ntp should be enabled once wifi credentials exist")
	}

	// Untouched fields keep their defaults.
	if cfg.Pins.Key2 != 17 {
		t.Errorf("key2 = %d, want default 17", cfg.Pins.Key2)
	}
	if cfg.TickMs != 60000 {
		t.Errorf("tick_ms = %d, want default 60000", cfg.TickMs)
	}
	if cfg.RTC.Addr != 0x51 {
		t.Errorf("rtc.addr = 0x%02x, want default 0x51", cfg.RTC.Addr)
	}
	if cfg.GNSS.Port != "/dev/ttyAMA0" {
		t.Errorf("gnss.port = %q, want default", cfg.GNSS.Port)
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("pins: [not a map"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestNTPEnabled(t *testing.T) {
	cfg := Default()
	if cfg.NTPEnabled() {
		t.Error("ntp enabled without wifi credentials")
	}
	cfg.WiFi.SSID = "atelier24"
	if !cfg.NTPEnabled() {
		t.Error("ntp disabled despite wifi credentials")
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"empty device", func(c *Config) { c.Device = "" }, "device"},
		{"empty timezone", func(c *Config) { c.Timezone = "" }, "timezone"},
		{"empty mode", func(c *Config) { c.Mode = "" }, "mode"},
		{"zero tick", func(c *Config) { c.TickMs = 0 }, "tick_ms"},
		{"negative heartbeat", func(c *Config) { c.HeartbeatMs = -1 }, "heartbeat_ms"},
		{"empty chip", func(c *Config) { c.Pins.Chip = "" }, "pins.chip"},
		{"negative pin", func(c *Config) { c.Pins.Key3 = -2 }, "pins.key3"},
		{"duplicate pin", func(c *Config) { c.Pins.Key2 = 15 }, "pins.key2"},
		{"wake pin collision", func(c *Config) { c.Pins.GNSSWake = 25 }, "pins.gnss_wake"},
		{"rtc address range", func(c *Config) { c.RTC.Addr = 0x80 }, "rtc.addr"},
		{"gnss port empty", func(c *Config) { c.GNSS.Port = "" }, "gnss.port"},
		{"gnss baud zero", func(c *Config) { c.GNSS.Baud = 0 }, "gnss.baud"},
		{"display cols", func(c *Config) { c.Display.Cols = 0 }, "display.cols"},
		{"display rows", func(c *Config) { c.Display.Rows = -1 }, "display.rows"},
		{"sync interval", func(c *Config) { c.Resolver.SyncIntervalMs = 0 }, "resolver.sync_interval_ms"},
		{"tolerance", func(c *Config) { c.Resolver.ToleranceMs = 0 }, "resolver.tolerance_ms"},
		{"adapter timeout", func(c *Config) { c.Resolver.AdapterTimeoutMs = -5 }, "resolver.adapter_timeout_ms"},
		{"watchdog timeout", func(c *Config) { c.Watchdog.TimeoutMs = 0 }, "watchdog.timeout_ms"},
	}

	for _, tt := range tests {
		cfg := Default()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if err == nil {
			t.Errorf("%s: expected error", tt.name)
			continue
		}
		if !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error %q does not name %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestValidateDisabledHardwareSkipsChecks(t *testing.T) {
	cfg := Default()
	cfg.RTC.Enabled = false
	cfg.RTC.Addr = 0
	cfg.GNSS.Enabled = false
	cfg.GNSS.Port = ""
	cfg.GNSS.Baud = 0

	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled hardware should not be validated: %v", err)
	}
}
