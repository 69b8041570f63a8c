// Package config loads the daemon configuration from a YAML file.
// Every field has a default matching the reference device, so a missing
// file still yields a runnable configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the full daemon configuration.
type Config struct {
	// Device names this unit in MQTT topics and logs.
	Device   string `yaml:"device"`
	Timezone string `yaml:"timezone"`
	// Mode is the visualization shown at boot.
	Mode string `yaml:"mode"`

	TickMs      int64 `yaml:"tick_ms"`
	HeartbeatMs int64 `yaml:"heartbeat_ms"`

	Pins     Pins     `yaml:"pins"`
	RTC      RTC      `yaml:"rtc"`
	GNSS     GNSS     `yaml:"gnss"`
	NTP      NTP      `yaml:"ntp"`
	WiFi     WiFi     `yaml:"wifi"`
	MQTT     MQTT     `yaml:"mqtt"`
	Display  Display  `yaml:"display"`
	Resolver Resolver `yaml:"resolver"`
	Watchdog Watchdog `yaml:"watchdog"`
}

// Pins maps panel controls to GPIO line offsets.
type Pins struct {
	Chip string `yaml:"chip"`
	Key1 int    `yaml:"key1"`
	Key2 int    `yaml:"key2"`
	Key3 int    `yaml:"key3"`
	LED  int    `yaml:"led"`
	// GNSSWake is the module's standby line; negative means not wired.
	GNSSWake   int   `yaml:"gnss_wake"`
	DebounceMs int64 `yaml:"debounce_ms"`
}

// RTC locates the PCF8563. An empty bus name picks the first I2C bus the
// host exposes.
type RTC struct {
	Enabled bool   `yaml:"enabled"`
	Bus     string `yaml:"bus"`
	Addr    uint16 `yaml:"addr"`
}

// GNSS locates the serial NMEA module.
type GNSS struct {
	Enabled bool   `yaml:"enabled"`
	Port    string `yaml:"port"`
	Baud    int    `yaml:"baud"`
}

// NTP names the time server queried over WiFi.
type NTP struct {
	Host string `yaml:"host"`
}

// WiFi carries the network credentials. The NTP source is only built
// when an SSID is configured; a device without network credentials never
// attempts a network query.
type WiFi struct {
	SSID     string `yaml:"ssid"`
	Password string `yaml:"password"`
}

// MQTT names the telemetry broker. Empty disables telemetry.
type MQTT struct {
	Broker string `yaml:"broker"`
}

// Display is the character grid for headless rendering. The real panel
// derives its own geometry from the hardware bounds.
type Display struct {
	Cols int `yaml:"cols"`
	Rows int `yaml:"rows"`
}

// Resolver tunes the time resolution engine.
type Resolver struct {
	SyncIntervalMs   int64 `yaml:"sync_interval_ms"`
	RetryMs          int64 `yaml:"retry_ms"`
	ToleranceMs      int64 `yaml:"tolerance_ms"`
	AdapterTimeoutMs int64 `yaml:"adapter_timeout_ms"`
	// SetSystemClock propagates accepted corrections to the kernel
	// clock. Needs CAP_SYS_TIME.
	SetSystemClock bool `yaml:"set_system_clock"`
}

// Watchdog bounds how long the loop may stall before a platform reset.
type Watchdog struct {
	TimeoutMs int64 `yaml:"timeout_ms"`
}

// Default returns the built-in configuration: the reference device's pin
// map, Europe/Warsaw local time and a 25 hour watchdog.
func Default() Config {
	return Config{
		Device:      "yearglass",
		Timezone:    "Europe/Warsaw",
		Mode:        "crossout",
		TickMs:      60000,
		HeartbeatMs: 900000,
		Pins: Pins{
			Chip:       "gpiochip0",
			Key1:       15,
			Key2:       17,
			Key3:       2,
			LED:        25,
			GNSSWake:   -1,
			DebounceMs: 20,
		},
		RTC:     RTC{Enabled: true, Addr: 0x51},
		GNSS:    GNSS{Enabled: true, Port: "/dev/ttyAMA0", Baud: 9600},
		NTP:     NTP{Host: "pool.ntp.org"},
		Display: Display{Cols: 22, Rows: 33},
		Resolver: Resolver{
			SyncIntervalMs:   86400000,
			RetryMs:          300000,
			ToleranceMs:      2000,
			AdapterTimeoutMs: 5000,
		},
		Watchdog: Watchdog{TimeoutMs: 90000000},
	}
}

// Load reads the configuration at path, layered over the defaults.
// A missing file is not an error: the device runs entirely on defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, cfg.Validate()
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate rejects values the daemon cannot run with. Errors name the
// offending field.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("device: must not be empty")
	}
	if c.Timezone == "" {
		return fmt.Errorf("timezone: must not be empty")
	}
	if c.Mode == "" {
		return fmt.Errorf("mode: must not be empty")
	}
	if c.TickMs <= 0 {
		return fmt.Errorf("tick_ms: must be positive, got %d", c.TickMs)
	}
	if c.HeartbeatMs < 0 {
		return fmt.Errorf("heartbeat_ms: must not be negative, got %d", c.HeartbeatMs)
	}
	if err := c.Pins.validate(); err != nil {
		return err
	}
	if c.RTC.Enabled && (c.RTC.Addr < 0x03 || c.RTC.Addr > 0x77) {
		return fmt.Errorf("rtc.addr: 0x%02x outside the 7-bit address range", c.RTC.Addr)
	}
	if c.GNSS.Enabled {
		if c.GNSS.Port == "" {
			return fmt.Errorf("gnss.port: must not be empty when gnss is enabled")
		}
		if c.GNSS.Baud <= 0 {
			return fmt.Errorf("gnss.baud: must be positive, got %d", c.GNSS.Baud)
		}
	}
	if c.Display.Cols <= 0 {
		return fmt.Errorf("display.cols: must be positive, got %d", c.Display.Cols)
	}
	if c.Display.Rows <= 0 {
		return fmt.Errorf("display.rows: must be positive, got %d", c.Display.Rows)
	}
	if c.Resolver.SyncIntervalMs <= 0 {
		return fmt.Errorf("resolver.sync_interval_ms: must be positive, got %d", c.Resolver.SyncIntervalMs)
	}
	if c.Resolver.RetryMs <= 0 {
		return fmt.Errorf("resolver.retry_ms: must be positive, got %d", c.Resolver.RetryMs)
	}
	if c.Resolver.ToleranceMs <= 0 {
		return fmt.Errorf("resolver.tolerance_ms: must be positive, got %d", c.Resolver.ToleranceMs)
	}
	if c.Resolver.AdapterTimeoutMs <= 0 {
		return fmt.Errorf("resolver.adapter_timeout_ms: must be positive, got %d", c.Resolver.AdapterTimeoutMs)
	}
	if c.Watchdog.TimeoutMs <= 0 {
		return fmt.Errorf("watchdog.timeout_ms: must be positive, got %d", c.Watchdog.TimeoutMs)
	}
	return nil
}

func (p Pins) validate() error {
	if p.Chip == "" {
		return fmt.Errorf("pins.chip: must not be empty")
	}
	lines := []struct {
		name string
		pin  int
	}{
		{"pins.key1", p.Key1},
		{"pins.key2", p.Key2},
		{"pins.key3", p.Key3},
		{"pins.led", p.LED},
	}
	seen := make(map[int]string)
	for _, l := range lines {
		if l.pin < 0 {
			return fmt.Errorf("%s: must not be negative, got %d", l.name, l.pin)
		}
		if prev, ok := seen[l.pin]; ok {
			return fmt.Errorf("%s: offset %d already used by %s", l.name, l.pin, prev)
		}
		seen[l.pin] = l.name
	}
	if p.GNSSWake >= 0 {
		if prev, ok := seen[p.GNSSWake]; ok {
			return fmt.Errorf("pins.gnss_wake: offset %d already used by %s", p.GNSSWake, prev)
		}
	}
	if p.DebounceMs < 0 {
		return fmt.Errorf("pins.debounce_ms: must not be negative, got %d", p.DebounceMs)
	}
	return nil
}

// NTPEnabled reports whether the network time source should be built.
func (c Config) NTPEnabled() bool {
	return c.WiFi.SSID != ""
}

// Tick returns the loop interval.
func (c Config) Tick() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}

// Heartbeat returns the telemetry snapshot interval; zero disables it.
func (c Config) Heartbeat() time.Duration {
	return time.Duration(c.HeartbeatMs) * time.Millisecond
}

// Debounce returns the button debounce window.
func (p Pins) Debounce() time.Duration {
	return time.Duration(p.DebounceMs) * time.Millisecond
}

// SyncInterval returns how often external time sources are consulted.
func (r Resolver) SyncInterval() time.Duration {
	return time.Duration(r.SyncIntervalMs) * time.Millisecond
}

// Retry returns the backoff after a failed external sync.
func (r Resolver) Retry() time.Duration {
	return time.Duration(r.RetryMs) * time.Millisecond
}

// Tolerance returns the drift beyond which an external fix corrects the RTC.
func (r Resolver) Tolerance() time.Duration {
	return time.Duration(r.ToleranceMs) * time.Millisecond
}

// AdapterTimeout returns the per-source read budget.
func (r Resolver) AdapterTimeout() time.Duration {
	return time.Duration(r.AdapterTimeoutMs) * time.Millisecond
}

// Timeout returns the watchdog deadline extension granted by each feed.
func (w Watchdog) Timeout() time.Duration {
	return time.Duration(w.TimeoutMs) * time.Millisecond
}
