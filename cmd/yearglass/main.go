// Command yearglass drives a battery-powered e-paper panel showing how
// far the year has progressed. It resolves time from the RTC, GNSS and
// NTP in priority order, navigates visualizations on button presses and
// reports its health through the status LED and optional MQTT telemetry.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Zone database for devices without /usr/share/zoneinfo.
	_ "time/tzdata"

	"periph.io/x/host/v3"

	"github.com/okon/yearglass/internal/button"
	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/config"
	"github.com/okon/yearglass/internal/health"
	"github.com/okon/yearglass/internal/led"
	"github.com/okon/yearglass/internal/mode"
	"github.com/okon/yearglass/internal/render"
	"github.com/okon/yearglass/internal/status"
	"github.com/okon/yearglass/internal/telemetry"
)

const defaultConfigPath = "/etc/yearglass.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to the YAML config file")
	broker := flag.String("broker", "", "MQTT broker address (overrides config)")
	device := flag.String("device", "", "Device name for topics and logs (overrides config)")
	bootMode := flag.String("mode", "", "Visualization shown at boot (overrides config)")
	printFrame := flag.Bool("print", false, "Render the current frame to stdout and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}
	if *broker != "" {
		cfg.MQTT.Broker = *broker
	}
	if *device != "" {
		cfg.Device = *device
	}
	if *bootMode != "" {
		cfg.Mode = *bootMode
	}

	if err := run(cfg, *printFrame); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config, printFrame bool) error {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Timezone, err)
	}

	modes, err := mode.NewController(mode.DefaultModes())
	if err != nil {
		return fmt.Errorf("init modes: %w", err)
	}
	if err := modes.Select(mode.Mode(cfg.Mode)); err != nil {
		return fmt.Errorf("boot mode: %w", err)
	}

	// Print mode renders to stdout with no hardware at all.
	if printFrame {
		return printCurrentFrame(cfg, modes.Current(), loc)
	}

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("init periph host: %w", err)
	}

	// The panel and the status LED are required: without them the device
	// can neither show progress nor report faults.
	display, err := render.NewEPaper()
	if err != nil {
		return fmt.Errorf("init e-paper: %w", err)
	}
	defer display.Close()

	leds, err := led.NewRealDriver(cfg.Pins.Chip, cfg.Pins.LED)
	if err != nil {
		return fmt.Errorf("init led: %w", err)
	}
	defer leds.Close()

	buttons, err := button.NewRealSource(cfg.Pins.Chip, cfg.Pins.Key1, cfg.Pins.Key2, cfg.Pins.Key3, cfg.Pins.Debounce())
	if err != nil {
		return fmt.Errorf("init buttons: %w", err)
	}
	defer buttons.Close()

	// Time sources are optional. A probing failure degrades to the
	// OPTIONAL_HW_INIT cadence; the loop runs on whatever remains.
	optionalHWFault := false

	resolverCfg := clock.ResolverConfig{
		AdapterTimeout: cfg.Resolver.AdapterTimeout(),
		SyncInterval:   cfg.Resolver.SyncInterval(),
		SyncRetry:      cfg.Resolver.Retry(),
		Tolerance:      cfg.Resolver.Tolerance(),
	}
	if cfg.Resolver.SetSystemClock {
		resolverCfg.SystemClock = clock.SystemClock{}
	}

	if cfg.RTC.Enabled {
		rtc, err := clock.NewRTC(cfg.RTC.Bus, cfg.RTC.Addr)
		if err != nil {
			log.Printf("rtc unavailable: %v", err)
			optionalHWFault = true
		} else {
			defer rtc.Close()
			resolverCfg.RTC = rtc
			resolverCfg.RTCWriter = rtc
		}
	}

	if cfg.GNSS.Enabled {
		gnss, err := clock.NewGNSS(cfg.GNSS.Port, cfg.GNSS.Baud)
		if err != nil {
			log.Printf("gnss unavailable: %v", err)
			optionalHWFault = true
		} else {
			defer gnss.Close()
			resolverCfg.GNSS = gnss
			if cfg.Pins.GNSSWake >= 0 {
				wake, err := clock.NewWakePin(cfg.Pins.Chip, cfg.Pins.GNSSWake)
				if err != nil {
					log.Printf("gnss wake pin unavailable: %v", err)
					optionalHWFault = true
				} else {
					defer wake.Close()
					resolverCfg.GNSSPower = wake
				}
			}
		}
	}

	if cfg.NTPEnabled() {
		resolverCfg.NTP = clock.NewNTPAdapter(cfg.NTP.Host)
	} else {
		log.Printf("ntp disabled: no wifi credentials configured")
	}

	resolver := clock.NewResolver(resolverCfg)

	// Telemetry is an observer: a dead broker degrades to local-only
	// operation, never to a fault.
	var publisher telemetry.Publisher
	var mqttStatus telemetry.ConnectionStatus
	if cfg.MQTT.Broker != "" {
		pub, err := telemetry.NewRealPublisher(cfg.MQTT.Broker, cfg.Device)
		if err != nil {
			log.Printf("mqtt unavailable: %v", err)
		} else {
			defer pub.Close()
			publisher = pub
			mqttStatus = pub
		}
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		Device:      cfg.Device,
		Broker:      cfg.MQTT.Broker,
		TickMs:      cfg.TickMs,
		HeartbeatMs: cfg.HeartbeatMs,
		WatchdogMs:  cfg.Watchdog.TimeoutMs,
		Timezone:    cfg.Timezone,
	})

	// Publish startup event with full status snapshot
	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := telemetry.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	supervisor := health.NewSupervisor(health.Config{
		Resolver:        resolver,
		Modes:           modes,
		Display:         display,
		Buttons:         buttons,
		LED:             leds,
		Publisher:       publisher,
		MQTTStatus:      mqttStatus,
		Tracker:         tracker,
		Watchdog:        health.NewWatchdog(cfg.Watchdog.Timeout(), time.Now()),
		Location:        loc,
		Heartbeat:       cfg.Heartbeat(),
		OptionalHWFault: optionalHWFault,
	})

	log.Printf("started: device=%s mode=%s tick=%v watchdog=%v broker=%s",
		cfg.Device, modes.Current(), cfg.Tick(), cfg.Watchdog.Timeout(), cfg.MQTT.Broker)

	ticker := time.NewTicker(cfg.Tick())
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return supervisor.Run(ticker.C, sigCh)
}

// printCurrentFrame renders the frame the panel would show right now,
// using the loop clock and the configured headless geometry.
func printCurrentFrame(cfg config.Config, m mode.Mode, loc *time.Location) error {
	now := time.Now()
	tp := clock.TimePoint{Epoch: now.Unix(), Source: clock.SourceNone, Confidence: clock.ConfidenceUnknown}
	p := clock.Progress(tp, loc)

	vis := render.NewVisualizer(cfg.Display.Cols, cfg.Display.Rows)
	grid, err := vis.Render(m, p)
	if err != nil {
		return fmt.Errorf("render frame: %w", err)
	}
	fmt.Printf("%s, day %d of %d\n%s\n", m, p.DaysElapsed+1, p.DaysTotal, grid)
	return nil
}
