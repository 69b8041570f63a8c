package health

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
	"os"
	"syscall"
	"time"

	"github.com/okon/yearglass/internal/button"
	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/led"
	"github.com/okon/yearglass/internal/mode"
	"github.com/okon/yearglass/internal/render"
	"github.com/okon/yearglass/internal/status"
	"github.com/okon/yearglass/internal/telemetry"
)

// ErrWatchdogReset is returned by Run when the watchdog fired and the
// platform reset was issued but the process is somehow still alive.
var ErrWatchdogReset = errors.New("watchdog reset issued")

// Config wires the supervisor's collaborators. Resolver, Modes and
// Display are required. Buttons, LED, Publisher, MQTTStatus and Tracker
// are optional; the rest defaults when zero.
type Config struct {
	Resolver   *clock.Resolver
	Modes      *mode.Controller
	Display    render.Gateway
	Buttons    button.Source
	LED        led.Driver
	Publisher  telemetry.Publisher
	MQTTStatus telemetry.ConnectionStatus
	Tracker    *status.Tracker
	Watchdog   *Watchdog
	Resetter   Resetter
	Location   *time.Location
	Rand       *rand.Rand
	Now        func() time.Time

	// Heartbeat is the interval between HEARTBEAT snapshots; zero
	// disables them.
	Heartbeat time.Duration

	// OptionalHWFault marks that optional hardware (RTC, GNSS) failed to
	// initialize at startup. The fault is sticky for the session and
	// shows whenever nothing worse is active.
	OptionalHWFault bool
}

// Supervisor owns the device loop. All core state lives here and is
// touched only from the goroutine running Step or Run.
type Supervisor struct {
	resolver   *clock.Resolver
	modes      *mode.Controller
	display    render.Gateway
	buttons    <-chan button.Event
	led        led.Driver
	publisher  telemetry.Publisher
	mqttStatus telemetry.ConnectionStatus
	tracker    *status.Tracker
	watchdog   *Watchdog
	resetter   Resetter
	loc        *time.Location
	rng        *rand.Rand
	now        func() time.Time

	heartbeatEvery time.Duration
	optionalHW     bool

	lastFault     FaultDomain
	lastYear      int
	lastYDay      int
	nextHeartbeat time.Time
}

// NewSupervisor creates a supervisor from the given wiring.
func NewSupervisor(cfg Config) *Supervisor {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.UTC
	}
	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(now().UnixNano()))
	}
	wd := cfg.Watchdog
	if wd == nil {
		wd = NewWatchdog(DefaultWatchdogTimeout, now())
	}
	resetter := cfg.Resetter
	if resetter == nil {
		resetter = SystemResetter{}
	}
	var buttons <-chan button.Event
	if cfg.Buttons != nil {
		buttons = cfg.Buttons.Events()
	}

	return &Supervisor{
		resolver:       cfg.Resolver,
		modes:          cfg.Modes,
		display:        cfg.Display,
		buttons:        buttons,
		led:            cfg.LED,
		publisher:      cfg.Publisher,
		mqttStatus:     cfg.MQTTStatus,
		tracker:        cfg.Tracker,
		watchdog:       wd,
		resetter:       resetter,
		loc:            loc,
		rng:            rng,
		now:            now,
		heartbeatEvery: cfg.Heartbeat,
		optionalHW:     cfg.OptionalHWFault,
	}
}

// Run drives the supervisor until a shutdown signal arrives or the
// watchdog forces a reset. It runs one iteration immediately so the
// panel shows a frame at startup, then iterates on ticks and button
// events.
func (s *Supervisor) Run(tick <-chan time.Time, sig <-chan os.Signal) error {
	s.Step(s.now())

	for {
		select {
		case sg := <-sig:
			log.Printf("received %v, shutting down", sg)
			s.shutdown(sg)
			return nil

		case ev, ok := <-s.buttons:
			if !ok {
				s.buttons = nil
				continue
			}
			now := s.now()
			if s.watchdog.Expired(now) {
				return s.forceReset(now)
			}
			s.applyButton(ev)
			s.Step(now)

		case <-tick:
			now := s.now()
			if s.watchdog.Expired(now) {
				return s.forceReset(now)
			}
			s.Step(now)
		}
	}
}

// Step runs one loop iteration and returns the fault domain it ended
// with. A panic inside the iteration is contained as a MainLoop fault;
// only a MainLoop fault withholds the watchdog feed.
func (s *Supervisor) Step(now time.Time) FaultDomain {
	fault := s.iterate(now)
	if fault != FaultMainLoop {
		s.watchdog.Feed(now)
	}
	s.setLED(Encode(fault, false))
	s.noteFault(fault, now)
	return fault
}

// iterate runs the fixed stage order: buttons, time resolution, render.
// A stage failure aborts only that stage; later stages run with the
// best available state.
func (s *Supervisor) iterate(now time.Time) (fault FaultDomain) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("main loop panic: %v", r)
			fault = FaultMainLoop
		}
	}()

	s.setLED(led.On)
	s.drainButtons()

	tp, outcome := s.resolver.Resolve(now)
	if outcome == clock.OutcomeFailed {
		fault = FaultDataUpdate
	}
	p := clock.Progress(tp, s.loc)

	local := tp.Time().In(s.loc)
	year, yday := local.Year(), local.YearDay()
	dayChanged := year != s.lastYear || yday != s.lastYDay

	if s.modes.Dirty() || dayChanged {
		if err := s.display.Render(tp, s.modes.Current(), p); err != nil {
			log.Printf("display update error: %v", err)
			if FaultDisplayUpdate.Outranks(fault) {
				fault = FaultDisplayUpdate
			}
		} else {
			s.modes.ClearDirty()
			if dayChanged && s.lastYear != 0 {
				log.Printf("day rollover: %s, next redraw in %s",
					local.Format("2006-01-02"), clock.SecondsUntilMidnight(tp, s.loc))
			}
			s.lastYear, s.lastYDay = year, yday
			if s.tracker != nil {
				s.tracker.RecordRender()
			}
		}
	}

	if fault == FaultNone && s.optionalHW {
		fault = FaultOptionalHWInit
	}

	if s.tracker != nil {
		if outcome != clock.OutcomeFailed && (tp.Source == clock.SourceGNSS || tp.Source == clock.SourceWiFi) {
			s.tracker.RecordExternalSync()
		}
		s.tracker.Update(s.modes.Current(), tp, outcome, p, fault.String())
	}

	s.publishHeartbeat(now)
	return fault
}

// applyButton maps a button event to its action. Mode transitions mark
// the frame dirty themselves; the next Step renders.
func (s *Supervisor) applyButton(ev button.Event) {
	switch ev {
	case button.Next:
		s.modes.Next()
	case button.Previous:
		s.modes.Previous()
	case button.Random:
		s.modes.Random(s.rng)
	case button.Refresh:
		s.modes.MarkDirty()
	case button.Sync:
		s.resolver.ForceSync()
		s.modes.MarkDirty()
	default:
		log.Printf("button: ignoring unknown event %q", ev)
		return
	}
	log.Printf("button: %s (mode %s)", ev, s.modes.Current())
}

// drainButtons applies any presses queued since the last iteration.
func (s *Supervisor) drainButtons() {
	if s.buttons == nil {
		return
	}
	for {
		select {
		case ev, ok := <-s.buttons:
			if !ok {
				s.buttons = nil
				return
			}
			s.applyButton(ev)
		default:
			return
		}
	}
}

// noteFault records and publishes a fault-domain transition, including
// recovery to None.
func (s *Supervisor) noteFault(fault FaultDomain, now time.Time) {
	if fault == s.lastFault {
		return
	}
	log.Printf("fault domain: %s -> %s (led %s)", s.lastFault, fault, Encode(fault, false))
	if s.tracker != nil {
		s.tracker.RecordFault(fault.String())
	}
	if s.publisher != nil {
		event := telemetry.FaultEvent{
			Timestamp: now,
			Domain:    fault.String(),
			Previous:  s.lastFault.String(),
			Cadence:   Encode(fault, false).String(),
		}
		if err := s.publisher.PublishFault(event); err != nil {
			log.Printf("fault publish error: %v", err)
		}
	}
	s.lastFault = fault
}

// publishHeartbeat sends a status snapshot at the configured interval.
// The first due time is armed one interval after the first iteration;
// STARTUP already carried a snapshot.
func (s *Supervisor) publishHeartbeat(now time.Time) {
	if s.heartbeatEvery <= 0 || s.publisher == nil || s.tracker == nil {
		return
	}
	if s.nextHeartbeat.IsZero() {
		s.nextHeartbeat = now.Add(s.heartbeatEvery)
		return
	}
	if now.Before(s.nextHeartbeat) {
		return
	}
	s.nextHeartbeat = now.Add(s.heartbeatEvery)

	if s.mqttStatus != nil {
		s.tracker.SetMQTTConnected(s.mqttStatus.IsConnected())
	}
	snap := s.tracker.Snapshot()
	event := telemetry.SystemEvent{
		Timestamp:  now,
		Event:      "HEARTBEAT",
		RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
	}
	if err := s.publisher.PublishSystem(event); err != nil {
		log.Printf("heartbeat publish error: %v", err)
	}
}

// shutdown publishes the SHUTDOWN event and parks the LED.
func (s *Supervisor) shutdown(sg os.Signal) {
	signalName := "UNKNOWN"
	if sg == syscall.SIGINT {
		signalName = "SIGINT"
	} else if sg == syscall.SIGTERM {
		signalName = "SIGTERM"
	}
	if s.publisher != nil {
		event := telemetry.SystemEvent{
			Timestamp: s.now(),
			Event:     "SHUTDOWN",
			Reason:    signalName,
			Retained:  true,
		}
		if s.tracker != nil {
			if s.mqttStatus != nil {
				s.tracker.SetMQTTConnected(s.mqttStatus.IsConnected())
			}
			event.RawPayload = status.FormatStatusEvent(s.tracker.Snapshot(), "SHUTDOWN", signalName)
		}
		if err := s.publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish shutdown event: %v", err)
		} else {
			log.Printf("published shutdown event")
		}
	}
	s.setLED(led.Off)
}

// forceReset fires the platform reset after the watchdog expired. On
// working hardware Reset does not return.
func (s *Supervisor) forceReset(now time.Time) error {
	log.Printf("watchdog expired (deadline %s), forcing platform reset",
		s.watchdog.Deadline().UTC().Format(time.RFC3339))
	if s.publisher != nil {
		event := telemetry.SystemEvent{
			Timestamp: now,
			Event:     "SHUTDOWN",
			Reason:    "WATCHDOG",
			Retained:  true,
		}
		if err := s.publisher.PublishSystem(event); err != nil {
			log.Printf("failed to publish watchdog event: %v", err)
		}
	}
	if err := s.resetter.Reset(); err != nil {
		return fmt.Errorf("platform reset: %w", err)
	}
	return ErrWatchdogReset
}

func (s *Supervisor) setLED(state led.State) {
	if s.led == nil {
		return
	}
	if err := s.led.Set(state); err != nil {
		log.Printf("led set error: %v", err)
	}
}
