// Package status provides a thread-safe status tracker for the daemon.
// The supervisor feeds it every iteration; heartbeat and lifecycle
// telemetry read snapshots from it.
package status

import (
	"sync"
	"time"

	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/mode"
)

// Config contains daemon configuration for display in status payloads.
type Config struct {
	Device      string
	Broker      string
	TickMs      int64
	HeartbeatMs int64
	WatchdogMs  int64
	Timezone    string
}

// Counts tallies notable events since startup.
type Counts struct {
	Renders        int
	ExternalSyncs  int
	MainLoop       int
	DataUpdate     int
	DisplayUpdate  int
	OptionalHWInit int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type, safe to use after the lock is released.
type Snapshot struct {
	Mode          mode.Mode
	TimePoint     clock.TimePoint
	Outcome       clock.Outcome
	Progress      clock.YearProgress
	Fault         string
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the per-iteration state. Called from the supervisor on
// every loop iteration.
func (t *Tracker) Update(m mode.Mode, tp clock.TimePoint, outcome clock.Outcome, p clock.YearProgress, fault string) {
	t.mu.Lock()
	t.snap.Mode = m
	t.snap.TimePoint = tp
	t.snap.Outcome = outcome
	t.snap.Progress = p
	t.snap.Fault = fault
	t.mu.Unlock()
}

// RecordRender counts a completed display refresh.
func (t *Tracker) RecordRender() {
	t.mu.Lock()
	t.snap.Counts.Renders++
	t.mu.Unlock()
}

// RecordExternalSync counts an iteration whose time came from an
// external source (GNSS or NTP fix won).
func (t *Tracker) RecordExternalSync() {
	t.mu.Lock()
	t.snap.Counts.ExternalSyncs++
	t.mu.Unlock()
}

// RecordFault counts a transition into the named fault domain.
// Recovery to NONE is not counted.
func (t *Tracker) RecordFault(domain string) {
	t.mu.Lock()
	switch domain {
	case "MAIN_LOOP":
		t.snap.Counts.MainLoop++
	case "DATA_UPDATE":
		t.snap.Counts.DataUpdate++
	case "DISPLAY_UPDATE":
		t.snap.Counts.DisplayUpdate++
	case "OPTIONAL_HW_INIT":
		t.snap.Counts.OptionalHWInit++
	}
	t.mu.Unlock()
}

// SetMQTTConnected sets the broker connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
