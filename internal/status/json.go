package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Fault         string       `json:"fault"`
	Time          TimeJSON     `json:"time"`
	Progress      ProgressJSON `json:"progress"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Config        ConfigJSON   `json:"config"`
}

// TimeJSON is the JSON representation of the last resolved time point.
type TimeJSON struct {
	Epoch      int64  `json:"epoch"`
	Source     string `json:"source"`
	Confidence string `json:"confidence"`
	Outcome    string `json:"outcome"`
}

// ProgressJSON is the JSON representation of year progress.
type ProgressJSON struct {
	DaysElapsed int     `json:"days_elapsed"`
	DaysTotal   int     `json:"days_total"`
	Fraction    float64 `json:"fraction"`
}

// MQTTStatus reports broker connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of event counts.
type CountsJSON struct {
	Renders        int `json:"renders"`
	ExternalSyncs  int `json:"external_syncs"`
	MainLoop       int `json:"fault_main_loop"`
	DataUpdate     int `json:"fault_data_update"`
	DisplayUpdate  int `json:"fault_display_update"`
	OptionalHWInit int `json:"fault_optional_hw_init"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Device      string `json:"device"`
	Broker      string `json:"broker,omitempty"`
	TickMs      int64  `json:"tick_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	WatchdogMs  int64  `json:"watchdog_ms"`
	Timezone    string `json:"timezone"`
}

func buildInner(snap Snapshot) StatusInner {
	m := string(snap.Mode)
	if m == "" {
		m = "UNKNOWN"
	}
	fault := snap.Fault
	if fault == "" {
		fault = "NONE"
	}
	outcome := string(snap.Outcome)
	if outcome == "" {
		outcome = "FAILED"
	}

	return StatusInner{
		Mode:  m,
		Fault: fault,
		Time: TimeJSON{
			Epoch:      snap.TimePoint.Epoch,
			Source:     string(snap.TimePoint.Source),
			Confidence: string(snap.TimePoint.Confidence),
			Outcome:    outcome,
		},
		Progress: ProgressJSON{
			DaysElapsed: snap.Progress.DaysElapsed,
			DaysTotal:   snap.Progress.DaysTotal,
			Fraction:    snap.Progress.Fraction(),
		},
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Renders:        snap.Counts.Renders,
			ExternalSyncs:  snap.Counts.ExternalSyncs,
			MainLoop:       snap.Counts.MainLoop,
			DataUpdate:     snap.Counts.DataUpdate,
			DisplayUpdate:  snap.Counts.DisplayUpdate,
			OptionalHWInit: snap.Counts.OptionalHWInit,
		},
		Config: ConfigJSON{
			Device:      snap.Config.Device,
			Broker:      snap.Config.Broker,
			TickMs:      snap.Config.TickMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			WatchdogMs:  snap.Config.WatchdogMs,
			Timezone:    snap.Config.Timezone,
		},
	}
}

// FormatStatusEvent returns the JSON status for an MQTT lifecycle event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
