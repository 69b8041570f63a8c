// Package telemetry publishes health events to MQTT when a broker is
// configured. It is strictly an observer: publish failures are logged by
// callers and never become faults.
package telemetry

import (
	"encoding/json"
	"fmt"
	"time"
)

// Topic patterns for health events; the wildcard is the device name.
const (
	FaultTopicPattern  = "yearglass/%s/fault"
	SystemTopicPattern = "yearglass/%s/system"
)

// FaultTopic returns the fault topic for a device.
func FaultTopic(device string) string {
	return fmt.Sprintf(FaultTopicPattern, device)
}

// SystemTopic returns the lifecycle topic for a device.
func SystemTopic(device string) string {
	return fmt.Sprintf(SystemTopicPattern, device)
}

// Publisher publishes health events.
type Publisher interface {
	// PublishFault sends a fault-domain transition. Best effort: a missed
	// transition is superseded by the next heartbeat snapshot.
	PublishFault(event FaultEvent) error

	// PublishSystem sends a lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a lifecycle event (STARTUP, SHUTDOWN, HEARTBEAT).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // signal name, shutdown only
	RawPayload []byte // pre-formatted status snapshot; if set, FormatSystemPayload returns it directly
	Retained   bool
}

// FaultEvent represents a fault-domain transition, including recovery to
// NONE.
type FaultEvent struct {
	Timestamp time.Time
	Domain    string
	Previous  string
	Cadence   string // LED cadence now showing, e.g. "BLINK(1s)"
}

// FaultPayload is the MQTT message structure for fault transitions.
type FaultPayload struct {
	Fault FaultPayloadInner `json:"fault"`
}

// FaultPayloadInner contains the fault transition details.
type FaultPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Domain    string `json:"domain"`
	Previous  string `json:"previous"`
	Cadence   string `json:"cadence,omitempty"`
}

// FormatFaultPayload creates the JSON payload for a fault transition.
func FormatFaultPayload(event FaultEvent) ([]byte, error) {
	payload := FaultPayload{
		Fault: FaultPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Domain:    event.Domain,
			Previous:  event.Previous,
			Cadence:   event.Cadence,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is the MQTT message structure for simple lifecycle
// events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
// If event.RawPayload is set, it is returned directly.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
