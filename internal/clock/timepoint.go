// Package clock resolves wall-clock time from the device's optional time
// sources (battery-backed RTC, GNSS module, WiFi NTP) and tracks year
// progress. The Resolver owns source priority, drift correction and RTC
// write-back; hardware access goes through the Adapter interface so the
// logic runs against fakes in tests.
package clock

import "time"

// Source identifies which hardware produced a time reading.
type Source string

const (
	SourceRTC  Source = "RTC"
	SourceGNSS Source = "GNSS"
	SourceWiFi Source = "WIFI"
	SourceNone Source = "NONE"
)

// Confidence grades how much a reading can be trusted.
type Confidence string

const (
	// ConfidenceAuthoritative is a fresh external fix or an RTC reading
	// whose integrity flag is clear and whose year is credible.
	ConfidenceAuthoritative Confidence = "AUTHORITATIVE"
	// ConfidenceStale is an RTC reading that survived but is suspect
	// (integrity flag set, or a year before the firmware build horizon).
	ConfidenceStale Confidence = "STALE"
	// ConfidenceUnknown means no source produced a usable reading.
	ConfidenceUnknown Confidence = "UNKNOWN"
)

// TimePoint is one resolved time reading.
type TimePoint struct {
	// Epoch is Unix seconds, always UTC.
	Epoch      int64
	Source     Source
	Confidence Confidence
}

// Time returns the reading as a time.Time in UTC.
func (tp TimePoint) Time() time.Time {
	return time.Unix(tp.Epoch, 0).UTC()
}

// Outcome classifies a whole resolution pass.
type Outcome string

const (
	// OutcomeOK means an Authoritative reading won and any write-back succeeded.
	OutcomeOK Outcome = "OK"
	// OutcomeDegraded means the best reading was Stale, or write-back failed.
	OutcomeDegraded Outcome = "DEGRADED"
	// OutcomeFailed means no source produced a usable reading.
	OutcomeFailed Outcome = "FAILED"
)
