package clock

import (
	"fmt"
	"time"

	"github.com/beevik/ntp"
)

// DefaultNTPHost is the pool used when the config names none.
const DefaultNTPHost = "pool.ntp.org"

// NTPAdapter queries a network time server. The caller constructs it only
// when the device has WiFi provisioning; without credentials the source
// is permanently unavailable and the resolver never sees it.
type NTPAdapter struct {
	host string
	now  func() time.Time
}

// NewNTPAdapter creates an adapter for the given server host.
func NewNTPAdapter(host string) *NTPAdapter {
	if host == "" {
		host = DefaultNTPHost
	}
	return &NTPAdapter{host: host, now: time.Now}
}

// Name identifies the source in logs.
func (a *NTPAdapter) Name() string { return "ntp" }

// ReadTime performs one bounded query. The result applies the measured
// clock offset to the local clock, which stays correct even when the
// local clock itself is far off.
func (a *NTPAdapter) ReadTime(timeout time.Duration) (TimePoint, error) {
	resp, err := ntp.QueryWithOptions(a.host, ntp.QueryOptions{Timeout: timeout})
	if err != nil {
		return TimePoint{}, fmt.Errorf("query ntp %s: %w", a.host, err)
	}
	if err := resp.Validate(); err != nil {
		return TimePoint{}, fmt.Errorf("ntp response from %s: %w", a.host, err)
	}
	t := a.now().Add(resp.ClockOffset)
	return TimePoint{Epoch: t.Unix(), Source: SourceWiFi, Confidence: ConfidenceAuthoritative}, nil
}
