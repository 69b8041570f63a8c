package health

import "time"

// DefaultWatchdogTimeout covers a full daily wake cycle with an hour of
// margin. A healthy device feeds the watchdog at least once per loop
// iteration, so expiry means the loop has been stuck for over a day.
const DefaultWatchdogTimeout = 25 * time.Hour

// Resetter forces a platform reboot when the watchdog gives up.
type Resetter interface {
	Reset() error
}

// Watchdog tracks a feed deadline. It is not safe for concurrent use;
// the supervisor owns it.
type Watchdog struct {
	timeout  time.Duration
	deadline time.Time
}

// NewWatchdog creates a watchdog armed from now. A non-positive timeout
// falls back to the default.
func NewWatchdog(timeout time.Duration, now time.Time) *Watchdog {
	if timeout <= 0 {
		timeout = DefaultWatchdogTimeout
	}
	return &Watchdog{timeout: timeout, deadline: now.Add(timeout)}
}

// Feed pushes the deadline a full timeout into the future. Any forward
// progress of the loop counts.
func (w *Watchdog) Feed(now time.Time) {
	w.deadline = now.Add(w.timeout)
}

// Expired reports whether the deadline has passed.
func (w *Watchdog) Expired(now time.Time) bool {
	return !now.Before(w.deadline)
}

// Deadline returns the current deadline, for logs.
func (w *Watchdog) Deadline() time.Time {
	return w.deadline
}
