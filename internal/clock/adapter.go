package clock

import (
	"errors"
	"time"
)

// ErrUnavailable marks a source that is present but produced no usable
// reading (no GNSS fix, NTP timeout). Adapters wrap it so the resolver
// can tell "no data" from an I/O fault in logs; both are treated as
// unavailable for resolution.
var ErrUnavailable = errors.New("no usable reading")

// Adapter reads time from one hardware source.
type Adapter interface {
	// Name identifies the source in logs ("rtc", "gnss", "ntp").
	Name() string

	// ReadTime returns a reading, blocking at most timeout.
	// Errors are values; a hung or absent peripheral must not stall
	// the caller past the budget.
	ReadTime(timeout time.Duration) (TimePoint, error)
}

// Writer persists a resolved time into a source (RTC write-back, system
// clock propagation).
type Writer interface {
	WriteTime(t time.Time) error
}

// PowerCycler controls a source that must be woken before a query burst
// and put back to sleep after (the GNSS module).
type PowerCycler interface {
	Wake() error
	Sleep() error
}
