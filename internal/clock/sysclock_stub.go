//go:build !linux

package clock

import (
	"errors"
	"time"
)

// SystemClock is not available on non-Linux platforms.
type SystemClock struct{}

// WriteTime is not implemented on non-Linux platforms.
func (SystemClock) WriteTime(t time.Time) error {
	return errors.New("system clock: not supported on this platform (requires Linux)")
}
