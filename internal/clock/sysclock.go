//go:build linux

package clock

import (
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// SystemClock propagates accepted corrections to the kernel clock so logs
// and TLS follow the resolved time. Needs CAP_SYS_TIME; wire it only when
// the config asks for it.
type SystemClock struct{}

// WriteTime sets CLOCK_REALTIME.
func (SystemClock) WriteTime(t time.Time) error {
	ts := unix.NsecToTimespec(t.UnixNano())
	if err := unix.ClockSettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return fmt.Errorf("set system clock: %w", err)
	}
	return nil
}
