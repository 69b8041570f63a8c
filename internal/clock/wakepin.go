//go:build linux

package clock

import (
	"fmt"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// gnssWakeSettle gives the module time to restart its RF section after
// the wake line asserts.
const gnssWakeSettle = 500 * time.Millisecond

// WakePin drives the GNSS module's active-low wake line: low = running,
// high = standby. It implements PowerCycler.
type WakePin struct {
	line *gpiocdev.Line
}

// NewWakePin requests the wake line and parks the module in standby.
func NewWakePin(chip string, offset int) (*WakePin, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(1))
	if err != nil {
		return nil, fmt.Errorf("request gnss wake pin %d: %w", offset, err)
	}
	return &WakePin{line: line}, nil
}

// Wake asserts the line and waits for the module to come up.
func (w *WakePin) Wake() error {
	if err := w.line.SetValue(0); err != nil {
		return fmt.Errorf("assert gnss wake pin: %w", err)
	}
	time.Sleep(gnssWakeSettle)
	return nil
}

// Sleep puts the module back in standby.
func (w *WakePin) Sleep() error {
	if err := w.line.SetValue(1); err != nil {
		return fmt.Errorf("release gnss wake pin: %w", err)
	}
	return nil
}

// Close leaves the module in standby and releases the line.
func (w *WakePin) Close() error {
	if err := w.line.SetValue(1); err != nil {
		w.line.Close()
		return fmt.Errorf("park gnss wake pin: %w", err)
	}
	return w.line.Close()
}
