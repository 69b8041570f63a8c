// Package led drives the status LED, the device's only always-available
// health indicator.
package led

import (
	"fmt"
	"time"
)

// State describes what the LED should do. Interval is the blink
// half-period; zero means the LED holds steady on or off.
type State struct {
	On       bool
	Interval time.Duration
}

var (
	Off = State{}
	On  = State{On: true}
)

// Blink returns a state toggling the LED every interval.
func Blink(interval time.Duration) State {
	return State{Interval: interval}
}

func (s State) String() string {
	if s.Interval > 0 {
		return fmt.Sprintf("BLINK(%s)", s.Interval)
	}
	if s.On {
		return "ON"
	}
	return "OFF"
}

// Driver sets the physical LED. Set must be cheap for an unchanged
// state; callers may apply the same state every loop iteration.
type Driver interface {
	Set(State) error
	Close() error
}
