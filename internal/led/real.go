//go:build linux

package led

import (
	"fmt"
	"log"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// RealDriver drives an LED on a GPIO output line using the Linux GPIO
// character device. Blinking runs on an internal goroutine; Set only
// swaps the cadence. Set and Close must be called from a single
// goroutine.
type RealDriver struct {
	line  *gpiocdev.Line
	state State
	stop  chan struct{}
	done  chan struct{}
}

// NewRealDriver requests the LED line and leaves it off.
func NewRealDriver(chip string, pin int) (*RealDriver, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request led pin %d: %w", pin, err)
	}
	return &RealDriver{line: line}, nil
}

// Set applies the requested state. Unchanged states are a no-op.
func (d *RealDriver) Set(s State) error {
	if s == d.state {
		return nil
	}
	d.stopBlink()
	d.state = s
	if s.Interval > 0 {
		d.startBlink(s.Interval)
		return nil
	}
	if err := d.line.SetValue(level(s.On)); err != nil {
		return fmt.Errorf("set led: %w", err)
	}
	return nil
}

// Close stops blinking and leaves the LED off.
func (d *RealDriver) Close() error {
	d.stopBlink()
	if err := d.line.SetValue(0); err != nil {
		log.Printf("led off: %v", err)
	}
	return d.line.Close()
}

func (d *RealDriver) startBlink(interval time.Duration) {
	stop := make(chan struct{})
	done := make(chan struct{})
	d.stop, d.done = stop, done
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		on := true
		if err := d.line.SetValue(1); err != nil {
			log.Printf("led blink: %v", err)
		}
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				on = !on
				if err := d.line.SetValue(level(on)); err != nil {
					log.Printf("led blink: %v", err)
				}
			}
		}
	}()
}

func (d *RealDriver) stopBlink() {
	if d.stop == nil {
		return
	}
	close(d.stop)
	<-d.done
	d.stop, d.done = nil, nil
}

func level(on bool) int {
	if on {
		return 1
	}
	return 0
}
