// Package mode tracks which visualization the display is showing.
// All state lives in the Controller; randomness is injected so mode
// walks are reproducible in tests.
package mode

import (
	"errors"
	"fmt"
	"math/rand"
)

// Mode names one visualization.
type Mode string

// The built-in visualizations, in carousel order.
const (
	ModeCrossout  Mode = "crossout"
	ModeHourglass Mode = "hourglass"
	ModeLevel     Mode = "level"
	ModeSpiral    Mode = "spiral"
	ModePieChart  Mode = "piechart"
)

// DefaultModes returns the built-in carousel order. The first entry is
// the boot mode.
func DefaultModes() []Mode {
	return []Mode{ModeCrossout, ModeHourglass, ModeLevel, ModeSpiral, ModePieChart}
}

// Controller owns the mode carousel position and the dirty-frame flag.
// There is no terminal state: navigation always succeeds.
type Controller struct {
	modes []Mode
	index int
	dirty bool
}

// NewController creates a controller over a non-empty ordered mode set.
// The frame starts dirty so the first iteration renders.
func NewController(modes []Mode) (*Controller, error) {
	if len(modes) == 0 {
		return nil, errors.New("empty mode set")
	}
	cp := make([]Mode, len(modes))
	copy(cp, modes)
	return &Controller{modes: cp, dirty: true}, nil
}

// Current returns the active mode.
func (c *Controller) Current() Mode {
	return c.modes[c.index]
}

// Next advances the carousel, wrapping past the end.
func (c *Controller) Next() Mode {
	c.index = (c.index + 1) % len(c.modes)
	c.dirty = true
	return c.modes[c.index]
}

// Previous steps the carousel back, wrapping before the start.
func (c *Controller) Previous() Mode {
	c.index = (c.index - 1 + len(c.modes)) % len(c.modes)
	c.dirty = true
	return c.modes[c.index]
}

// Random jumps to a uniformly chosen mode other than the current one.
// With a single mode it stays put; the frame is marked dirty either way.
func (c *Controller) Random(rng *rand.Rand) Mode {
	if len(c.modes) > 1 {
		n := rng.Intn(len(c.modes) - 1)
		if n >= c.index {
			n++
		}
		c.index = n
	}
	c.dirty = true
	return c.modes[c.index]
}

// Select jumps to the named mode. Used to restore the configured mode at
// startup.
func (c *Controller) Select(m Mode) error {
	for i, name := range c.modes {
		if name == m {
			c.index = i
			c.dirty = true
			return nil
		}
	}
	return fmt.Errorf("unknown mode %q", m)
}

// Dirty reports whether the frame needs a redraw.
func (c *Controller) Dirty() bool {
	return c.dirty
}

// MarkDirty forces a redraw on the next iteration: button refresh, day
// rollover, or a failed render that must be retried.
func (c *Controller) MarkDirty() {
	c.dirty = true
}

// ClearDirty acknowledges a successful render.
func (c *Controller) ClearDirty() {
	c.dirty = false
}
