package render

import (
	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/mode"
)

// Gateway pushes a rendered frame to the display. Implementations own
// their grid geometry and are expected to leave the panel powered down
// between calls.
type Gateway interface {
	// Render draws the given mode for the resolved time point. It blocks
	// until the panel refresh finishes or fails.
	Render(tp clock.TimePoint, m mode.Mode, p clock.YearProgress) error
	Close() error
}
