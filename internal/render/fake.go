package render

import (
	"github.com/okon/yearglass/internal/clock"
	"github.com/okon/yearglass/internal/mode"
)

// Frame is one recorded render call.
type Frame struct {
	TimePoint clock.TimePoint
	Mode      mode.Mode
	Progress  clock.YearProgress
	Grid      string
}

// FakeGateway renders through a real Visualizer and records the frames
// for assertions.
type FakeGateway struct {
	vis         *Visualizer
	Frames      []Frame
	RenderError error
	Closed      bool
}

// NewFakeGateway creates a fake gateway with the given grid geometry.
func NewFakeGateway(cols, rows int) *FakeGateway {
	return &FakeGateway{vis: NewVisualizer(cols, rows)}
}

func (f *FakeGateway) Render(tp clock.TimePoint, m mode.Mode, p clock.YearProgress) error {
	if f.RenderError != nil {
		return f.RenderError
	}
	grid, err := f.vis.Render(m, p)
	if err != nil {
		return err
	}
	f.Frames = append(f.Frames, Frame{TimePoint: tp, Mode: m, Progress: p, Grid: grid})
	return nil
}

func (f *FakeGateway) Close() error {
	f.Closed = true
	return nil
}

// Reset clears recorded frames and state.
func (f *FakeGateway) Reset() {
	f.Frames = nil
	f.RenderError = nil
	f.Closed = false
}
