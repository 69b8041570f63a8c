//go:build linux

package button

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/warthog618/go-gpiocdev"
)

// Default BCM pin numbers for the three panel buttons.
const (
	DefaultPinKey1 = 15
	DefaultPinKey2 = 17
	DefaultPinKey3 = 2
)

// DefaultDebounce filters contact chatter in the kernel before edges
// reach us.
const DefaultDebounce = 20 * time.Millisecond

// RealSource watches the panel buttons through the Linux GPIO character
// device. Press duration is measured from kernel edge timestamps, so it
// survives scheduling delay in the daemon.
type RealSource struct {
	chip   *gpiocdev.Chip
	lines  []*gpiocdev.Line
	events chan Event

	mu      sync.Mutex
	pressed map[Key]time.Duration
}

// NewRealSource requests the three button lines as pulled-up inputs
// reporting both edges.
func NewRealSource(chip string, pinKey1, pinKey2, pinKey3 int, debounce time.Duration) (*RealSource, error) {
	c, err := gpiocdev.NewChip(chip)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}
	s := &RealSource{
		chip:    c,
		events:  make(chan Event, 8),
		pressed: make(map[Key]time.Duration),
	}
	keys := []struct {
		key Key
		pin int
	}{
		{Key1, pinKey1},
		{Key2, pinKey2},
		{Key3, pinKey3},
	}
	for _, k := range keys {
		key := k.key
		line, err := c.RequestLine(k.pin,
			gpiocdev.AsInput,
			gpiocdev.WithPullUp,
			gpiocdev.WithBothEdges,
			gpiocdev.WithDebounce(debounce),
			gpiocdev.WithEventHandler(func(evt gpiocdev.LineEvent) {
				s.handleEdge(key, evt)
			}),
		)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("request key pin %d: %w", k.pin, err)
		}
		s.lines = append(s.lines, line)
	}
	return s, nil
}

// handleEdge runs on the gpiocdev watcher goroutine. Buttons are active
// low: falling edge is a press, rising edge a release.
func (s *RealSource) handleEdge(k Key, evt gpiocdev.LineEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch evt.Type {
	case gpiocdev.LineEventFallingEdge:
		s.pressed[k] = evt.Timestamp
	case gpiocdev.LineEventRisingEdge:
		start, ok := s.pressed[k]
		if !ok {
			return
		}
		delete(s.pressed, k)
		ev, ok := Classify(k, evt.Timestamp-start)
		if !ok {
			return
		}
		select {
		case s.events <- ev:
		default:
			log.Printf("button: dropping %s, queue full", ev)
		}
	}
}

// Events returns the classified event channel.
func (s *RealSource) Events() <-chan Event {
	return s.events
}

// Close releases the button lines.
func (s *RealSource) Close() error {
	var errs []error
	for _, line := range s.lines {
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close key line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
