//go:build !linux

package button

import (
	"errors"
	"time"
)

// Default BCM pin numbers for the three panel buttons.
const (
	DefaultPinKey1 = 15
	DefaultPinKey2 = 17
	DefaultPinKey3 = 2
)

// DefaultDebounce mirrors the Linux build so flag defaults line up.
const DefaultDebounce = 20 * time.Millisecond

// RealSource is not available on non-Linux platforms.
type RealSource struct{}

// NewRealSource returns an error on non-Linux platforms.
func NewRealSource(chip string, pinKey1, pinKey2, pinKey3 int, debounce time.Duration) (*RealSource, error) {
	return nil, errors.New("button: not supported on this platform (requires Linux)")
}

// Events is not implemented on non-Linux platforms.
func (s *RealSource) Events() <-chan Event {
	return nil
}

// Close is not implemented on non-Linux platforms.
func (s *RealSource) Close() error {
	return nil
}
