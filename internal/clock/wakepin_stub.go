//go:build !linux

package clock

import "errors"

// WakePin is not available on non-Linux platforms.
type WakePin struct{}

// NewWakePin returns an error on non-Linux platforms.
func NewWakePin(chip string, offset int) (*WakePin, error) {
	return nil, errors.New("gnss wake pin: not supported on this platform (requires Linux)")
}

// Wake is not implemented on non-Linux platforms.
func (w *WakePin) Wake() error {
	return errors.New("gnss wake pin: not supported")
}

// Sleep is not implemented on non-Linux platforms.
func (w *WakePin) Sleep() error {
	return errors.New("gnss wake pin: not supported")
}

// Close is not implemented on non-Linux platforms.
func (w *WakePin) Close() error {
	return nil
}
