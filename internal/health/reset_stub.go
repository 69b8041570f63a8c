//go:build !linux

package health

import "errors"

// SystemResetter is not available on non-Linux platforms.
type SystemResetter struct{}

// Reset returns an error on non-Linux platforms.
func (SystemResetter) Reset() error {
	return errors.New("platform reset: not supported on this platform (requires Linux)")
}
