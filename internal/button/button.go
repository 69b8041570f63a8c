// Package button turns panel button presses into semantic events.
package button

import "time"

// Event is a classified button action.
type Event string

const (
	Next     Event = "NEXT"
	Previous Event = "PREVIOUS"
	Random   Event = "RANDOM"
	Refresh  Event = "REFRESH"
	Sync     Event = "SYNC"
)

// Key identifies one of the three panel buttons.
type Key int

const (
	Key1 Key = iota + 1
	Key2
	Key3
)

// LongPress is the hold duration at which a press stops being short.
const LongPress = 600 * time.Millisecond

// Classify maps a finished press to its event. Key3 has no separate
// long action, so any hold still navigates backwards.
func Classify(k Key, held time.Duration) (Event, bool) {
	long := held >= LongPress
	switch k {
	case Key1:
		if long {
			return Refresh, true
		}
		return Next, true
	case Key2:
		if long {
			return Sync, true
		}
		return Random, true
	case Key3:
		return Previous, true
	}
	return "", false
}

// Source delivers button events. The channel is buffered; presses that
// arrive while the buffer is full are dropped.
type Source interface {
	Events() <-chan Event
	Close() error
}
