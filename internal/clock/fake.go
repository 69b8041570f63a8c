package clock

import (
	"time"
)

// FakeAdapter is a test double returning scripted readings.
type FakeAdapter struct {
	// AdapterName is returned by Name.
	AdapterName string

	// Readings are returned in order by ReadTime; the last one repeats
	// once exhausted.
	Readings []TimePoint

	// ReadError, if set, is returned by every ReadTime call.
	ReadError error

	// Calls counts ReadTime invocations.
	Calls int

	// LastTimeout records the budget passed to the most recent read.
	LastTimeout time.Duration

	index int
}

// NewFakeAdapter creates a FakeAdapter with the given name and readings.
func NewFakeAdapter(name string, readings ...TimePoint) *FakeAdapter {
	return &FakeAdapter{AdapterName: name, Readings: readings}
}

// Name returns the configured adapter name.
func (f *FakeAdapter) Name() string { return f.AdapterName }

// ReadTime returns the next scripted reading or the configured error.
func (f *FakeAdapter) ReadTime(timeout time.Duration) (TimePoint, error) {
	f.Calls++
	f.LastTimeout = timeout
	if f.ReadError != nil {
		return TimePoint{}, f.ReadError
	}
	if len(f.Readings) == 0 {
		return TimePoint{}, ErrUnavailable
	}
	tp := f.Readings[f.index]
	if f.index < len(f.Readings)-1 {
		f.index++
	}
	return tp, nil
}

// Reset rewinds the reading script.
func (f *FakeAdapter) Reset() {
	f.index = 0
	f.Calls = 0
	f.ReadError = nil
}

// FakeWriter records written times for test assertions.
type FakeWriter struct {
	// Written contains every time passed to WriteTime.
	Written []time.Time

	// WriteError, if set, is returned by WriteTime.
	WriteError error
}

// WriteTime records the write or returns the configured error.
func (f *FakeWriter) WriteTime(t time.Time) error {
	if f.WriteError != nil {
		return f.WriteError
	}
	f.Written = append(f.Written, t)
	return nil
}

// FakePower counts wake/sleep cycles for test assertions.
type FakePower struct {
	Wakes  int
	Sleeps int

	// WakeError, if set, is returned by Wake.
	WakeError error
	// SleepError, if set, is returned by Sleep.
	SleepError error
}

// Wake counts the call or returns the configured error.
func (f *FakePower) Wake() error {
	if f.WakeError != nil {
		return f.WakeError
	}
	f.Wakes++
	return nil
}

// Sleep counts the call or returns the configured error.
func (f *FakePower) Sleep() error {
	if f.SleepError != nil {
		return f.SleepError
	}
	f.Sleeps++
	return nil
}
