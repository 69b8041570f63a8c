package led

// FakeDriver records cadence changes for assertions. Repeated Set calls
// with an unchanged state are collapsed, so History reads as the list of
// transitions.
type FakeDriver struct {
	History  []State
	SetError error
	Closed   bool
}

func (f *FakeDriver) Set(s State) error {
	if f.SetError != nil {
		return f.SetError
	}
	if n := len(f.History); n > 0 && f.History[n-1] == s {
		return nil
	}
	f.History = append(f.History, s)
	return nil
}

func (f *FakeDriver) Close() error {
	f.Closed = true
	return nil
}

// Current returns the most recent state, Off before any Set.
func (f *FakeDriver) Current() State {
	if len(f.History) == 0 {
		return Off
	}
	return f.History[len(f.History)-1]
}

// Reset clears recorded state between test phases.
func (f *FakeDriver) Reset() {
	f.History = nil
	f.SetError = nil
	f.Closed = false
}
