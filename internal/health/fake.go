package health

// FakeResetter records reset requests instead of rebooting.
type FakeResetter struct {
	Calls      int
	ResetError error
}

func (f *FakeResetter) Reset() error {
	f.Calls++
	if f.ResetError != nil {
		return f.ResetError
	}
	return nil
}
