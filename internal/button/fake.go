package button

// FakeSource feeds scripted events to the supervisor in tests.
type FakeSource struct {
	ch     chan Event
	Closed bool
}

// NewFakeSource creates a source with the given buffer depth.
func NewFakeSource(buffer int) *FakeSource {
	return &FakeSource{ch: make(chan Event, buffer)}
}

// Press queues one event. It blocks if the buffer is full, which in a
// test means the script outran the consumer.
func (f *FakeSource) Press(ev Event) {
	f.ch <- ev
}

func (f *FakeSource) Events() <-chan Event {
	return f.ch
}

func (f *FakeSource) Close() error {
	f.Closed = true
	close(f.ch)
	return nil
}
