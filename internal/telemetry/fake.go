package telemetry

// FakePublisher records published events for test assertions.
type FakePublisher struct {
	// FaultEvents contains all fault transitions that were published.
	FaultEvents []FaultEvent

	// FaultPayloads contains the JSON payloads for fault transitions.
	FaultPayloads [][]byte

	// SystemEvents contains all lifecycle events that were published.
	SystemEvents []SystemEvent

	// SystemPayloads contains the JSON payloads for lifecycle events.
	SystemPayloads [][]byte

	// PublishFaultError, if set, will be returned by PublishFault.
	PublishFaultError error

	// PublishSystemError, if set, will be returned by PublishSystem.
	PublishSystemError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishFault records the fault transition.
func (f *FakePublisher) PublishFault(event FaultEvent) error {
	if f.PublishFaultError != nil {
		return f.PublishFaultError
	}

	f.FaultEvents = append(f.FaultEvents, event)

	payload, err := FormatFaultPayload(event)
	if err != nil {
		return err
	}
	f.FaultPayloads = append(f.FaultPayloads, payload)

	return nil
}

// PublishSystem records the lifecycle event.
func (f *FakePublisher) PublishSystem(event SystemEvent) error {
	if f.PublishSystemError != nil {
		return f.PublishSystemError
	}

	f.SystemEvents = append(f.SystemEvents, event)

	payload, err := FormatSystemPayload(event)
	if err != nil {
		return err
	}
	f.SystemPayloads = append(f.SystemPayloads, payload)

	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	return f.Connected
}

// Reset clears recorded events.
func (f *FakePublisher) Reset() {
	f.FaultEvents = nil
	f.FaultPayloads = nil
	f.SystemEvents = nil
	f.SystemPayloads = nil
	f.Closed = false
	f.PublishFaultError = nil
	f.PublishSystemError = nil
	f.Connected = false
}
