package clock

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/adrianmo/go-nmea"
	"go.bug.st/serial"
)

// Port is the subset of the serial port the GNSS adapter uses.
// go.bug.st/serial.Port satisfies it; tests supply a scripted fake.
type Port interface {
	Read(p []byte) (int, error)
	ResetInputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

const (
	// gnssReadSlice bounds a single serial read so the deadline is
	// checked a few times per second while waiting for a fix.
	gnssReadSlice = 250 * time.Millisecond

	// gnssMaxPending caps the line reassembly buffer against a port
	// streaming garbage at the wrong baud rate.
	gnssMaxPending = 4096
)

// GNSS reads time from a GNSS module streaming NMEA over UART. Only RMC
// sentences with an active fix are accepted. Power control lives in the
// wake pin (PowerCycler), not here.
type GNSS struct {
	port Port
}

// NewGNSS opens the serial port the GNSS module is attached to.
func NewGNSS(portName string, baud int) (*GNSS, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open gnss port %q: %w", portName, err)
	}
	return &GNSS{port: port}, nil
}

// NewGNSSFromPort wraps an already open port. Used by tests.
func NewGNSSFromPort(port Port) *GNSS {
	return &GNSS{port: port}
}

// Name identifies the source in logs.
func (g *GNSS) Name() string { return "gnss" }

// ReadTime drains the port until a valid RMC fix arrives or the budget
// runs out. The input buffer is flushed first: a sentence buffered before
// the module slept carries an old timestamp and must not win a pass.
func (g *GNSS) ReadTime(timeout time.Duration) (TimePoint, error) {
	deadline := time.Now().Add(timeout)
	if err := g.port.ResetInputBuffer(); err != nil {
		return TimePoint{}, fmt.Errorf("flush gnss port: %w", err)
	}
	if err := g.port.SetReadTimeout(gnssReadSlice); err != nil {
		return TimePoint{}, fmt.Errorf("set gnss read timeout: %w", err)
	}

	var pending []byte
	buf := make([]byte, 256)
	for time.Now().Before(deadline) {
		n, err := g.port.Read(buf)
		if err != nil {
			return TimePoint{}, fmt.Errorf("read gnss port: %w", err)
		}
		if n == 0 {
			// Read timeout slice elapsed with no data.
			continue
		}
		pending = append(pending, buf[:n]...)
		if len(pending) > gnssMaxPending {
			pending = pending[:0]
			continue
		}
		for {
			nl := bytes.IndexByte(pending, '\n')
			if nl < 0 {
				break
			}
			line := strings.TrimSpace(string(pending[:nl]))
			pending = pending[nl+1:]
			if tp, ok := rmcTimePoint(line); ok {
				return tp, nil
			}
		}
	}
	return TimePoint{}, fmt.Errorf("gnss fix: %w", ErrUnavailable)
}

// Close releases the serial port.
func (g *GNSS) Close() error {
	return g.port.Close()
}

// rmcTimePoint extracts a time point from one NMEA line. Anything that is
// not an RMC sentence with validity "A" and complete date and time fields
// is skipped.
func rmcTimePoint(line string) (TimePoint, bool) {
	if line == "" || line[0] != '$' {
		return TimePoint{}, false
	}
	s, err := nmea.Parse(line)
	if err != nil {
		return TimePoint{}, false
	}
	rmc, ok := s.(nmea.RMC)
	if !ok {
		return TimePoint{}, false
	}
	if rmc.Validity != nmea.ValidRMC || !rmc.Time.Valid || !rmc.Date.Valid {
		return TimePoint{}, false
	}
	t := time.Date(
		2000+rmc.Date.YY, time.Month(rmc.Date.MM), rmc.Date.DD,
		rmc.Time.Hour, rmc.Time.Minute, rmc.Time.Second, 0, time.UTC,
	)
	return TimePoint{Epoch: t.Unix(), Source: SourceGNSS, Confidence: ConfidenceAuthoritative}, true
}
