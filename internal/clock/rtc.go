package clock

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
)

// PCF8563 register map. Time registers hold BCD with unused high bits
// that must be masked; bit 7 of the seconds register is the VL flag,
// set by the chip when the oscillator stopped (integrity lost).
const (
	DefaultRTCAddr = 0x51

	regControl1 = 0x00
	regSeconds  = 0x02
	vlBit       = 0x80
)

// MinCredibleYear is the firmware build horizon. An unset PCF8563 powers
// up in 2000, so any earlier year means the reading is stale even when
// the integrity flag survived.
const MinCredibleYear = 2024

// RTC reads and writes a PCF8563 real-time clock over I2C.
// It implements Adapter and Writer. Register values are interpreted as UTC.
type RTC struct {
	bus i2c.BusCloser
	dev i2c.Dev
}

// NewRTC opens the I2C bus and probes for the chip. A probe failure means
// the clock is absent or unwired; callers treat that as optional-hardware
// degradation, not a fatal error.
func NewRTC(busName string, addr uint16) (*RTC, error) {
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %q: %w", busName, err)
	}
	dev := i2c.Dev{Bus: bus, Addr: addr}
	var probe [1]byte
	if err := dev.Tx([]byte{regControl1}, probe[:]); err != nil {
		bus.Close()
		return nil, fmt.Errorf("probe pcf8563 at 0x%02x: %w", addr, err)
	}
	return &RTC{bus: bus, dev: dev}, nil
}

// Name identifies the source in logs.
func (r *RTC) Name() string { return "rtc" }

// ReadTime reads the seven time registers in one transaction. The I2C
// exchange completes in microseconds; the timeout is not enforced here.
func (r *RTC) ReadTime(timeout time.Duration) (TimePoint, error) {
	var buf [7]byte
	if err := r.dev.Tx([]byte{regSeconds}, buf[:]); err != nil {
		return TimePoint{}, fmt.Errorf("read rtc registers: %w", err)
	}

	integrityLost := buf[0]&vlBit != 0
	t := time.Date(
		2000+fromBCD(buf[6]),
		time.Month(fromBCD(buf[5]&0x1f)),
		fromBCD(buf[3]&0x3f),
		fromBCD(buf[2]&0x3f),
		fromBCD(buf[1]&0x7f),
		fromBCD(buf[0]&0x7f),
		0, time.UTC,
	)

	confidence := ConfidenceAuthoritative
	if integrityLost || t.Year() < MinCredibleYear {
		confidence = ConfidenceStale
	}
	return TimePoint{Epoch: t.Unix(), Source: SourceRTC, Confidence: confidence}, nil
}

// WriteTime sets the chip from t. Writing the seconds register clears the
// VL flag, so a successful write-back also restores integrity.
func (r *RTC) WriteTime(t time.Time) error {
	u := t.UTC()
	buf := []byte{
		regSeconds,
		toBCD(u.Second()),
		toBCD(u.Minute()),
		toBCD(u.Hour()),
		toBCD(u.Day()),
		byte(u.Weekday()),
		toBCD(int(u.Month())),
		toBCD(u.Year() - 2000),
	}
	if err := r.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("write rtc registers: %w", err)
	}
	return nil
}

// Close releases the I2C bus.
func (r *RTC) Close() error {
	return r.bus.Close()
}

func fromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

func toBCD(v int) byte {
	return byte(v/10<<4 | v%10)
}
