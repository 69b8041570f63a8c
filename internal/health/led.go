package health

import (
	"time"

	"github.com/okon/yearglass/internal/led"
)

// Encode maps a fault domain to the LED cadence the user sees. With no
// fault the LED is solid on while the loop works and off while idle.
// The table is fixed:
//
//	MAIN_LOOP        blink 500ms
//	DATA_UPDATE      blink 1s
//	DISPLAY_UPDATE   blink 2s
//	OPTIONAL_HW_INIT blink 3s
func Encode(d FaultDomain, busy bool) led.State {
	switch d {
	case FaultMainLoop:
		return led.Blink(500 * time.Millisecond)
	case FaultDataUpdate:
		return led.Blink(time.Second)
	case FaultDisplayUpdate:
		return led.Blink(2 * time.Second)
	case FaultOptionalHWInit:
		return led.Blink(3 * time.Second)
	}
	if busy {
		return led.On
	}
	return led.Off
}
