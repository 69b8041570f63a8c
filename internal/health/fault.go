// Package health supervises the device loop: it classifies failures
// into fault domains, encodes them on the status LED, feeds the
// watchdog and forces a platform reset when the loop stops making
// progress.
package health

// FaultDomain identifies which stage of the device loop is failing.
// Exactly one domain is active at a time; None means healthy. The
// constants are declared in severity order, most severe first after
// None.
type FaultDomain int

const (
	FaultNone FaultDomain = iota
	FaultMainLoop
	FaultDataUpdate
	FaultDisplayUpdate
	FaultOptionalHWInit
)

func (d FaultDomain) String() string {
	switch d {
	case FaultNone:
		return "NONE"
	case FaultMainLoop:
		return "MAIN_LOOP"
	case FaultDataUpdate:
		return "DATA_UPDATE"
	case FaultDisplayUpdate:
		return "DISPLAY_UPDATE"
	case FaultOptionalHWInit:
		return "OPTIONAL_HW_INIT"
	}
	return "UNKNOWN"
}

// Outranks reports whether d is more severe than other. Every real
// fault outranks None; earlier loop stages outrank later ones, and all
// of them outrank the sticky initialization fault.
func (d FaultDomain) Outranks(other FaultDomain) bool {
	if d == FaultNone {
		return false
	}
	if other == FaultNone {
		return true
	}
	return d < other
}
