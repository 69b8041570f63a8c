package clock

import "time"

// YearProgress is how far the year has advanced, in fully completed days.
// The day in progress never counts.
type YearProgress struct {
	DaysElapsed int
	DaysTotal   int
}

// Fraction returns elapsed/total as a proportion of the year.
func (p YearProgress) Fraction() float64 {
	if p.DaysTotal <= 0 {
		return 0
	}
	return float64(p.DaysElapsed) / float64(p.DaysTotal)
}

// Progress computes year progress for a time point in the given location.
func Progress(tp TimePoint, loc *time.Location) YearProgress {
	t := time.Unix(tp.Epoch, 0).In(loc)
	return YearProgress{
		DaysElapsed: t.YearDay() - 1,
		DaysTotal:   daysInYear(t.Year()),
	}
}

func daysInYear(year int) int {
	return time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC).YearDay()
}

// Midnight drift buffer: the redraw lands a minute past the day boundary
// so a slightly slow clock cannot schedule it on the old day.
const (
	midnightBuffer = time.Minute
	midnightFloor  = time.Minute
)

// SecondsUntilMidnight returns the wait until shortly after the next
// local midnight. Never less than a minute.
func SecondsUntilMidnight(tp TimePoint, loc *time.Location) time.Duration {
	t := time.Unix(tp.Epoch, 0).In(loc)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	d := midnight.Sub(t) + midnightBuffer
	if d < midnightFloor {
		return midnightFloor
	}
	return d
}
