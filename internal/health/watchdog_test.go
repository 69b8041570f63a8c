package health

import (
	"testing"
	"time"
)

func TestWatchdogFeedExtendsDeadline(t *testing.T) {
	start := time.Date(2026, 3, 21, 11, 0, 0, 0, time.UTC)
	wd := NewWatchdog(time.Minute, start)

	if wd.Expired(start.Add(30 * time.Second)) {
		t.Error("expired before timeout elapsed")
	}

	wd.Feed(start.Add(30 * time.Second))

	if wd.Expired(start.Add(80 * time.Second)) {
		t.Error("expired despite feed")
	}
	if !wd.Expired(start.Add(95 * time.Second)) {
		t.Error("not expired past fed deadline")
	}
}

func TestWatchdogExpiresAtDeadline(t *testing.T) {
	start := time.Date(2026, 3, 21, 11, 0, 0, 0, time.UTC)
	wd := NewWatchdog(time.Minute, start)

	if wd.Expired(start.Add(time.Minute - time.Nanosecond)) {
		t.Error("expired just before the deadline")
	}
	if !wd.Expired(start.Add(time.Minute)) {
		t.Error("not expired exactly at the deadline")
	}
}

func TestWatchdogStarvationExpires(t *testing.T) {
	start := time.Date(2026, 3, 21, 11, 0, 0, 0, time.UTC)
	wd := NewWatchdog(time.Minute, start)

	// Feeds keep it alive as long as they keep coming.
	for i := 1; i <= 5; i++ {
		now := start.Add(time.Duration(i) * 30 * time.Second)
		if wd.Expired(now) {
			t.Fatalf("expired at feed %d", i)
		}
		wd.Feed(now)
	}

	// Then the feeds stop.
	last := start.Add(5 * 30 * time.Second)
	if !wd.Expired(last.Add(2 * time.Minute)) {
		t.Error("not expired after feeds stopped")
	}
}

func TestWatchdogDefaultTimeout(t *testing.T) {
	start := time.Date(2026, 3, 21, 11, 0, 0, 0, time.UTC)

	for _, timeout := range []time.Duration{0, -time.Hour} {
		wd := NewWatchdog(timeout, start)
		want := start.Add(DefaultWatchdogTimeout)
		if got := wd.Deadline(); !got.Equal(want) {
			t.Errorf("NewWatchdog(%v) deadline = %v, want %v", timeout, got, want)
		}
	}
}
