package clock

import (
	"errors"
	"testing"
	"time"
)

func authoritative(src Source, t time.Time) TimePoint {
	return TimePoint{Epoch: t.Unix(), Source: src, Confidence: ConfidenceAuthoritative}
}

func stale(src Source, t time.Time) TimePoint {
	return TimePoint{Epoch: t.Unix(), Source: src, Confidence: ConfidenceStale}
}

func TestResolveRTCOnly(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))

	r := NewResolver(ResolverConfig{RTC: rtc})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Source != SourceRTC {
		t.Errorf("expected RTC source, got %s", tp.Source)
	}
	if tp.Epoch != now.Unix() {
		t.Errorf("expected epoch %d, got %d", now.Unix(), tp.Epoch)
	}
	if rtc.Calls != 1 {
		t.Errorf("expected 1 rtc read, got %d", rtc.Calls)
	}
}

func TestResolveInitialSyncConfirmsRTC(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now.Add(1*time.Second)))
	power := &FakePower{}
	writer := &FakeWriter{}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: writer, GNSS: gnss, GNSSPower: power})
	tp, outcome := r.Resolve(now)

	// First pass always syncs; a fix within tolerance confirms the RTC.
	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Source != SourceRTC {
		t.Errorf("expected RTC to win the tie, got %s", tp.Source)
	}
	if gnss.Calls != 1 {
		t.Errorf("expected 1 gnss read, got %d", gnss.Calls)
	}
	if power.Wakes != 1 || power.Sleeps != 1 {
		t.Errorf("expected paired wake/sleep, got wakes=%d sleeps=%d", power.Wakes, power.Sleeps)
	}
	if len(writer.Written) != 0 {
		t.Errorf("expected no write-back within tolerance, got %d writes", len(writer.Written))
	}
}

func TestResolveNoExternalQueryBetweenSyncs(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc",
		authoritative(SourceRTC, now),
		authoritative(SourceRTC, now.Add(time.Second)),
		authoritative(SourceRTC, now.Add(2*time.Second)),
	)
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now))
	power := &FakePower{}

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, GNSSPower: power})
	r.Resolve(now)
	r.Resolve(now.Add(time.Second))
	r.Resolve(now.Add(2 * time.Second))

	if gnss.Calls != 1 {
		t.Errorf("expected gnss consulted only on the initial sync, got %d calls", gnss.Calls)
	}
	if power.Wakes != 1 {
		t.Errorf("expected 1 wake, got %d", power.Wakes)
	}
}

func TestResolveSyncAfterInterval(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	later := now.Add(25 * time.Hour)
	rtc := NewFakeAdapter("rtc",
		authoritative(SourceRTC, now),
		authoritative(SourceRTC, later),
	)
	gnss := NewFakeAdapter("gnss",
		authoritative(SourceGNSS, now),
		authoritative(SourceGNSS, later),
	)

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, SyncInterval: 24 * time.Hour})
	r.Resolve(now)
	r.Resolve(later)

	if gnss.Calls != 2 {
		t.Errorf("expected gnss consulted again after the sync interval, got %d calls", gnss.Calls)
	}
}

func TestResolveCorrectionBeyondTolerance(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	fix := now.Add(10 * time.Second)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, fix))
	writer := &FakeWriter{}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: writer, GNSS: gnss, Tolerance: 2 * time.Second})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Source != SourceGNSS {
		t.Errorf("expected GNSS correction to win, got %s", tp.Source)
	}
	if tp.Epoch != fix.Unix() {
		t.Errorf("expected corrected epoch %d, got %d", fix.Unix(), tp.Epoch)
	}
	if len(writer.Written) != 1 {
		t.Fatalf("expected 1 write-back, got %d", len(writer.Written))
	}
	if !writer.Written[0].Equal(fix) {
		t.Errorf("expected write-back of %v, got %v", fix, writer.Written[0])
	}
}

func TestResolveStaleRTCRepaired(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", stale(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now.Add(time.Second)))
	writer := &FakeWriter{}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: writer, GNSS: gnss})
	tp, outcome := r.Resolve(now)

	// A stale RTC is rewritten even when the fix agrees with it, so the
	// chip's integrity flag is cleared.
	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Source != SourceGNSS {
		t.Errorf("expected GNSS to beat stale RTC, got %s", tp.Source)
	}
	if len(writer.Written) != 1 {
		t.Errorf("expected 1 write-back, got %d", len(writer.Written))
	}
}

func TestResolveStaleRTCNoExternal(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", stale(SourceRTC, now))

	r := NewResolver(ResolverConfig{RTC: rtc})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeDegraded {
		t.Errorf("expected DEGRADED, got %s", outcome)
	}
	if tp.Source != SourceRTC || tp.Confidence != ConfidenceStale {
		t.Errorf("expected stale RTC point, got %s/%s", tp.Source, tp.Confidence)
	}
}

func TestResolveWriteBackFailureDegrades(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	fix := now.Add(time.Minute)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, fix))
	writer := &FakeWriter{WriteError: errors.New("i2c write failed")}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: writer, GNSS: gnss})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeDegraded {
		t.Errorf("expected DEGRADED on write-back failure, got %s", outcome)
	}
	if tp.Epoch != fix.Unix() {
		t.Errorf("resolution should still carry the fix, got epoch %d", tp.Epoch)
	}
}

func TestResolveAllSourcesFail(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now))
	ntp := NewFakeAdapter("ntp")

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, NTP: ntp})
	first, outcome := r.Resolve(now)
	if outcome != OutcomeOK {
		t.Fatalf("setup resolve failed: %s", outcome)
	}

	rtc.ReadError = errors.New("i2c bus stuck")
	gnss.ReadError = errors.New("no fix")
	ntp.ReadError = errors.New("no network")

	for i := 1; i <= 3; i++ {
		tp, outcome := r.Resolve(now.Add(time.Duration(i) * time.Second))
		if outcome != OutcomeFailed {
			t.Errorf("iteration %d: expected FAILED, got %s", i, outcome)
		}
		if tp.Confidence != ConfidenceUnknown {
			t.Errorf("iteration %d: expected UNKNOWN confidence, got %s", i, tp.Confidence)
		}
		if tp.Epoch != first.Epoch {
			t.Errorf("iteration %d: expected held epoch %d, got %d", i, first.Epoch, tp.Epoch)
		}
	}
}

func TestResolveFailedWithNoHistory(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc")
	rtc.ReadError = errors.New("absent")

	r := NewResolver(ResolverConfig{RTC: rtc})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeFailed {
		t.Errorf("expected FAILED, got %s", outcome)
	}
	if tp.Source != SourceNone || tp.Confidence != ConfidenceUnknown {
		t.Errorf("expected NONE/UNKNOWN, got %s/%s", tp.Source, tp.Confidence)
	}
	if tp.Epoch != now.Unix() {
		t.Errorf("expected loop clock epoch %d, got %d", now.Unix(), tp.Epoch)
	}
}

func TestResolveMonotonicClamp(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc",
		authoritative(SourceRTC, now),
		authoritative(SourceRTC, now.Add(-50*time.Second)),
	)

	r := NewResolver(ResolverConfig{RTC: rtc})
	r.Resolve(now)
	tp, _ := r.Resolve(now.Add(time.Second))

	// A backward RTC reading is a glitch, not a correction.
	if tp.Epoch != now.Unix() {
		t.Errorf("expected clamp to held epoch %d, got %d", now.Unix(), tp.Epoch)
	}
}

func TestResolveBackwardCorrectionAccepted(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	fix := now.Add(-100 * time.Second)
	rtc := NewFakeAdapter("rtc",
		authoritative(SourceRTC, now),
		authoritative(SourceRTC, now.Add(time.Second)),
	)
	gnss := NewFakeAdapter("gnss",
		authoritative(SourceGNSS, now),
		authoritative(SourceGNSS, fix),
	)
	writer := &FakeWriter{}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: writer, GNSS: gnss})
	r.Resolve(now)

	r.ForceSync()
	tp, outcome := r.Resolve(now.Add(time.Second))

	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Epoch != fix.Unix() {
		t.Errorf("expected backward correction to %d, got %d", fix.Unix(), tp.Epoch)
	}
	if len(writer.Written) != 1 {
		t.Errorf("expected write-back for the correction, got %d writes", len(writer.Written))
	}
}

func TestResolveWakeSleepPairedOnFailure(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", stale(SourceRTC, now))
	gnss := NewFakeAdapter("gnss")
	gnss.ReadError = errors.New("no fix before timeout")
	power := &FakePower{}
	ntp := NewFakeAdapter("ntp", authoritative(SourceWiFi, now))

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, GNSSPower: power, NTP: ntp})
	tp, _ := r.Resolve(now)

	if power.Wakes != 1 || power.Sleeps != 1 {
		t.Errorf("expected paired wake/sleep on failed read, got wakes=%d sleeps=%d", power.Wakes, power.Sleeps)
	}
	if tp.Source != SourceWiFi {
		t.Errorf("expected NTP fallback, got %s", tp.Source)
	}
}

func TestResolveWakeFailureSkipsGNSSRead(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", stale(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now))
	power := &FakePower{WakeError: errors.New("pin request failed")}
	ntp := NewFakeAdapter("ntp", authoritative(SourceWiFi, now))

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, GNSSPower: power, NTP: ntp})
	tp, _ := r.Resolve(now)

	if gnss.Calls != 0 {
		t.Errorf("expected no gnss read after wake failure, got %d calls", gnss.Calls)
	}
	if tp.Source != SourceWiFi {
		t.Errorf("expected NTP fallback, got %s", tp.Source)
	}
}

func TestResolveWithoutRTC(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now))

	r := NewResolver(ResolverConfig{GNSS: gnss})
	tp, outcome := r.Resolve(now)

	if outcome != OutcomeOK {
		t.Errorf("expected OK, got %s", outcome)
	}
	if tp.Source != SourceGNSS {
		t.Errorf("expected GNSS, got %s", tp.Source)
	}
}

func TestResolveRetryBackoff(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc",
		stale(SourceRTC, now),
		stale(SourceRTC, now.Add(time.Second)),
		stale(SourceRTC, now.Add(5*time.Minute)),
	)
	gnss := NewFakeAdapter("gnss")
	gnss.ReadError = errors.New("no fix")

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, SyncRetry: 5 * time.Minute})

	r.Resolve(now)
	if gnss.Calls != 1 {
		t.Fatalf("expected first attempt, got %d calls", gnss.Calls)
	}

	r.Resolve(now.Add(time.Second))
	if gnss.Calls != 1 {
		t.Errorf("expected backoff to suppress retry, got %d calls", gnss.Calls)
	}

	r.Resolve(now.Add(5 * time.Minute))
	if gnss.Calls != 2 {
		t.Errorf("expected retry after backoff, got %d calls", gnss.Calls)
	}
}

func TestForceSyncBypassesBackoff(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc",
		stale(SourceRTC, now),
		stale(SourceRTC, now.Add(time.Second)),
	)
	gnss := NewFakeAdapter("gnss")
	gnss.ReadError = errors.New("no fix")

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss})
	r.Resolve(now)

	r.ForceSync()
	r.Resolve(now.Add(time.Second))

	if gnss.Calls != 2 {
		t.Errorf("expected forced sync to bypass backoff, got %d calls", gnss.Calls)
	}
}

func TestResolvePassesAdapterBudget(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))

	r := NewResolver(ResolverConfig{RTC: rtc, AdapterTimeout: 3 * time.Second})
	r.Resolve(now)

	if rtc.LastTimeout != 3*time.Second {
		t.Errorf("expected 3s budget, got %v", rtc.LastTimeout)
	}
}

func TestResolveSystemClockFollowsCorrection(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	fix := now.Add(time.Minute)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, fix))
	rtcWriter := &FakeWriter{}
	sysClock := &FakeWriter{}

	r := NewResolver(ResolverConfig{RTC: rtc, RTCWriter: rtcWriter, GNSS: gnss, SystemClock: sysClock})
	r.Resolve(now)

	if len(sysClock.Written) != 1 {
		t.Fatalf("expected system clock update, got %d writes", len(sysClock.Written))
	}
	if !sysClock.Written[0].Equal(fix) {
		t.Errorf("expected system clock set to %v, got %v", fix, sysClock.Written[0])
	}
}

func TestResolveSystemClockFailureDoesNotDegrade(t *testing.T) {
	now := time.Date(2026, 3, 21, 12, 0, 0, 0, time.UTC)
	rtc := NewFakeAdapter("rtc", authoritative(SourceRTC, now))
	gnss := NewFakeAdapter("gnss", authoritative(SourceGNSS, now.Add(time.Minute)))
	sysClock := &FakeWriter{WriteError: errors.New("not permitted")}

	r := NewResolver(ResolverConfig{RTC: rtc, GNSS: gnss, SystemClock: sysClock})
	_, outcome := r.Resolve(now)

	if outcome != OutcomeOK {
		t.Errorf("system clock failure should only log, got %s", outcome)
	}
}
