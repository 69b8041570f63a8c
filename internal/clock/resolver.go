package clock

import (
	"log"
	"time"
)

// Default resolver tuning. Overridable through ResolverConfig.
const (
	DefaultAdapterTimeout = 5 * time.Second
	DefaultSyncInterval   = 24 * time.Hour
	DefaultSyncRetry      = 5 * time.Minute
	DefaultTolerance      = 2 * time.Second
)

// ResolverConfig wires the resolver's sources. Every source is optional;
// a nil adapter is permanently unavailable.
type ResolverConfig struct {
	RTC       Adapter
	RTCWriter Writer
	GNSS      Adapter
	GNSSPower PowerCycler
	NTP       Adapter

	// SystemClock, when set, receives accepted external corrections so
	// the OS clock follows the resolved time.
	SystemClock Writer

	// AdapterTimeout is the per-source read budget (default 5s).
	AdapterTimeout time.Duration
	// SyncInterval is how often external sources are consulted to catch
	// RTC drift when the RTC itself is healthy (default 24h).
	SyncInterval time.Duration
	// SyncRetry rate-limits external attempts after a failed sync so a
	// dead antenna cannot drain the battery (default 5m).
	SyncRetry time.Duration
	// Tolerance is the disagreement beyond which an external fix
	// corrects a healthy RTC (default 2s).
	Tolerance time.Duration
}

// Resolver picks the best available time each iteration: RTC first (cheap,
// battery-backed), GNSS then NTP for corrections. It holds the last good
// point so total source loss degrades instead of failing hard.
type Resolver struct {
	rtc       Adapter
	rtcWriter Writer
	gnss      Adapter
	gnssPower PowerCycler
	ntp       Adapter
	sysClock  Writer

	timeout      time.Duration
	syncInterval time.Duration
	syncRetry    time.Duration
	tolerance    time.Duration

	held        TimePoint
	haveHeld    bool
	lastSync    time.Time
	lastAttempt time.Time
	forceSync   bool
}

// NewResolver creates a resolver over the configured sources.
func NewResolver(cfg ResolverConfig) *Resolver {
	if cfg.AdapterTimeout <= 0 {
		cfg.AdapterTimeout = DefaultAdapterTimeout
	}
	if cfg.SyncInterval <= 0 {
		cfg.SyncInterval = DefaultSyncInterval
	}
	if cfg.SyncRetry <= 0 {
		cfg.SyncRetry = DefaultSyncRetry
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = DefaultTolerance
	}
	return &Resolver{
		rtc:          cfg.RTC,
		rtcWriter:    cfg.RTCWriter,
		gnss:         cfg.GNSS,
		gnssPower:    cfg.GNSSPower,
		ntp:          cfg.NTP,
		sysClock:     cfg.SystemClock,
		timeout:      cfg.AdapterTimeout,
		syncInterval: cfg.SyncInterval,
		syncRetry:    cfg.SyncRetry,
		tolerance:    cfg.Tolerance,
	}
}

// ForceSync arms an immediate external sync on the next Resolve,
// bypassing the retry backoff. Called on the sync button action.
func (r *Resolver) ForceSync() {
	r.forceSync = true
}

// Resolve performs one resolution pass. It never returns an error and
// never blocks past the sum of the adapter budgets: source failures are
// classified into the Outcome instead.
//
// The RTC is read every pass. External sources are consulted only when
// the RTC gave nothing Authoritative, when the drift-correction interval
// has elapsed, or when a sync was forced. An external Authoritative fix
// wins over the RTC when the RTC is unusable or disagrees beyond the
// tolerance; exactly then the RTC is rewritten.
func (r *Resolver) Resolve(now time.Time) (TimePoint, Outcome) {
	rtcPoint, rtcOK := r.readRTC()
	rtcUsable := rtcOK && rtcPoint.Confidence == ConfidenceAuthoritative

	syncDue := r.forceSync || r.lastSync.IsZero() || now.Sub(r.lastSync) >= r.syncInterval
	canAttempt := r.forceSync || r.lastAttempt.IsZero() || now.Sub(r.lastAttempt) >= r.syncRetry

	var external TimePoint
	haveExternal := false
	if (syncDue || !rtcUsable) && canAttempt {
		r.lastAttempt = now
		r.forceSync = false
		external, haveExternal = r.readExternal()
		if haveExternal {
			r.lastSync = now
		}
	}

	winner := rtcPoint
	externalWins := false
	switch {
	case haveExternal && !rtcOK:
		winner = external
		externalWins = true
	case haveExternal && rtcPoint.Confidence != ConfidenceAuthoritative:
		winner = external
		externalWins = true
	case haveExternal && absDiff(external.Epoch, rtcPoint.Epoch) > int64(r.tolerance/time.Second):
		log.Printf("time correction: %s fix differs from rtc by %ds", external.Source, external.Epoch-rtcPoint.Epoch)
		winner = external
		externalWins = true
	case rtcOK:
		// RTC wins; an in-tolerance external fix merely confirmed it.
	default:
		return r.failed(now), OutcomeFailed
	}

	degraded := winner.Confidence == ConfidenceStale
	if externalWins {
		if !r.writeBack(winner) {
			degraded = true
		}
	}

	winner = r.clampMonotonic(winner, externalWins)
	r.held = winner
	r.haveHeld = true

	if degraded {
		return winner, OutcomeDegraded
	}
	return winner, OutcomeOK
}

// readRTC queries the RTC adapter if one is configured.
func (r *Resolver) readRTC() (TimePoint, bool) {
	if r.rtc == nil {
		return TimePoint{}, false
	}
	tp, err := r.rtc.ReadTime(r.timeout)
	if err != nil {
		log.Printf("%s read failed: %v", r.rtc.Name(), err)
		return TimePoint{}, false
	}
	return tp, true
}

// readExternal tries GNSS then NTP, in priority order. The GNSS module is
// woken before its query and slept after, whether or not a fix arrived.
func (r *Resolver) readExternal() (TimePoint, bool) {
	if tp, ok := r.readGNSS(); ok {
		return tp, true
	}
	if r.ntp != nil {
		tp, err := r.ntp.ReadTime(r.timeout)
		if err == nil {
			return tp, true
		}
		log.Printf("%s read failed: %v", r.ntp.Name(), err)
	}
	return TimePoint{}, false
}

func (r *Resolver) readGNSS() (TimePoint, bool) {
	if r.gnss == nil {
		return TimePoint{}, false
	}
	if r.gnssPower != nil {
		if err := r.gnssPower.Wake(); err != nil {
			log.Printf("gnss wake failed: %v", err)
			return TimePoint{}, false
		}
	}
	tp, err := r.gnss.ReadTime(r.timeout)
	if r.gnssPower != nil {
		if serr := r.gnssPower.Sleep(); serr != nil {
			log.Printf("gnss sleep failed: %v", serr)
		}
	}
	if err != nil {
		log.Printf("%s read failed: %v", r.gnss.Name(), err)
		return TimePoint{}, false
	}
	return tp, true
}

// writeBack persists an accepted external fix into the RTC (clearing its
// integrity flag) and, when wired, the system clock. Returns false when
// the RTC write failed.
func (r *Resolver) writeBack(tp TimePoint) bool {
	ok := true
	if r.rtcWriter != nil {
		if err := r.rtcWriter.WriteTime(tp.Time()); err != nil {
			log.Printf("rtc write-back failed: %v", err)
			ok = false
		} else {
			log.Printf("rtc write-back: %s from %s", tp.Time().Format(time.RFC3339), tp.Source)
		}
	}
	if r.sysClock != nil {
		if err := r.sysClock.WriteTime(tp.Time()); err != nil {
			log.Printf("system clock update failed: %v", err)
		}
	}
	return ok
}

// clampMonotonic keeps resolved time non-decreasing. Only an accepted
// external correction may step backward; anything else moving backward is
// a source glitch and is pinned to the held epoch.
func (r *Resolver) clampMonotonic(tp TimePoint, correction bool) TimePoint {
	if !r.haveHeld || tp.Epoch >= r.held.Epoch {
		return tp
	}
	if correction && tp.Confidence == ConfidenceAuthoritative {
		log.Printf("time correction: stepping back %ds on %s fix", r.held.Epoch-tp.Epoch, tp.Source)
		return tp
	}
	log.Printf("%s reading moved backward %ds, clamped", tp.Source, r.held.Epoch-tp.Epoch)
	tp.Epoch = r.held.Epoch
	return tp
}

// failed returns the degraded point for a pass with no usable reading:
// the previous point downgraded to Unknown, or the loop clock when
// nothing was ever resolved.
func (r *Resolver) failed(now time.Time) TimePoint {
	if r.haveHeld {
		tp := r.held
		tp.Confidence = ConfidenceUnknown
		return tp
	}
	return TimePoint{Epoch: now.Unix(), Source: SourceNone, Confidence: ConfidenceUnknown}
}

func absDiff(a, b int64) int64 {
	if a > b {
		return a - b
	}
	return b - a
}
