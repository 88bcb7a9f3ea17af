package application

import "time"

// SourceKind classifies tiers for the staleness policy.
type SourceKind string

const (
	KindBackend   SourceKind = "backend"
	KindCache     SourceKind = "cache"
	KindLive      SourceKind = "live"
	KindSynthetic SourceKind = "synthetic"
)

const (
	// MaxBackendAge gives buffer for the aggregator's own refresh cadence.
	MaxBackendAge = 3 * time.Hour
	// MaxCacheAge is tighter: the snapshot job runs hourly, one hour of slack.
	MaxCacheAge = 2 * time.Hour
)

// IsFresh reports whether a payload stamped at payloadTime is still usable
// for the given source kind. Live and synthetic tiers have no staleness
// bound. A zero timestamp is always stale, forcing the next tier.
func IsFresh(kind SourceKind, payloadTime, now time.Time) bool {
	switch kind {
	case KindLive, KindSynthetic:
		return true
	}
	if payloadTime.IsZero() {
		return false
	}
	age := now.Sub(payloadTime)
	switch kind {
	case KindBackend:
		return age < MaxBackendAge
	case KindCache:
		return age < MaxCacheAge
	}
	return false
}
