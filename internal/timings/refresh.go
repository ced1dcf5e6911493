package timings

import (
	"context"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/geo"
)

// Refresh reasons reported by ShouldRefresh.
const (
	ReasonFirstOfMonth  = "first_of_month"
	ReasonLocationDrift = "location_drift"
	ReasonNoCache       = "no_cache"
	ReasonCacheExpired  = "cache_expired"
)

// Decision is an advisory refresh recommendation.
type Decision struct {
	Refresh bool   `json:"refresh"`
	Reason  string `json:"reason,omitempty"`
}

// ShouldRefresh recommends whether a caller should proactively re-resolve
// the current month for the given location. Triggers, in order: first
// calendar day of a new month, last-known-location drift beyond the
// distance threshold, no cache for the current key, expired cache. Purely
// advisory; it never mutates cache state.
func (s *Service) ShouldRefresh(ctx context.Context, lat, lon float64) Decision {
	now := s.now()

	if now.Day() == 1 {
		return Decision{Refresh: true, Reason: ReasonFirstOfMonth}
	}

	if last, ok := s.LastKnown(ctx); ok {
		d := geo.DistanceKm(
			geo.Coordinates{Latitude: last.Latitude, Longitude: last.Longitude},
			geo.Coordinates{Latitude: lat, Longitude: lon},
		)
		if d > s.cfg.DistanceThresholdKm {
			return Decision{Refresh: true, Reason: ReasonLocationDrift}
		}
	}

	year, month, _ := now.Date()
	key := buildKey(lat, lon, year, month, s.cfg.KeyPrecision)

	rec, ok := s.memory.get(key, now)
	if !ok {
		rec = s.readStore(ctx, s.local, key)
	}
	if rec != nil && !s.closeEnough(rec, Query{Latitude: lat, Longitude: lon}) {
		rec = nil
	}

	if rec == nil {
		return Decision{Refresh: true, Reason: ReasonNoCache}
	}
	if isExpired(rec, now, s.cfg.Retention) {
		return Decision{Refresh: true, Reason: ReasonCacheExpired}
	}

	return Decision{Refresh: false}
}
