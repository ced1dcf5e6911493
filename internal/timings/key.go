package timings

import (
	"fmt"
	"math"
	"time"
)

// buildKey derives the cache key for a location and calendar month.
// Coordinates are rounded to precision decimal places (two decimals is
// roughly 1 km of granularity), so physically close locations collapse to
// the same key. Callers must still distance-check the full-precision
// coordinates stored in the record, because two points near a rounding
// boundary can share a key while being further apart than the rounding
// granularity suggests.
func buildKey(lat, lon float64, year int, month time.Month, precision int) string {
	return fmt.Sprintf("timings:%.*f:%.*f:%d:%02d",
		precision, roundTo(lat, precision),
		precision, roundTo(lon, precision),
		year, int(month),
	)
}

// lastLocationKey is where the last-known-location marker lives in the
// local store, alongside the monthly records.
const lastLocationKey = "timings:last_known_location"

func roundTo(v float64, decimals int) float64 {
	pow := math.Pow(10, float64(decimals))
	return math.Round(v*pow) / pow
}

// isExpired reports whether the record's age exceeds the retention window.
// The window is deliberately much longer than real prayer-time drift; the
// first-of-month and location-change triggers handle freshness.
func isExpired(r *MonthlyRecord, now time.Time, retention time.Duration) bool {
	age := now.UnixMilli() - r.CachedAt
	return age > retention.Milliseconds()
}
