package timings

import (
	"time"
)

// Method identifies the calculation convention used by the upstream timing
// source. Values follow the Al Adhan API method ids.
type Method int

const (
	MethodKarachi   Method = 1
	MethodISNA      Method = 2
	MethodMWL       Method = 3
	MethodUmmAlQura Method = 4
	MethodEgyptian  Method = 5
)

// DailyTimings is one day's worth of prayer times plus calendar metadata.
// The cache treats it as an opaque payload: times are kept as the upstream
// "HH:MM" strings and passed through untouched.
type DailyTimings struct {
	Fajr     string `json:"fajr"`
	Sunrise  string `json:"sunrise"`
	Dhuhr    string `json:"dhuhr"`
	Asr      string `json:"asr"`
	Sunset   string `json:"sunset"`
	Maghrib  string `json:"maghrib"`
	Isha     string `json:"isha"`
	Imsak    string `json:"imsak"`
	Midnight string `json:"midnight"`

	// GregorianDate and HijriDate are upstream date strings ("DD-MM-YYYY").
	GregorianDate string `json:"gregorian_date"`
	HijriDate     string `json:"hijri_date"`
}

// MonthlyRecord is the unit of caching: one calendar month of daily prayer
// times for one location and calculation method. Records are immutable;
// a fresher fetch replaces them wholesale.
type MonthlyRecord struct {
	// Days holds one entry per calendar day; index 0 is day 1.
	Days []DailyTimings `json:"days"`

	// CachedAt is when this record was produced, in epoch milliseconds.
	CachedAt int64 `json:"cached_at_ms"`

	Year  int        `json:"year"`
	Month time.Month `json:"month"`

	// Latitude and Longitude are the full-precision coordinates the record
	// was fetched for, not the rounded key coordinates.
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Method Method `json:"method"`
}

// Valid reports whether the record satisfies the month-length invariant:
// len(Days) must equal the calendar length of (Year, Month). Invalid
// records are rejected at ingestion so Day never fails on a served record.
func (r *MonthlyRecord) Valid() bool {
	if r == nil || r.Month < time.January || r.Month > time.December {
		return false
	}
	return len(r.Days) == daysInMonth(r.Year, r.Month)
}

// Day returns the timings for the given date's day-of-month. The bool is
// false if the index is out of range, which cannot happen for a record
// that passed ingestion validation.
func (r *MonthlyRecord) Day(date time.Time) (DailyTimings, bool) {
	idx := date.Day() - 1
	if r == nil || idx < 0 || idx >= len(r.Days) {
		return DailyTimings{}, false
	}
	return r.Days[idx], true
}

// LastKnownLocation is the most recent location for which a network fetch
// succeeded. It is a heuristic signal for proactive refresh, not a
// correctness gate.
type LastKnownLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp_ms"`
}

// daysInMonth returns the number of calendar days in (year, month).
func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
