package aladhan

// calendarResponse is the top-level Al Adhan calendar API response. The
// calendar endpoint returns one data object per day of the month.
type calendarResponse struct {
	Code   int           `json:"code"`
	Status string        `json:"status"`
	Data   []calendarDay `json:"data"`
}

type calendarDay struct {
	Timings dayTimings `json:"timings"`
	Date    dateInfo   `json:"date"`
}

// dayTimings contains prayer and event times as "HH:MM" strings. The API
// may append a timezone suffix like " (+03)"; we pass times through as-is.
type dayTimings struct {
	Fajr     string `json:"Fajr"`
	Sunrise  string `json:"Sunrise"`
	Dhuhr    string `json:"Dhuhr"`
	Asr      string `json:"Asr"`
	Sunset   string `json:"Sunset"`
	Maghrib  string `json:"Maghrib"`
	Isha     string `json:"Isha"`
	Imsak    string `json:"Imsak"`
	Midnight string `json:"Midnight"`
}

type dateInfo struct {
	Readable  string        `json:"readable"`
	Hijri     hijriDate     `json:"hijri"`
	Gregorian gregorianDate `json:"gregorian"`
}

type hijriDate struct {
	Date string `json:"date"` // e.g. "10-08-1447"
}

type gregorianDate struct {
	Date string `json:"date"` // e.g. "15-06-2024"
}
