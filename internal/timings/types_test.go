package timings

import (
	"testing"
	"time"
)

func TestDaysInMonth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		year  int
		month time.Month
		want  int
	}{
		{2024, time.June, 30},
		{2024, time.July, 31},
		{2024, time.February, 29}, // leap year
		{2023, time.February, 28},
		{2024, time.December, 31},
	}

	for _, tt := range tests {
		if got := daysInMonth(tt.year, tt.month); got != tt.want {
			t.Errorf("daysInMonth(%d, %v) = %d, want %d", tt.year, tt.month, got, tt.want)
		}
	}
}

func TestMonthlyRecordValid(t *testing.T) {
	t.Parallel()

	rec := &MonthlyRecord{
		Days:  make([]DailyTimings, 30),
		Year:  2024,
		Month: time.June,
	}
	if !rec.Valid() {
		t.Errorf("30-day June record reported invalid")
	}

	rec.Days = make([]DailyTimings, 29)
	if rec.Valid() {
		t.Errorf("29-day June record reported valid")
	}

	var nilRec *MonthlyRecord
	if nilRec.Valid() {
		t.Errorf("nil record reported valid")
	}

	bad := &MonthlyRecord{Days: make([]DailyTimings, 30), Year: 2024, Month: 13}
	if bad.Valid() {
		t.Errorf("record with month 13 reported valid")
	}
}

func TestMonthlyRecordDay(t *testing.T) {
	t.Parallel()

	days := make([]DailyTimings, 30)
	for i := range days {
		days[i].Fajr = time.Date(2024, time.June, i+1, 0, 0, 0, 0, time.UTC).Format("02-01")
	}
	rec := &MonthlyRecord{Days: days, Year: 2024, Month: time.June}

	got, ok := rec.Day(time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatalf("Day(June 15) reported out of range")
	}
	if got.Fajr != days[14].Fajr {
		t.Errorf("Day(June 15) = %q, want days[14] = %q", got.Fajr, days[14].Fajr)
	}

	if _, ok := rec.Day(time.Date(2024, time.July, 31, 0, 0, 0, 0, time.UTC)); ok {
		t.Errorf("Day(31st) on a 30-day record reported in range")
	}
}
