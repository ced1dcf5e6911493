package timings

import (
	"testing"
	"time"
)

func TestBuildKeyDeterministic(t *testing.T) {
	t.Parallel()

	a := buildKey(21.4225, 39.8262, 2024, time.June, 2)
	b := buildKey(21.4225, 39.8262, 2024, time.June, 2)
	if a != b {
		t.Fatalf("same inputs produced different keys: %q vs %q", a, b)
	}
}

func TestBuildKeyRoundsCoordinates(t *testing.T) {
	t.Parallel()

	// Differences beyond the second decimal place collapse to one key.
	a := buildKey(21.4225, 39.8262, 2024, time.June, 2)
	b := buildKey(21.4249, 39.8290, 2024, time.June, 2)
	if a != b {
		t.Errorf("coordinates inside rounding granularity got different keys: %q vs %q", a, b)
	}

	c := buildKey(21.4825, 39.8262, 2024, time.June, 2)
	if a == c {
		t.Errorf("coordinates outside rounding granularity share a key: %q", a)
	}
}

func TestBuildKeySeparatesMonths(t *testing.T) {
	t.Parallel()

	june := buildKey(21.4225, 39.8262, 2024, time.June, 2)
	july := buildKey(21.4225, 39.8262, 2024, time.July, 2)
	nextYear := buildKey(21.4225, 39.8262, 2025, time.June, 2)

	if june == july {
		t.Errorf("different months share a key: %q", june)
	}
	if june == nextYear {
		t.Errorf("different years share a key: %q", june)
	}
}

func TestIsExpired(t *testing.T) {
	t.Parallel()

	retention := 30 * 24 * time.Hour
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		age  time.Duration
		want bool
	}{
		{"fresh", time.Hour, false},
		{"just inside window", retention - time.Minute, false},
		{"just outside window", retention + time.Minute, true},
		{"very old", 90 * 24 * time.Hour, true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &MonthlyRecord{CachedAt: now.Add(-tt.age).UnixMilli()}
			if got := isExpired(rec, now, retention); got != tt.want {
				t.Errorf("isExpired(age=%v) = %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}
