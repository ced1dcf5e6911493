package timings

import (
	"testing"
	"time"
)

func TestRecordCacheTTL(t *testing.T) {
	c := newRecordCache(10 * time.Millisecond)
	defer c.close()

	rec := &MonthlyRecord{Year: 2024, Month: time.June}
	c.put("k", rec, 20*time.Millisecond)

	got, hit := c.get("k", time.Now())
	if !hit {
		t.Fatalf("expected hit immediately after put")
	}
	if got != rec {
		t.Fatalf("expected same record back")
	}

	time.Sleep(30 * time.Millisecond)

	if _, hit := c.get("k", time.Now()); hit {
		t.Fatalf("expected miss after TTL expiry")
	}
}

func TestRecordCachePutZeroTTLDeletes(t *testing.T) {
	c := newRecordCache(time.Minute)
	defer c.close()

	c.put("k", &MonthlyRecord{}, time.Minute)
	if c.len() != 1 {
		t.Fatalf("expected 1 entry, got %d", c.len())
	}

	c.put("k", &MonthlyRecord{}, 0)
	if c.len() != 0 {
		t.Fatalf("expected entry removed on zero TTL, got %d", c.len())
	}
}
