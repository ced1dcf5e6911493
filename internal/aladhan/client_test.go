package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
)

func calendarPayload(days int) calendarResponse {
	resp := calendarResponse{Code: 200, Status: "OK"}
	for i := 0; i < days; i++ {
		resp.Data = append(resp.Data, calendarDay{
			Timings: dayTimings{
				Fajr:     "04:12 (+03)",
				Sunrise:  "05:38",
				Dhuhr:    "12:21",
				Asr:      "15:43",
				Sunset:   "19:05",
				Maghrib:  "19:05",
				Isha:     "20:35",
				Imsak:    "04:02",
				Midnight: "00:21",
			},
			Date: dateInfo{
				Gregorian: gregorianDate{Date: fmt.Sprintf("%02d-06-2024", i+1)},
				Hijri:     hijriDate{Date: fmt.Sprintf("%02d-12-1445", i+1)},
			},
		})
	}
	return resp
}

func TestMonthCalendarSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calendar" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		gotQuery = map[string]string{
			"latitude":  r.URL.Query().Get("latitude"),
			"longitude": r.URL.Query().Get("longitude"),
			"year":      r.URL.Query().Get("year"),
			"month":     r.URL.Query().Get("month"),
			"method":    r.URL.Query().Get("method"),
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(calendarPayload(30)); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

	days, err := client.MonthCalendar(context.Background(), 21.4225, 39.8262, 2024, time.June, timings.MethodMWL)
	if err != nil {
		t.Fatalf("MonthCalendar: %v", err)
	}

	if gotQuery["year"] != "2024" || gotQuery["month"] != "6" || gotQuery["method"] != "3" {
		t.Errorf("unexpected query params: %v", gotQuery)
	}
	if !strings.HasPrefix(gotQuery["latitude"], "21.4225") {
		t.Errorf("unexpected latitude param: %s", gotQuery["latitude"])
	}

	if len(days) != 30 {
		t.Fatalf("expected 30 days, got %d", len(days))
	}
	if days[0].Fajr != "04:12 (+03)" {
		t.Errorf("fajr not passed through: %q", days[0].Fajr)
	}
	if days[14].GregorianDate != "15-06-2024" {
		t.Errorf("gregorian date mapping: %q", days[14].GregorianDate)
	}
	if days[14].HijriDate != "15-12-1445" {
		t.Errorf("hijri date mapping: %q", days[14].HijriDate)
	}
}

func TestMonthCalendarHTTPError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

	_, err := client.MonthCalendar(context.Background(), 21.4225, 39.8262, 2024, time.June, timings.MethodMWL)
	if err == nil || !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected status error, got %v", err)
	}
}

func TestMonthCalendarApplicationError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(calendarResponse{Code: 400, Status: "Bad Request"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

	_, err := client.MonthCalendar(context.Background(), 21.4225, 39.8262, 2024, time.June, timings.MethodMWL)
	if err == nil || !strings.Contains(err.Error(), "code=400") {
		t.Fatalf("expected application error, got %v", err)
	}
}

func TestMonthCalendarMissingData(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(calendarResponse{Code: 200, Status: "OK"})
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

	_, err := client.MonthCalendar(context.Background(), 21.4225, 39.8262, 2024, time.June, timings.MethodMWL)
	if err == nil || !strings.Contains(err.Error(), "missing data") {
		t.Fatalf("expected missing-data error, got %v", err)
	}
}

func TestMonthCalendarMalformedPayload(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code": "not a number"`))
	}))
	defer srv.Close()

	client := NewClient(Config{BaseURL: srv.URL}, zaptest.NewLogger(t))

	_, err := client.MonthCalendar(context.Background(), 21.4225, 39.8262, 2024, time.June, timings.MethodMWL)
	if err == nil || !strings.Contains(err.Error(), "decode") {
		t.Fatalf("expected decode error, got %v", err)
	}
}
