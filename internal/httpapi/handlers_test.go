package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
)

type stubService struct {
	monthFn   func(ctx context.Context, q timings.Query) (*timings.MonthlyRecord, error)
	dayFn     func(ctx context.Context, q timings.Query) (timings.DailyTimings, error)
	refreshFn func(ctx context.Context, lat, lon float64) timings.Decision
}

func (s *stubService) Month(ctx context.Context, q timings.Query) (*timings.MonthlyRecord, error) {
	return s.monthFn(ctx, q)
}

func (s *stubService) DayTimings(ctx context.Context, q timings.Query) (timings.DailyTimings, error) {
	return s.dayFn(ctx, q)
}

func (s *stubService) ShouldRefresh(ctx context.Context, lat, lon float64) timings.Decision {
	return s.refreshFn(ctx, lat, lon)
}

func TestDayHandlerSuccess(t *testing.T) {
	t.Parallel()

	var gotQuery timings.Query
	h := NewTimingsHandler(&stubService{
		dayFn: func(_ context.Context, q timings.Query) (timings.DailyTimings, error) {
			gotQuery = q
			return timings.DailyTimings{Fajr: "04:12", GregorianDate: "15-06-2024"}, nil
		},
	}, timings.MethodMWL)

	req := httptest.NewRequest(http.MethodGet, "/v1/timings/day?lat=21.4225&lon=39.8262&date=2024-06-15", nil)
	rec := httptest.NewRecorder()

	h.Day(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	if gotQuery.Latitude != 21.4225 || gotQuery.Longitude != 39.8262 {
		t.Errorf("coordinates not forwarded: %+v", gotQuery)
	}
	if gotQuery.Method != timings.MethodMWL {
		t.Errorf("default method not applied: %v", gotQuery.Method)
	}
	if !gotQuery.Date.Equal(time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date not parsed: %v", gotQuery.Date)
	}

	var body struct {
		Date    string               `json:"date"`
		Timings timings.DailyTimings `json:"timings"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Date != "2024-06-15" || body.Timings.Fajr != "04:12" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestDayHandlerMethodOverride(t *testing.T) {
	t.Parallel()

	var gotQuery timings.Query
	h := NewTimingsHandler(&stubService{
		dayFn: func(_ context.Context, q timings.Query) (timings.DailyTimings, error) {
			gotQuery = q
			return timings.DailyTimings{}, nil
		},
	}, timings.MethodMWL)

	req := httptest.NewRequest(http.MethodGet, "/v1/timings/day?lat=1&lon=2&method=4", nil)
	h.Day(httptest.NewRecorder(), req)

	if gotQuery.Method != timings.MethodUmmAlQura {
		t.Errorf("method override not applied: %v", gotQuery.Method)
	}
}

func TestDayHandlerBadParams(t *testing.T) {
	t.Parallel()

	h := NewTimingsHandler(&stubService{
		dayFn: func(context.Context, timings.Query) (timings.DailyTimings, error) {
			t.Errorf("service must not be called for invalid params")
			return timings.DailyTimings{}, nil
		},
	}, timings.MethodMWL)

	tests := []struct {
		name string
		url  string
	}{
		{"missing lat", "/v1/timings/day?lon=39.8"},
		{"bad lon", "/v1/timings/day?lat=21.4&lon=x"},
		{"bad date", "/v1/timings/day?lat=21.4&lon=39.8&date=June"},
		{"bad method", "/v1/timings/day?lat=21.4&lon=39.8&method=x"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := httptest.NewRecorder()
			h.Day(rec, httptest.NewRequest(http.MethodGet, tt.url, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}

func TestDayHandlerNoData(t *testing.T) {
	t.Parallel()

	h := NewTimingsHandler(&stubService{
		dayFn: func(context.Context, timings.Query) (timings.DailyTimings, error) {
			return timings.DailyTimings{}, timings.ErrNoData
		},
	}, timings.MethodMWL)

	rec := httptest.NewRecorder()
	h.Day(rec, httptest.NewRequest(http.MethodGet, "/v1/timings/day?lat=21.4&lon=39.8", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "no_data" {
		t.Errorf("error code = %q, want no_data", body["error"])
	}
}

func TestMonthHandlerSuccess(t *testing.T) {
	t.Parallel()

	record := &timings.MonthlyRecord{
		Days:  make([]timings.DailyTimings, 30),
		Year:  2024,
		Month: time.June,
	}
	h := NewTimingsHandler(&stubService{
		monthFn: func(context.Context, timings.Query) (*timings.MonthlyRecord, error) {
			return record, nil
		},
	}, timings.MethodMWL)

	rec := httptest.NewRecorder()
	h.Month(rec, httptest.NewRequest(http.MethodGet, "/v1/timings/month?lat=21.4&lon=39.8&date=2024-06-15", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got timings.MonthlyRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got.Days) != 30 || got.Year != 2024 {
		t.Errorf("unexpected record: year=%d days=%d", got.Year, len(got.Days))
	}
}

func TestRefreshCheckHandler(t *testing.T) {
	t.Parallel()

	h := NewTimingsHandler(&stubService{
		refreshFn: func(_ context.Context, lat, lon float64) timings.Decision {
			return timings.Decision{Refresh: true, Reason: timings.ReasonLocationDrift}
		},
	}, timings.MethodMWL)

	rec := httptest.NewRecorder()
	h.RefreshCheck(rec, httptest.NewRequest(http.MethodGet, "/v1/timings/refresh-check?lat=21.4&lon=39.8", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var got timings.Decision
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !got.Refresh || got.Reason != timings.ReasonLocationDrift {
		t.Errorf("unexpected decision: %+v", got)
	}
}
