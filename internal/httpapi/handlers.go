package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
	"github.com/zaibaitech/asrar-mobile-sub003/pkg/logging"
)

// TimingsService is the slice of the orchestrator the HTTP layer needs.
type TimingsService interface {
	Month(ctx context.Context, q timings.Query) (*timings.MonthlyRecord, error)
	DayTimings(ctx context.Context, q timings.Query) (timings.DailyTimings, error)
	ShouldRefresh(ctx context.Context, lat, lon float64) timings.Decision
}

// TimingsHandler serves the /v1/timings endpoints.
type TimingsHandler struct {
	Service       TimingsService
	DefaultMethod timings.Method
	Now           func() time.Time
}

func NewTimingsHandler(svc TimingsService, defaultMethod timings.Method) *TimingsHandler {
	return &TimingsHandler{
		Service:       svc,
		DefaultMethod: defaultMethod,
		Now:           time.Now,
	}
}

// Day handles GET /v1/timings/day?lat=&lon=&date=&method=.
func (h *TimingsHandler) Day(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	day, err := h.Service.DayTimings(ctx, q)
	if err != nil {
		h.writeServiceError(w, logger, err)
		return
	}

	h.writeJSON(w, struct {
		Date    string               `json:"date"`
		Timings timings.DailyTimings `json:"timings"`
	}{
		Date:    q.Date.Format("2006-01-02"),
		Timings: day,
	})
}

// Month handles GET /v1/timings/month?lat=&lon=&date=&method=.
func (h *TimingsHandler) Month(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	q, ok := h.parseQuery(w, r)
	if !ok {
		return
	}

	rec, err := h.Service.Month(ctx, q)
	if err != nil {
		h.writeServiceError(w, logger, err)
		return
	}

	h.writeJSON(w, rec)
}

// RefreshCheck handles GET /v1/timings/refresh-check?lat=&lon=.
func (h *TimingsHandler) RefreshCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	lat, lon, ok := h.parseCoordinates(w, r)
	if !ok {
		return
	}

	h.writeJSON(w, h.Service.ShouldRefresh(ctx, lat, lon))
}

func (h *TimingsHandler) parseQuery(w http.ResponseWriter, r *http.Request) (timings.Query, bool) {
	lat, lon, ok := h.parseCoordinates(w, r)
	if !ok {
		return timings.Query{}, false
	}

	date := h.Now()
	if v := r.URL.Query().Get("date"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_date")
			return timings.Query{}, false
		}
		date = parsed
	}

	method := h.DefaultMethod
	if v := r.URL.Query().Get("method"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid_method")
			return timings.Query{}, false
		}
		method = timings.Method(m)
	}

	return timings.Query{
		Latitude:  lat,
		Longitude: lon,
		Method:    method,
		Date:      date,
	}, true
}

func (h *TimingsHandler) parseCoordinates(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat, err := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_lat")
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid_lon")
		return 0, 0, false
	}
	return lat, lon, true
}

func (h *TimingsHandler) writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if errors.Is(err, timings.ErrNoData) {
		// The one hard failure: nothing cached and no network. The client
		// presents this as an explicit empty/retry state.
		h.writeError(w, http.StatusNotFound, "no_data")
		return
	}
	logger.Error("timings request failed", zap.Error(err))
	h.writeError(w, http.StatusInternalServerError, "internal_server_error")
}

func (h *TimingsHandler) writeError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

func (h *TimingsHandler) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
