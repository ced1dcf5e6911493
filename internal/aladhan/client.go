// Package aladhan is the network fetcher: a client for the Al Adhan
// calendar endpoint that retrieves a full month of daily prayer-time
// records for a location and calculation method.
package aladhan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
)

const defaultBaseURL = "https://api.aladhan.com/v1"

type Config struct {
	// BaseURL is the API base URL. Defaults to the Al Adhan API; override
	// for testing with httptest.
	BaseURL string

	// Timeout bounds each request. The orchestrator layers its own fetch
	// timeout on top via context.
	Timeout time.Duration
}

// Client communicates with the Al Adhan prayer-times API. A circuit
// breaker trips open when the upstream keeps failing, so callers fail fast
// into the stale-cache path instead of burning full timeouts.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// NewClient creates an API client with sensible defaults.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 12 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "aladhan",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		breaker:    cb,
		logger:     logger,
	}
}

// MonthCalendar fetches one month of daily timings for the coordinates.
// It implements timings.Fetcher.
func (c *Client) MonthCalendar(ctx context.Context, lat, lon float64, year int, month time.Month, method timings.Method) ([]timings.DailyTimings, error) {
	params := url.Values{}
	params.Set("latitude", fmt.Sprintf("%f", lat))
	params.Set("longitude", fmt.Sprintf("%f", lon))
	params.Set("year", fmt.Sprintf("%d", year))
	params.Set("month", fmt.Sprintf("%d", int(month)))
	if method >= 0 {
		params.Set("method", fmt.Sprintf("%d", int(method)))
	}

	reqURL := fmt.Sprintf("%s/calendar?%s", c.baseURL, params.Encode())

	start := time.Now()
	apiResp, err := c.doRequest(ctx, reqURL)
	duration := time.Since(start)

	c.logger.Debug("aladhan calendar request",
		zap.Int("year", year),
		zap.Int("month", int(month)),
		zap.Duration("duration", duration),
		zap.Error(err),
	)

	if err != nil {
		return nil, err
	}

	days := make([]timings.DailyTimings, 0, len(apiResp.Data))
	for _, d := range apiResp.Data {
		days = append(days, timings.DailyTimings{
			Fajr:          d.Timings.Fajr,
			Sunrise:       d.Timings.Sunrise,
			Dhuhr:         d.Timings.Dhuhr,
			Asr:           d.Timings.Asr,
			Sunset:        d.Timings.Sunset,
			Maghrib:       d.Timings.Maghrib,
			Isha:          d.Timings.Isha,
			Imsak:         d.Timings.Imsak,
			Midnight:      d.Timings.Midnight,
			GregorianDate: d.Date.Gregorian.Date,
			HijriDate:     d.Date.Hijri.Date,
		})
	}

	return days, nil
}

func (c *Client) doRequest(ctx context.Context, reqURL string) (*calendarResponse, error) {
	result, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("API request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}

		var apiResp calendarResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
			return nil, fmt.Errorf("failed to decode API response: %w", err)
		}

		if apiResp.Code != http.StatusOK {
			return nil, fmt.Errorf("API error: code=%d status=%s", apiResp.Code, apiResp.Status)
		}
		if len(apiResp.Data) == 0 {
			return nil, fmt.Errorf("API response missing data array")
		}

		return &apiResp, nil
	})
	if err != nil {
		return nil, err
	}

	return result.(*calendarResponse), nil
}
