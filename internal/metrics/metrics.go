package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: raw hits per persistent store tier (local | remote).
	StoreHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timings_store_hits_total",
			Help: "Total number of cache store hits, by tier.",
		},
		[]string{"tier"},
	)

	// Counter: monthly records served, by the source that supplied them.
	ServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timings_served_total",
			Help: "Monthly records served, by source (memory, local, remote, network, stale_local, stale_remote, none).",
		},
		[]string{"source"},
	)

	// Counter: upstream calendar fetches, by result.
	FetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timings_fetches_total",
			Help: "Upstream calendar fetches, by result (ok, error).",
		},
		[]string{"result"},
	)

	// Histogram: upstream fetch latency in seconds.
	FetchLatencySeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "timings_fetch_latency_seconds",
			Help:    "Latency of upstream calendar fetches in seconds.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
	)

	// Counter: opportunistic next-month prefetches, by result.
	PrefetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "timings_prefetches_total",
			Help: "Opportunistic next-month prefetches, by result (ok, error, skipped).",
		},
		[]string{"result"},
	)

	// Histogram: HTTP latency in seconds.
	HTTPLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_latency_seconds",
			Help:    "HTTP request latency in seconds.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		StoreHitsTotal,
		ServedTotal,
		FetchesTotal,
		FetchLatencySeconds,
		PrefetchesTotal,
		HTTPLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures HTTP latency for each request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		HTTPLatencySeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
