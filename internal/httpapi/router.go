package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/metrics"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/middleware"
)

func SetupRouter(r *chi.Mux, baseLogger *zap.Logger, h *TimingsHandler) {
	r.Use(metrics.Middleware)

	// base middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)

	r.Use(middleware.LoggingContext(baseLogger))
	r.Use(middleware.Recoverer())
	r.Use(middleware.Timeout(20 * time.Second))

	// routes
	r.Route("/v1/timings", func(r chi.Router) {
		r.Get("/day", h.Day)
		r.Get("/month", h.Month)
		r.Get("/refresh-check", h.RefreshCheck)
	})

	// health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metrics.Handler())
}
