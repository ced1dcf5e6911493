// Package scheduler runs the periodic background refresh: at a fixed
// interval it asks the orchestrator whether the cache for the last known
// location needs refreshing, and re-resolves the current month when it
// does.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
)

type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *timings.Service
	method    timings.Method
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a refresh scheduler for the given orchestrator.
func New(service *timings.Service, method timings.Method, interval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		method:    method,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 360
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.runOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	last, ok := s.service.LastKnown(ctx)
	if !ok {
		// No fetch has ever succeeded; nothing to proactively refresh.
		s.logger.Debug("refresh check skipped, no last known location")
		return
	}

	decision := s.service.ShouldRefresh(ctx, last.Latitude, last.Longitude)
	if !decision.Refresh {
		return
	}

	s.logger.Info("background refresh triggered",
		zap.String("reason", decision.Reason),
		zap.Float64("lat", last.Latitude),
		zap.Float64("lon", last.Longitude),
	)

	_, err := s.service.Month(ctx, timings.Query{
		Latitude:  last.Latitude,
		Longitude: last.Longitude,
		Method:    s.method,
		Date:      time.Now(),
	})
	if err != nil {
		s.logger.Warn("background refresh failed", zap.Error(err))
	}
}
