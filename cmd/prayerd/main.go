package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/aladhan"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/cache"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/config"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/httpapi"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/metrics"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/netstate"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/scheduler"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/timings"
	"github.com/zaibaitech/asrar-mobile-sub003/pkg/logging"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("prayerd exited with error: %v", err)
	}
}

func run() error {
	// ----- Logger -----
	logger := logging.DefaultLogger()
	defer logger.Sync()

	// ----- Metrics -----
	metrics.Register()

	// ----- Config -----
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger.Info("loaded config",
		zap.String("port", cfg.Port),
		zap.String("remote_backend", cfg.RemoteBackend),
		zap.String("aladhan_base_url", cfg.AladhanBaseURL),
		zap.Duration("retention", cfg.Retention),
		zap.Duration("fetch_timeout", cfg.FetchTimeout),
	)

	// ----- Local persistent store -----
	fileStore, err := cache.NewFileStore(cfg.CacheDir)
	if err != nil {
		return err
	}
	logger.Info("local store ready", zap.String("dir", fileStore.Dir()))

	var local cache.Store = cache.NewLoggingStore(fileStore, "local")

	// ----- Remote shared store (optional) -----
	// Remote misconfiguration is never fatal: pure local+network mode is a
	// supported configuration, so a failed ping only downgrades to the
	// no-op store.
	var redisClient *redis.Client
	if cfg.RemoteBackend == "redis" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			logger.Warn("redis unreachable, continuing without remote store",
				zap.String("addr", cfg.RedisAddr),
				zap.Error(err),
			)
			redisClient = nil
		} else {
			logger.Info("redis connection established", zap.String("addr", cfg.RedisAddr))
		}
	}

	remote := cache.NewRemoteStore(cache.RemoteConfig{
		Backend: cache.RemoteBackend(cfg.RemoteBackend),
		Prefix:  cfg.RedisPrefix,
		TTL:     cfg.Retention,
	}, redisClient)
	if redisClient != nil {
		remote = cache.NewLoggingStore(remote, "remote")
	}

	// ----- Connectivity monitor -----
	monitor := netstate.NewMonitor(cfg.ProbeAddr, cfg.ProbeInterval, logger)
	monitor.Start()
	defer monitor.Stop()

	// ----- Fetcher -----
	fetcher := aladhan.NewClient(aladhan.Config{
		BaseURL: cfg.AladhanBaseURL,
		Timeout: cfg.FetchTimeout,
	}, logger)

	// ----- Orchestrator -----
	svc := timings.NewService(timings.Config{
		KeyPrecision:        cfg.KeyPrecision,
		DistanceThresholdKm: cfg.DistanceThresholdKm,
		Retention:           cfg.Retention,
		FetchTimeout:        cfg.FetchTimeout,
		PrefetchWindowDays:  cfg.PrefetchWindowDays,
	}, timings.Deps{
		Fetcher: fetcher,
		Local:   local,
		Remote:  remote,
		Net:     monitor,
		Logger:  logger,
	})
	defer svc.Close()

	// ----- Background refresh -----
	sched := scheduler.New(svc, timings.Method(cfg.DefaultMethod), cfg.RefreshInterval, logger)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// ----- Router + HTTP server -----
	handler := httpapi.NewTimingsHandler(svc, timings.Method(cfg.DefaultMethod))

	r := chi.NewRouter()
	httpapi.SetupRouter(r, logger, handler)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	logger.Info("starting prayerd", zap.String("addr", srv.Addr))

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	// ----- Graceful shutdown -----
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	<-stop
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
		return err
	}

	logger.Info("server shutdown complete")
	return nil
}
