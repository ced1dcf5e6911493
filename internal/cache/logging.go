package cache

import (
	"context"
	"time"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/metrics"
	"github.com/zaibaitech/asrar-mobile-sub003/pkg/logging"

	"go.uber.org/zap"
)

// LoggingStore wraps a Store with logging + metrics. The tier label tells
// hits on the local store apart from hits on the remote one.
type LoggingStore struct {
	inner Store
	tier  string
}

// NewLoggingStore returns a store that logs and records metrics.
func NewLoggingStore(inner Store, tier string) *LoggingStore {
	return &LoggingStore{inner: inner, tier: tier}
}

func (s *LoggingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := s.inner.Get(ctx, key)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	result := "miss"
	if err != nil {
		result = "error"
	} else if ok {
		result = "hit"
		metrics.StoreHitsTotal.WithLabelValues(s.tier).Inc()
	}

	fields := []zap.Field{
		zap.String("cache_tier", s.tier),
		zap.String("cache_key", key),
		zap.String("cache_result", result), // hit | miss | error
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Warn("cache_store_get", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_store_get", fields...)
	}

	return value, ok, err
}

func (s *LoggingStore) Set(ctx context.Context, key string, value []byte) error {
	start := time.Now()
	err := s.inner.Set(ctx, key, value)
	latencyMs := float64(time.Since(start).Microseconds()) / 1000.0

	logger := logging.L(ctx)

	fields := []zap.Field{
		zap.String("cache_tier", s.tier),
		zap.String("cache_key", key),
		zap.Int("size_bytes", len(value)),
		zap.Float64("latency_ms", latencyMs),
	}

	if err != nil {
		logger.Warn("cache_store_set", append(fields, zap.Error(err))...)
	} else {
		logger.Debug("cache_store_set", fields...)
	}

	return err
}

func (s *LoggingStore) Delete(ctx context.Context, key string) error {
	err := s.inner.Delete(ctx, key)
	if err != nil {
		logging.L(ctx).Warn("cache_store_delete",
			zap.String("cache_tier", s.tier),
			zap.String("cache_key", key),
			zap.Error(err),
		)
	}
	return err
}
