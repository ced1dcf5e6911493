// Package timings implements the monthly prayer-times cache: an
// orchestrator that resolves one calendar month of daily timings for a
// location by walking an in-process cache, a device-local store, an
// optional remote shared store, and finally the upstream calendar API,
// degrading to stale data when the network is unavailable.
package timings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/zaibaitech/asrar-mobile-sub003/internal/cache"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/geo"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/metrics"
	"github.com/zaibaitech/asrar-mobile-sub003/internal/netstate"
)

// ErrNoData is the only failure the orchestrator surfaces: no tier could
// produce a record and the network gave nothing. Everything below it is
// logged and recovered from internally.
var ErrNoData = errors.New("timings: no data available")

// Fetcher retrieves a full month of daily timing records from the upstream
// calendar source. Any HTTP failure, non-200 application status, or
// malformed payload must come back as an error.
type Fetcher interface {
	MonthCalendar(ctx context.Context, lat, lon float64, year int, month time.Month, method Method) ([]DailyTimings, error)
}

// Config holds the orchestrator tunables. The rounding precision and
// distance threshold were chosen empirically, not derived from prayer-time
// sensitivity; treat them as configuration.
type Config struct {
	// KeyPrecision is the number of decimal places coordinates are rounded
	// to when building cache keys. Two decimals is roughly 1 km.
	KeyPrecision int

	// DistanceThresholdKm bounds how far a stored record's exact
	// coordinates may be from the query before a local-store hit is
	// rejected. Also the drift threshold for refresh recommendations.
	DistanceThresholdKm float64

	// Retention is how long a record counts as fresh.
	Retention time.Duration

	// FetchTimeout bounds a single upstream calendar fetch.
	FetchTimeout time.Duration

	// PrefetchWindowDays: when the target date is within this many final
	// days of its month, the following month is prefetched.
	PrefetchWindowDays int
}

func (c Config) withDefaults() Config {
	if c.KeyPrecision <= 0 {
		c.KeyPrecision = 2
	}
	if c.DistanceThresholdKm <= 0 {
		c.DistanceThresholdKm = 5
	}
	if c.Retention <= 0 {
		c.Retention = 30 * 24 * time.Hour
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = 12 * time.Second
	}
	if c.PrefetchWindowDays <= 0 {
		c.PrefetchWindowDays = 7
	}
	return c
}

// Deps are the orchestrator's collaborators. Remote may be a no-op store;
// Now defaults to time.Now and exists so tests can control the clock.
type Deps struct {
	Fetcher Fetcher
	Local   cache.Store
	Remote  cache.Store
	Net     netstate.Oracle
	Logger  *zap.Logger
	Now     func() time.Time
}

// Service is the monthly cache orchestrator. Construct one per process and
// inject it; all mutable state (memory cache, in-flight fetches, last
// known location) is owned by the instance so tests get isolated state.
type Service struct {
	cfg     Config
	fetcher Fetcher
	local   cache.Store
	remote  cache.Store
	net     netstate.Oracle
	logger  *zap.Logger
	now     func() time.Time

	memory *recordCache
	flight singleflight.Group

	lastMu     sync.Mutex
	lastKnown  *LastKnownLocation
	lastLoaded bool
}

// NewService creates an orchestrator from its dependencies.
func NewService(cfg Config, deps Deps) *Service {
	s := &Service{
		cfg:     cfg.withDefaults(),
		fetcher: deps.Fetcher,
		local:   deps.Local,
		remote:  deps.Remote,
		net:     deps.Net,
		logger:  deps.Logger,
		now:     deps.Now,
	}
	if s.remote == nil {
		s.remote = cache.NewNoopStore()
	}
	if s.net == nil {
		s.net = netstate.Online
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.memory = newRecordCache(s.cfg.Retention / 4)
	return s
}

// Close releases the background resources of the in-memory tier.
func (s *Service) Close() {
	s.memory.close()
}

// Query identifies one month of timings: full-precision coordinates, the
// calculation method, and any date inside the wanted month.
type Query struct {
	Latitude  float64
	Longitude float64
	Method    Method
	Date      time.Time
}

// Month resolves the monthly record for the query, preferring fresher
// tiers: memory, local store, remote store, then a network fetch. Fetches
// are de-duplicated per cache key, so concurrent callers share one
// upstream call and observe the same outcome. When the device is offline
// or the fetch fails, the most recent expired record is served instead;
// only total unavailability returns ErrNoData.
func (s *Service) Month(ctx context.Context, q Query) (*MonthlyRecord, error) {
	year, month, _ := q.Date.Date()
	key := buildKey(q.Latitude, q.Longitude, year, month, s.cfg.KeyPrecision)
	now := s.now()

	if rec, ok := s.memory.get(key, now); ok && !isExpired(rec, now, s.cfg.Retention) {
		metrics.ServedTotal.WithLabelValues("memory").Inc()
		return rec, nil
	}

	// Expired records seen on the way down are kept as fallback for the
	// offline/fetch-failure path.
	var staleLocal, staleRemote *MonthlyRecord

	if rec := s.readStore(ctx, s.local, key); rec != nil {
		// The key collapses nearby locations; verify the unrounded stored
		// coordinates before trusting the hit.
		if s.closeEnough(rec, q) {
			if !isExpired(rec, now, s.cfg.Retention) {
				s.memory.put(key, rec, s.cfg.Retention)
				metrics.ServedTotal.WithLabelValues("local").Inc()
				return rec, nil
			}
			staleLocal = rec
		} else {
			s.logger.Info("local record rejected by distance check",
				zap.String("cache_key", key),
				zap.Float64("record_lat", rec.Latitude),
				zap.Float64("record_lon", rec.Longitude),
				zap.Float64("query_lat", q.Latitude),
				zap.Float64("query_lon", q.Longitude),
			)
		}
	}

	if rec := s.readStore(ctx, s.remote, key); rec != nil {
		if !isExpired(rec, now, s.cfg.Retention) {
			s.writeLocal(ctx, key, rec)
			s.memory.put(key, rec, s.cfg.Retention)
			metrics.ServedTotal.WithLabelValues("remote").Inc()
			return rec, nil
		}
		staleRemote = rec
	}

	if !s.net.Current().Connected {
		s.logger.Info("offline, degrading to stale cache", zap.String("cache_key", key))
		return s.degrade(key, staleLocal, staleRemote)
	}

	// Single flight per key: concurrent misses join the in-flight fetch
	// instead of issuing duplicates. The flight runs detached from the
	// first caller's cancellation so joiners are not failed by it.
	v, err, _ := s.flight.Do(key, func() (interface{}, error) {
		return s.fetchAndStore(context.WithoutCancel(ctx), q, year, month, key)
	})
	if err != nil {
		s.logger.Warn("calendar fetch failed, degrading to stale cache",
			zap.String("cache_key", key),
			zap.Error(err),
		)
		return s.degrade(key, staleLocal, staleRemote)
	}

	return v.(*MonthlyRecord), nil
}

// DayTimings resolves a single day's timings: the downstream consumer
// contract for "today's prayer times".
func (s *Service) DayTimings(ctx context.Context, q Query) (DailyTimings, error) {
	rec, err := s.Month(ctx, q)
	if err != nil {
		return DailyTimings{}, err
	}
	day, ok := rec.Day(q.Date)
	if !ok {
		// Cannot happen for a record that passed ingestion validation.
		return DailyTimings{}, ErrNoData
	}
	return day, nil
}

// LastKnown returns the most recent location a fetch succeeded for.
func (s *Service) LastKnown(ctx context.Context) (LastKnownLocation, bool) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	s.loadLastKnownLocked(ctx)
	if s.lastKnown == nil {
		return LastKnownLocation{}, false
	}
	return *s.lastKnown, true
}

func (s *Service) fetchAndStore(ctx context.Context, q Query, year int, month time.Month, key string) (*MonthlyRecord, error) {
	fctx, cancel := context.WithTimeout(ctx, s.cfg.FetchTimeout)
	defer cancel()

	start := time.Now()
	days, err := s.fetcher.MonthCalendar(fctx, q.Latitude, q.Longitude, year, month, q.Method)
	metrics.FetchLatencySeconds.Observe(time.Since(start).Seconds())

	if err != nil {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("calendar fetch: %w", err)
	}

	rec := &MonthlyRecord{
		Days:      days,
		CachedAt:  s.now().UnixMilli(),
		Year:      year,
		Month:     month,
		Latitude:  q.Latitude,
		Longitude: q.Longitude,
		Method:    q.Method,
	}
	if !rec.Valid() {
		metrics.FetchesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("calendar fetch: got %d days for %d-%02d, want %d",
			len(days), year, int(month), daysInMonth(year, month))
	}
	metrics.FetchesTotal.WithLabelValues("ok").Inc()
	metrics.ServedTotal.WithLabelValues("network").Inc()

	s.persist(ctx, key, rec)
	s.memory.put(key, rec, s.cfg.Retention)
	s.recordLastKnown(ctx, q.Latitude, q.Longitude)
	s.maybePrefetch(q, year, month)

	return rec, nil
}

// persist writes the record through to the local and remote stores. Both
// writes are best-effort: the caller still gets the fetched record even
// when nothing could be persisted.
func (s *Service) persist(ctx context.Context, key string, rec *MonthlyRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		s.logger.Warn("record marshal failed", zap.String("cache_key", key), zap.Error(err))
		return
	}

	if err := s.local.Set(ctx, key, data); err != nil {
		if errors.Is(err, cache.ErrDiskFull) {
			s.logger.Warn("local store full, serving without persisting",
				zap.String("cache_key", key))
		} else {
			s.logger.Warn("local store write failed",
				zap.String("cache_key", key), zap.Error(err))
		}
	}

	if err := s.remote.Set(ctx, key, data); err != nil {
		s.logger.Warn("remote store write skipped",
			zap.String("cache_key", key), zap.Error(err))
	}
}

func (s *Service) writeLocal(ctx context.Context, key string, rec *MonthlyRecord) {
	data, err := json.Marshal(rec)
	if err != nil {
		return
	}
	if err := s.local.Set(ctx, key, data); err != nil {
		s.logger.Warn("local store write failed",
			zap.String("cache_key", key), zap.Error(err))
	}
}

// maybePrefetch warms the following month when the target date sits in the
// final days of its own month. Fire-and-forget: failures are logged, never
// joined by the triggering call.
func (s *Service) maybePrefetch(q Query, year int, month time.Month) {
	remaining := daysInMonth(year, month) - q.Date.Day()
	if remaining >= s.cfg.PrefetchWindowDays {
		return
	}

	state := s.net.Current()
	if !state.Connected || state.Transport == netstate.TransportMetered {
		metrics.PrefetchesTotal.WithLabelValues("skipped").Inc()
		return
	}

	next := q
	next.Date = time.Date(year, month+1, 1, 0, 0, 0, 0, q.Date.Location())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("prefetch panic", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.FetchTimeout+5*time.Second)
		defer cancel()

		if _, err := s.Month(ctx, next); err != nil {
			metrics.PrefetchesTotal.WithLabelValues("error").Inc()
			s.logger.Warn("next month prefetch failed",
				zap.Int("year", next.Date.Year()),
				zap.Int("month", int(next.Date.Month())),
				zap.Error(err),
			)
			return
		}
		metrics.PrefetchesTotal.WithLabelValues("ok").Inc()
	}()
}

// degrade serves the freshest expired record available, local before
// remote. ErrNoData only when there is nothing at all.
func (s *Service) degrade(key string, staleLocal, staleRemote *MonthlyRecord) (*MonthlyRecord, error) {
	if staleLocal != nil {
		metrics.ServedTotal.WithLabelValues("stale_local").Inc()
		s.logger.Info("serving expired local record", zap.String("cache_key", key))
		return staleLocal, nil
	}
	if staleRemote != nil {
		metrics.ServedTotal.WithLabelValues("stale_remote").Inc()
		s.logger.Info("serving expired remote record", zap.String("cache_key", key))
		return staleRemote, nil
	}
	metrics.ServedTotal.WithLabelValues("none").Inc()
	return nil, ErrNoData
}

// readStore loads and validates one record from a store tier. Store errors
// and malformed or invariant-violating records all collapse to a miss.
func (s *Service) readStore(ctx context.Context, st cache.Store, key string) *MonthlyRecord {
	data, ok, err := st.Get(ctx, key)
	if err != nil || !ok {
		return nil
	}

	var rec MonthlyRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		s.logger.Warn("stored record unmarshal failed",
			zap.String("cache_key", key), zap.Error(err))
		return nil
	}
	if !rec.Valid() {
		s.logger.Warn("stored record violates month-length invariant",
			zap.String("cache_key", key),
			zap.Int("days", len(rec.Days)),
		)
		return nil
	}
	return &rec
}

func (s *Service) closeEnough(rec *MonthlyRecord, q Query) bool {
	d := geo.DistanceKm(
		geo.Coordinates{Latitude: rec.Latitude, Longitude: rec.Longitude},
		geo.Coordinates{Latitude: q.Latitude, Longitude: q.Longitude},
	)
	return d <= s.cfg.DistanceThresholdKm
}

func (s *Service) recordLastKnown(ctx context.Context, lat, lon float64) {
	loc := LastKnownLocation{
		Latitude:  lat,
		Longitude: lon,
		Timestamp: s.now().UnixMilli(),
	}

	s.lastMu.Lock()
	s.lastKnown = &loc
	s.lastLoaded = true
	s.lastMu.Unlock()

	data, err := json.Marshal(loc)
	if err != nil {
		return
	}
	if err := s.local.Set(ctx, lastLocationKey, data); err != nil {
		s.logger.Warn("last known location not persisted", zap.Error(err))
	}
}

// loadLastKnownLocked lazily loads the persisted marker. Callers hold lastMu.
func (s *Service) loadLastKnownLocked(ctx context.Context) {
	if s.lastLoaded {
		return
	}
	s.lastLoaded = true

	data, ok, err := s.local.Get(ctx, lastLocationKey)
	if err != nil || !ok {
		return
	}
	var loc LastKnownLocation
	if err := json.Unmarshal(data, &loc); err != nil {
		return
	}
	s.lastKnown = &loc
}
