package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is the service configuration, read from the environment with
// sensible defaults. The cache-key precision and distance threshold match
// the empirically chosen values of the mobile client; they are tunables,
// not invariants.
type Config struct {
	Port string

	// Remote shared store. Backend "none" runs in pure local+network mode,
	// which is a fully supported configuration.
	RemoteBackend string // "redis" or "none"
	RedisAddr     string
	RedisPrefix   string

	// CacheDir is the root of the local persistent store. Empty means the
	// OS user cache directory.
	CacheDir string

	AladhanBaseURL string
	FetchTimeout   time.Duration

	Retention           time.Duration
	KeyPrecision        int
	DistanceThresholdKm float64
	PrefetchWindowDays  int

	// DefaultMethod is the calculation method used when a request does not
	// specify one.
	DefaultMethod int

	// Background refresh loop.
	RefreshInterval time.Duration

	// Connectivity probe.
	ProbeAddr     string
	ProbeInterval time.Duration
}

// Load reads configuration from the environment. A .env file is honored
// when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getenvDefault("PORT", "8080"),
		RemoteBackend:  getenvDefault("REMOTE_CACHE_BACKEND", "none"),
		RedisAddr:      getenvDefault("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPrefix:    getenvDefault("REDIS_PREFIX", "prayerd"),
		CacheDir:       os.Getenv("CACHE_DIR"),
		AladhanBaseURL: getenvDefault("ALADHAN_BASE_URL", "https://api.aladhan.com/v1"),
		ProbeAddr:      getenvDefault("NET_PROBE_ADDR", "1.1.1.1:443"),
	}

	var err error
	if cfg.FetchTimeout, err = getenvDuration("FETCH_TIMEOUT", 12*time.Second); err != nil {
		return nil, err
	}
	if cfg.Retention, err = getenvDuration("CACHE_RETENTION", 30*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", 6*time.Hour); err != nil {
		return nil, err
	}
	if cfg.ProbeInterval, err = getenvDuration("NET_PROBE_INTERVAL", 30*time.Second); err != nil {
		return nil, err
	}

	cfg.KeyPrecision = getenvInt("CACHE_KEY_PRECISION", 2)
	cfg.DistanceThresholdKm = getenvFloat("DISTANCE_THRESHOLD_KM", 5)
	cfg.PrefetchWindowDays = getenvInt("PREFETCH_WINDOW_DAYS", 7)
	cfg.DefaultMethod = getenvInt("DEFAULT_METHOD", 3)

	if cfg.RemoteBackend != "redis" && cfg.RemoteBackend != "none" {
		return nil, fmt.Errorf("invalid REMOTE_CACHE_BACKEND %q: want redis or none", cfg.RemoteBackend)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
