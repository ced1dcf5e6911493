package cache

import (
	"time"

	"github.com/redis/go-redis/v9"
)

type RemoteBackend string

const (
	RemoteBackendNone  RemoteBackend = "none"
	RemoteBackendRedis RemoteBackend = "redis"
)

type RemoteConfig struct {
	Backend RemoteBackend
	Prefix  string
	TTL     time.Duration
}

// NewRemoteStore selects the remote tier implementation. Anything other
// than an explicit redis backend gets the no-op store.
func NewRemoteStore(cfg RemoteConfig, redisClient *redis.Client) Store {
	switch cfg.Backend {
	case RemoteBackendRedis:
		if redisClient == nil {
			return NewNoopStore()
		}
		return NewRedisStore(redisClient, RedisConfig{
			Prefix: cfg.Prefix,
			TTL:    cfg.TTL,
		})
	default:
		return NewNoopStore()
	}
}
