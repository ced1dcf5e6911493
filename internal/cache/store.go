package cache

import (
	"context"
	"errors"
)

// ErrDiskFull marks a persistent-store write that failed because the device
// is out of space. Callers keep serving the in-memory result and skip
// persistence.
var ErrDiskFull = errors.New("cache: disk full")

// Store is a durable key/value tier holding one serialized monthly record
// per (location, year, month) key.
//
// Implemented by the file-backed local store and the Redis-backed remote
// store; a no-op implementation stands in when the remote tier is
// unconfigured.
type Store interface {
	// Get returns the stored bytes for key, a hit flag, and an error.
	// A clean miss is (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error
}
