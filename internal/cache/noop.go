package cache

import "context"

// NoopStore is the remote tier when no remote store is configured. Every
// read is a clean miss and every write is silently dropped, so running
// without a shared store is a first-class configuration rather than an
// error path.
type NoopStore struct{}

func NewNoopStore() NoopStore {
	return NoopStore{}
}

func (NoopStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (NoopStore) Set(context.Context, string, []byte) error {
	return nil
}

func (NoopStore) Delete(context.Context, string) error {
	return nil
}
