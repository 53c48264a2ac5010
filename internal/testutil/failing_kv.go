package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrStorageDown is the default error injected by FailingKV.
var ErrStorageDown = errors.New("storage unavailable")

type kvStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// FailingKV wraps a store and fails writes while Down is set. Reads pass
// through, so tests can observe exactly what reached durable storage.
type FailingKV struct {
	Inner kvStore
	Err   error

	mu     sync.Mutex
	down   bool
	writes int
}

func NewFailingKV(inner kvStore) *FailingKV {
	return &FailingKV{Inner: inner, Err: ErrStorageDown}
}

// SetDown toggles write failures.
func (f *FailingKV) SetDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

// Writes returns the number of successful Set calls.
func (f *FailingKV) Writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes
}

func (f *FailingKV) Get(ctx context.Context, key string) ([]byte, error) {
	return f.Inner.Get(ctx, key)
}

func (f *FailingKV) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return f.Err
	}
	if err := f.Inner.Set(ctx, key, value); err != nil {
		return err
	}
	f.mu.Lock()
	f.writes++
	f.mu.Unlock()
	return nil
}

func (f *FailingKV) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	down := f.down
	f.mu.Unlock()
	if down {
		return f.Err
	}
	return f.Inner.Delete(ctx, key)
}
