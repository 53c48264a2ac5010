package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeFlusher struct {
	mu      sync.Mutex
	dirty   bool
	fail    bool
	flushes int
}

func (f *fakeFlusher) Flush(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushes++
	if f.fail {
		return errors.New("disk full")
	}
	f.dirty = false
	return nil
}

func (f *fakeFlusher) Dirty() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dirty
}

func (f *fakeFlusher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flushes
}

func TestAutoSaver_FlushesDirtyState(t *testing.T) {
	f := &fakeFlusher{dirty: true}
	a := NewAutoSaver(f, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, a.Start())
	defer a.Stop()

	require.Eventually(t, func() bool { return !f.Dirty() }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, f.count())
}

func TestAutoSaver_SkipsCleanState(t *testing.T) {
	f := &fakeFlusher{}
	a := NewAutoSaver(f, 10*time.Millisecond, zap.NewNop())
	require.NoError(t, a.Start())
	time.Sleep(50 * time.Millisecond)
	a.Stop()

	assert.Equal(t, 0, f.count())
}

func TestAutoSaver_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	f := &fakeFlusher{dirty: true, fail: true}
	a := NewAutoSaver(f, 10*time.Millisecond, zap.New(core))
	require.NoError(t, a.Start())

	require.Eventually(t, func() bool { return logs.FilterMessage("autosave failed").Len() > 0 }, time.Second, 5*time.Millisecond)
	a.Stop()
	assert.True(t, f.Dirty())
}

func TestAutoSaver_StopFlushesOnce(t *testing.T) {
	f := &fakeFlusher{dirty: true}
	a := NewAutoSaver(f, time.Hour, zap.NewNop())
	a.Stop()
	assert.False(t, f.Dirty())
}

func TestAutoSaver_RejectsNonPositiveInterval(t *testing.T) {
	a := NewAutoSaver(&fakeFlusher{}, 0, zap.NewNop())
	assert.Error(t, a.Start())
}
