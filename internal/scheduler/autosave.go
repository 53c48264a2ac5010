package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"
)

// Flusher persists pending state.
type Flusher interface {
	Flush(ctx context.Context) error
	Dirty() bool
}

// AutoSaver periodically retries writes that failed earlier.
type AutoSaver struct {
	scheduler *gocron.Scheduler
	flusher   Flusher
	logger    *zap.Logger
	interval  time.Duration
	timeout   time.Duration
}

// NewAutoSaver creates an auto-saver. It does nothing until Start.
func NewAutoSaver(flusher Flusher, interval time.Duration, logger *zap.Logger) *AutoSaver {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	return &AutoSaver{
		scheduler: s,
		flusher:   flusher,
		logger:    logger.Named("autosave"),
		interval:  interval,
		timeout:   10 * time.Second,
	}
}

// Start schedules the flush job and runs the scheduler in the background.
func (a *AutoSaver) Start() error {
	if a.interval <= 0 {
		return fmt.Errorf("autosave interval must be positive, got %s", a.interval)
	}
	if _, err := a.scheduler.Every(a.interval).Do(a.flushIfDirty); err != nil {
		return fmt.Errorf("scheduling autosave: %w", err)
	}
	a.scheduler.StartAsync()
	a.logger.Debug("autosave started", zap.Duration("interval", a.interval))
	return nil
}

// Stop halts the scheduler and makes one final flush attempt.
func (a *AutoSaver) Stop() {
	a.scheduler.Stop()
	a.flushIfDirty()
}

func (a *AutoSaver) flushIfDirty() {
	if !a.flusher.Dirty() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()
	if err := a.flusher.Flush(ctx); err != nil {
		a.logger.Warn("autosave failed", zap.Error(err))
		return
	}
	a.logger.Info("unsaved progress written")
}
