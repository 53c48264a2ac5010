package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/repository"
	"go.uber.org/zap"
)

type progressService struct {
	mu      sync.Mutex
	store   repository.KVStore
	logger  *zap.Logger
	clock   func() time.Time
	catalog []domain.Badge
	record  *domain.ProgressRecord
	dirty   bool
}

// ProgressOption configures a progress service.
type ProgressOption func(*progressService)

// WithClock sets the time source used for streak days and badge timestamps.
func WithClock(clock func() time.Time) ProgressOption {
	return func(s *progressService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithCatalog replaces the default badge catalog.
func WithCatalog(catalog []domain.Badge) ProgressOption {
	return func(s *progressService) {
		s.catalog = catalog
	}
}

// NewProgressService returns a store holding a fresh record. Call Load to
// pick up previously persisted progress.
func NewProgressService(store repository.KVStore, logger *zap.Logger, opts ...ProgressOption) (ProgressService, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &progressService{
		store:   store,
		logger:  logger.Named("progress"),
		clock:   time.Now,
		catalog: domain.DefaultCatalog(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := domain.ValidateCatalog(s.catalog); err != nil {
		return nil, fmt.Errorf("badge catalog: %w", err)
	}
	s.record = domain.NewProgressRecord(s.catalog)
	return s, nil
}

func (s *progressService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.store.Get(ctx, ProgressKey)
	if errors.Is(err, repository.ErrNotFound) {
		s.record = domain.NewProgressRecord(s.catalog)
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading progress: %w", err)
	}
	rec, err := decodeProgress(data, s.catalog)
	if err != nil {
		s.logger.Error("stored progress rejected, starting fresh", zap.Error(err))
		s.record = domain.NewProgressRecord(s.catalog)
		return fmt.Errorf("loading progress: %w", err)
	}
	s.record = rec
	s.dirty = false
	s.logger.Debug("progress loaded",
		zap.Int("xp", rec.XP),
		zap.Int("streak", rec.Streak),
		zap.Int("badges_earned", rec.EarnedCount()))
	return nil
}

func (s *progressService) GetProgress() domain.ProgressRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

func (s *progressService) AddXP(ctx context.Context, amount int) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := domain.DateOf(s.clock())
	if err := s.record.AddXP(amount, today); err != nil {
		s.logger.Error("xp award rejected", zap.Int("amount", amount), zap.Error(err))
		return s.record.Clone(), err
	}
	return s.record.Clone(), s.persistLocked(ctx)
}

func (s *progressService) RecordAnswer(ctx context.Context, correct bool) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record.RecordAnswer(correct)
	return s.record.Clone(), s.persistLocked(ctx)
}

func (s *progressService) EarnBadge(ctx context.Context, id string, ev domain.Event) (*domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.record.BadgeIndex(id)
	if i < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBadge, id)
	}
	if !s.earnLocked(i, ev) {
		return nil, nil
	}
	b := s.record.Clone().Badges[i]
	return &b, s.persistLocked(ctx)
}

func (s *progressService) EvaluateBadges(ctx context.Context, ev domain.Event) ([]domain.Badge, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unlocked []int
	for i := range s.record.Badges {
		if !s.record.Badges[i].Rule.RelevantTo(ev.Category) {
			continue
		}
		if s.earnLocked(i, ev) {
			unlocked = append(unlocked, i)
		}
	}
	if len(unlocked) == 0 {
		return nil, nil
	}
	snapshot := s.record.Clone()
	out := make([]domain.Badge, 0, len(unlocked))
	for _, i := range unlocked {
		out = append(out, snapshot.Badges[i])
	}
	return out, s.persistLocked(ctx)
}

func (s *progressService) Reset(ctx context.Context) (domain.ProgressRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.record = domain.NewProgressRecord(s.catalog)
	s.logger.Info("progress reset")
	return s.record.Clone(), s.persistLocked(ctx)
}

func (s *progressService) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.dirty {
		return nil
	}
	return s.persistLocked(ctx)
}

func (s *progressService) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// earnLocked marks badge i earned when its rule holds. Already-earned badges
// are left untouched.
func (s *progressService) earnLocked(i int, ev domain.Event) bool {
	b := s.record.Badges[i]
	if b.Earned || !b.Rule.Holds(s.record, ev) {
		return false
	}
	if !s.record.MarkEarned(i, s.clock()) {
		return false
	}
	s.logger.Info("badge earned", zap.String("badge", b.ID))
	return true
}

// persistLocked writes the full record. On failure the record stays dirty so
// the next mutation or Flush retries.
func (s *progressService) persistLocked(ctx context.Context) error {
	data, err := encodeProgress(s.record)
	if err != nil {
		s.dirty = true
		return fmt.Errorf("%w: %v", ErrNotPersisted, err)
	}
	if err := s.store.Set(ctx, ProgressKey, data); err != nil {
		s.dirty = true
		s.logger.Warn("progress write failed", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrNotPersisted, err)
	}
	s.dirty = false
	return nil
}
