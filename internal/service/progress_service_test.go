package service

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
	"github.com/alexanderramin/learnerbot/internal/repository"
	"github.com/alexanderramin/learnerbot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAddXP_AccumulatesAndDerivesLevel(t *testing.T) {
	svc, _, _ := setupProgress(t)
	ctx := context.Background()

	_, err := svc.AddXP(ctx, 30)
	require.NoError(t, err)
	p, err := svc.AddXP(ctx, 80)
	require.NoError(t, err)

	assert.Equal(t, 110, p.XP)
	assert.Equal(t, 2, p.Level())
	assert.Equal(t, 90, p.XPToNextLevel())
	assert.Equal(t, p, svc.GetProgress())
}

func TestAddXP_RejectsNonPositiveAmount(t *testing.T) {
	svc, _, _ := setupProgress(t)
	ctx := context.Background()

	for _, amount := range []int{0, -5} {
		_, err := svc.AddXP(ctx, amount)
		require.ErrorIs(t, err, domain.ErrInvariant)
	}
	p := svc.GetProgress()
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 0, p.Streak)
	assert.Nil(t, p.LastActivityDate)
}

func TestAddXP_RejectsOverflowAndKeepsStoredRecord(t *testing.T) {
	svc, store, clock := setupProgress(t)
	ctx := context.Background()

	for range 5 {
		_, err := svc.AddXP(ctx, 10)
		require.NoError(t, err)
	}

	p, err := svc.AddXP(ctx, math.MaxInt)
	require.ErrorIs(t, err, domain.ErrInvariant)
	assert.Equal(t, 50, p.XP)
	assert.Equal(t, 50, svc.GetProgress().XP)
	assert.False(t, svc.Dirty())

	reloaded := newProgressOn(t, store, clock)
	assert.Equal(t, 50, reloaded.GetProgress().XP)
	assert.Equal(t, 1, reloaded.GetProgress().Streak)
}

func TestAddXP_StreakAcrossDays(t *testing.T) {
	svc, _, clock := setupProgress(t)
	ctx := context.Background()

	p, err := svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak, "first activity starts the streak")

	clock.AdvanceDays(1)
	p, err = svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak, "next day extends the streak")

	clock.Set(clock.Now().Add(3 * time.Hour))
	p, err = svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Streak, "same day leaves the streak alone")

	clock.AdvanceDays(3)
	p, err = svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak, "a gap restarts the streak")
	require.NotNil(t, p.LastActivityDate)
	assert.Equal(t, domain.DateOf(clock.Now()), *p.LastActivityDate)
}

func TestAddXP_ClockMovedBackwardsRestartsStreak(t *testing.T) {
	svc, _, clock := setupProgress(t)
	ctx := context.Background()

	_, err := svc.AddXP(ctx, 10)
	require.NoError(t, err)
	clock.AdvanceDays(1)
	_, err = svc.AddXP(ctx, 10)
	require.NoError(t, err)

	clock.AdvanceDays(-5)
	p, err := svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Streak)
}

func TestRecordAnswer_AccuracyAndSharpShooter(t *testing.T) {
	svc, _, _ := setupProgress(t)
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.RecordAnswer(ctx, true)
		require.NoError(t, err)
	}
	for i := 0; i < 2; i++ {
		_, err := svc.RecordAnswer(ctx, false)
		require.NoError(t, err)
	}

	p := svc.GetProgress()
	assert.Equal(t, 10, p.TotalQuestions)
	assert.Equal(t, 8, p.CorrectAnswers)
	assert.Equal(t, 80, p.Accuracy())

	unlocked, err := svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryAnswer})
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "sharp-shooter", unlocked[0].ID)
	assert.True(t, unlocked[0].Earned)
}

func TestEarnBadge_SecondCallIsNoOp(t *testing.T) {
	svc, _, clock := setupProgress(t)
	ctx := context.Background()
	ev := domain.Event{Category: domain.CategoryMessage, MessageCount: 1}

	first, err := svc.EarnBadge(ctx, "first-chat", ev)
	require.NoError(t, err)
	require.NotNil(t, first)
	require.NotNil(t, first.EarnedAt)
	earnedAt := *first.EarnedAt

	clock.AdvanceDays(2)
	second, err := svc.EarnBadge(ctx, "first-chat", ev)
	require.NoError(t, err)
	assert.Nil(t, second)

	p := svc.GetProgress()
	b := p.Badges[p.BadgeIndex("first-chat")]
	assert.True(t, b.Earned)
	assert.Equal(t, earnedAt, *b.EarnedAt)
	assert.Equal(t, 1, p.EarnedCount())
}

func TestEarnBadge_RuleNotSatisfied(t *testing.T) {
	svc, _, _ := setupProgress(t)

	b, err := svc.EarnBadge(context.Background(), "rising-star", domain.Event{Category: domain.CategoryMessage, MessageCount: 1})
	require.NoError(t, err)
	assert.Nil(t, b)
	p := svc.GetProgress()
	assert.Equal(t, 0, p.EarnedCount())
}

func TestEarnBadge_UnknownID(t *testing.T) {
	svc, _, _ := setupProgress(t)

	_, err := svc.EarnBadge(context.Background(), "moon-walker", domain.Event{Category: domain.CategoryMessage})
	require.ErrorIs(t, err, ErrUnknownBadge)
}

func TestEvaluateBadges_OnlyRelevantCategory(t *testing.T) {
	svc, _, _ := setupProgress(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.RecordAnswer(ctx, true)
		require.NoError(t, err)
	}

	unlocked, err := svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryMessage, MessageCount: 1})
	require.NoError(t, err)
	require.Len(t, unlocked, 1)
	assert.Equal(t, "first-chat", unlocked[0].ID, "answer badges are not evaluated on message events")

	unlocked, err = svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryAnswer})
	require.NoError(t, err)
	ids := make([]string, 0, len(unlocked))
	for _, b := range unlocked {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"quiz-whiz", "sharp-shooter"}, ids, "catalog order")
}

func TestEvaluateBadges_PersistsOncePerCall(t *testing.T) {
	store := testutil.NewFailingKV(repository.NewMemoryKVStore())
	svc := newProgressOn(t, store, testutil.NewClock(day0))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		_, err := svc.RecordAnswer(ctx, true)
		require.NoError(t, err)
	}
	before := store.Writes()

	unlocked, err := svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryAnswer})
	require.NoError(t, err)
	assert.Len(t, unlocked, 2)
	assert.Equal(t, before+1, store.Writes())

	unlocked, err = svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryAnswer})
	require.NoError(t, err)
	assert.Empty(t, unlocked)
	assert.Equal(t, before+1, store.Writes(), "nothing new, nothing written")
}

func TestProgress_SurvivesRestart(t *testing.T) {
	svc, store, clock := setupProgress(t)
	ctx := context.Background()

	_, err := svc.AddXP(ctx, 40)
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, true)
	require.NoError(t, err)
	_, err = svc.EarnBadge(ctx, "first-chat", domain.Event{Category: domain.CategoryMessage, MessageCount: 1})
	require.NoError(t, err)

	reloaded := newProgressOn(t, store, clock)
	assert.Equal(t, svc.GetProgress(), reloaded.GetProgress())
}

func TestLoad_MergesEarnedStateByID(t *testing.T) {
	store := repository.NewMemoryKVStore()
	ctx := context.Background()
	doc := `{"v":1,"xp":250,"streak":2,"last_activity_date":"2026-03-09",
		"total_questions":4,"correct_answers":3,
		"badges":[{"id":"retired-badge","earned":true},{"id":"on-fire","earned":false},
		{"id":"first-chat","earned":true,"earned_at":"2026-03-01T10:00:00Z"}]}`
	require.NoError(t, store.Set(ctx, ProgressKey, []byte(doc)))

	svc := newProgressOn(t, store, testutil.NewClock(day0))
	p := svc.GetProgress()

	assert.Equal(t, 250, p.XP)
	assert.Equal(t, 3, p.Level())
	assert.Equal(t, "2026-03-09", p.LastActivityDate.String())
	require.Len(t, p.Badges, len(domain.DefaultCatalog()))
	assert.Equal(t, -1, p.BadgeIndex("retired-badge"))
	assert.True(t, p.Badges[p.BadgeIndex("first-chat")].Earned)
	assert.Equal(t, "First Hello", p.Badges[p.BadgeIndex("first-chat")].Name, "metadata comes from the catalog")
	assert.Equal(t, 1, p.EarnedCount())

	// Next day extends the loaded streak.
	clock := testutil.NewClock(day0)
	svc = newProgressOn(t, store, clock)
	p, err := svc.AddXP(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Streak)
}

func TestLoad_CorruptRecordStartsFresh(t *testing.T) {
	cases := map[string]string{
		"not json":         `{"v":1,`,
		"unknown version":  `{"v":7}`,
		"broken invariant": `{"v":1,"total_questions":1,"correct_answers":5}`,
		"negative xp":      `{"v":1,"xp":-10}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			store := repository.NewMemoryKVStore()
			ctx := context.Background()
			require.NoError(t, store.Set(ctx, ProgressKey, []byte(doc)))

			svc, err := NewProgressService(store, zap.NewNop())
			require.NoError(t, err)
			err = svc.Load(ctx)
			require.Error(t, err)
			assert.True(t, isCorruptOrInvariant(err), "unexpected error %v", err)
			assert.Equal(t, 0, svc.GetProgress().XP)
		})
	}
}

func isCorruptOrInvariant(err error) bool {
	return errors.Is(err, ErrCorruptRecord) || errors.Is(err, domain.ErrInvariant)
}

func TestStorageFailure_StateAdvancesAndRetries(t *testing.T) {
	store := testutil.NewFailingKV(repository.NewMemoryKVStore())
	clock := testutil.NewClock(day0)
	svc := newProgressOn(t, store, clock)
	ctx := context.Background()

	store.SetDown(true)
	p, err := svc.AddXP(ctx, 10)
	require.ErrorIs(t, err, ErrNotPersisted)
	require.ErrorIs(t, err, testutil.ErrStorageDown)
	assert.Equal(t, 10, p.XP, "in-memory state still advances")
	assert.True(t, svc.Dirty())

	require.ErrorIs(t, svc.Flush(ctx), ErrNotPersisted)
	assert.True(t, svc.Dirty())

	store.SetDown(false)
	require.NoError(t, svc.Flush(ctx))
	assert.False(t, svc.Dirty())

	reloaded := newProgressOn(t, store, clock)
	assert.Equal(t, 10, reloaded.GetProgress().XP)
}

func TestStorageFailure_NextMutationRetries(t *testing.T) {
	store := testutil.NewFailingKV(repository.NewMemoryKVStore())
	clock := testutil.NewClock(day0)
	svc := newProgressOn(t, store, clock)
	ctx := context.Background()

	store.SetDown(true)
	_, err := svc.RecordAnswer(ctx, true)
	require.ErrorIs(t, err, ErrNotPersisted)

	store.SetDown(false)
	_, err = svc.RecordAnswer(ctx, false)
	require.NoError(t, err)
	assert.False(t, svc.Dirty())

	p := newProgressOn(t, store, clock).GetProgress()
	assert.Equal(t, 2, p.TotalQuestions)
	assert.Equal(t, 1, p.CorrectAnswers)
}

func TestFlush_CleanRecordDoesNotWrite(t *testing.T) {
	store := testutil.NewFailingKV(repository.NewMemoryKVStore())
	svc := newProgressOn(t, store, testutil.NewClock(day0))

	require.NoError(t, svc.Flush(context.Background()))
	assert.Equal(t, 0, store.Writes())
}

func TestReset_ClearsEverything(t *testing.T) {
	svc, store, clock := setupProgress(t)
	ctx := context.Background()

	_, err := svc.AddXP(ctx, 500)
	require.NoError(t, err)
	_, err = svc.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryMessage, MessageCount: 1})
	require.NoError(t, err)
	earned := svc.GetProgress()
	require.Positive(t, earned.EarnedCount())

	p, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, p.XP)
	assert.Equal(t, 1, p.Level())
	assert.Equal(t, 0, p.Streak)
	assert.Nil(t, p.LastActivityDate)
	assert.Equal(t, 0, p.EarnedCount())
	assert.Len(t, p.Badges, len(domain.DefaultCatalog()))

	assert.Equal(t, p, newProgressOn(t, store, clock).GetProgress())
}

func TestGetProgress_ReturnsDetachedCopy(t *testing.T) {
	svc, _, _ := setupProgress(t)
	ctx := context.Background()
	_, err := svc.EarnBadge(ctx, "first-chat", domain.Event{Category: domain.CategoryMessage, MessageCount: 1})
	require.NoError(t, err)

	p := svc.GetProgress()
	p.XP = 9999
	p.Badges[0].Earned = false
	p.Badges[0].EarnedAt = nil

	fresh := svc.GetProgress()
	assert.Equal(t, 0, fresh.XP)
	assert.True(t, fresh.Badges[0].Earned)
	assert.NotNil(t, fresh.Badges[0].EarnedAt)
}

func TestNewProgressService_RejectsBadCatalog(t *testing.T) {
	catalog := append(domain.DefaultCatalog(), domain.DefaultCatalog()[0])
	_, err := NewProgressService(repository.NewMemoryKVStore(), zap.NewNop(), WithCatalog(catalog))
	require.Error(t, err)
}

func TestProgress_ConcurrentWritersSerialize(t *testing.T) {
	svc, store, clock := setupProgress(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := svc.AddXP(ctx, 10)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := svc.RecordAnswer(ctx, true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	p := svc.GetProgress()
	assert.Equal(t, 250, p.XP)
	assert.Equal(t, 25, p.TotalQuestions)
	assert.Equal(t, p, newProgressOn(t, store, clock).GetProgress())
}
