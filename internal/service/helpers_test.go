package service

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/learnerbot/internal/llm"
	"github.com/alexanderramin/learnerbot/internal/repository"
	"github.com/alexanderramin/learnerbot/internal/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var day0 = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

// setupProgress returns a loaded progress service over an in-memory SQLite
// store, plus the store and clock driving it.
func setupProgress(t *testing.T) (ProgressService, repository.KVStore, *testutil.Clock) {
	t.Helper()
	store := repository.NewSQLiteKVStore(testutil.NewTestDB(t))
	clock := testutil.NewClock(day0)
	svc := newProgressOn(t, store, clock)
	return svc, store, clock
}

func newProgressOn(t *testing.T, store repository.KVStore, clock *testutil.Clock) ProgressService {
	t.Helper()
	svc, err := NewProgressService(store, zap.NewNop(), WithClock(clock.Now))
	require.NoError(t, err)
	require.NoError(t, svc.Load(context.Background()))
	return svc
}

func setupChat(t *testing.T, completer llm.Completer, opts ...ChatOption) (ChatService, ProgressService) {
	t.Helper()
	progress, _, _ := setupProgress(t)
	return NewChatService(completer, progress, zap.NewNop(), opts...), progress
}
