package service

import (
	"context"

	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/domain"
)

// ProgressService owns the learner's gamification record and the badge
// catalog. Mutations persist before returning; a storage failure is reported
// as ErrNotPersisted while the in-memory record still advances.
type ProgressService interface {
	Load(ctx context.Context) error
	GetProgress() domain.ProgressRecord
	AddXP(ctx context.Context, amount int) (domain.ProgressRecord, error)
	RecordAnswer(ctx context.Context, correct bool) (domain.ProgressRecord, error)
	EarnBadge(ctx context.Context, id string, ev domain.Event) (*domain.Badge, error)
	EvaluateBadges(ctx context.Context, ev domain.Event) ([]domain.Badge, error)
	Reset(ctx context.Context) (domain.ProgressRecord, error)
	Flush(ctx context.Context) error
	Dirty() bool
}

// ChatService owns one conversation session and at most one in-flight turn.
type ChatService interface {
	SubmitTurn(ctx context.Context, text string) (*contract.TurnResult, error)
	History() []domain.Turn
	Busy() bool
	NewSession()
	SessionID() string
	Configured() bool
	// Reachable probes the completion endpoint.
	Reachable(ctx context.Context) bool
}
