package service

import (
	"context"
	"errors"

	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/domain"
)

// RecordQuizAnswer records one answer and evaluates the answer badges.
// A storage failure is reported in PersistWarning rather than as an error.
func RecordQuizAnswer(ctx context.Context, progress ProgressService, correct bool) (*contract.AnswerResult, error) {
	res := &contract.AnswerResult{}

	p, err := progress.RecordAnswer(ctx, correct)
	if err != nil {
		if !errors.Is(err, ErrNotPersisted) {
			return nil, err
		}
		res.PersistWarning = err.Error()
	}
	badges, err := progress.EvaluateBadges(ctx, domain.Event{Category: domain.CategoryAnswer})
	if err != nil {
		if !errors.Is(err, ErrNotPersisted) {
			return nil, err
		}
		res.PersistWarning = err.Error()
	}
	if len(badges) > 0 {
		p = progress.GetProgress()
	}
	res.Progress = p
	res.NewBadges = badges
	return res, nil
}
