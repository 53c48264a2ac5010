package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// ProgressKey is the storage key the progress service owns.
const ProgressKey = "learnerbot:progress"

const progressDocVersion = 1

type progressDocument struct {
	Version          int          `json:"v"`
	XP               int          `json:"xp"`
	Streak           int          `json:"streak"`
	LastActivityDate string       `json:"last_activity_date,omitempty"`
	TotalQuestions   int          `json:"total_questions"`
	CorrectAnswers   int          `json:"correct_answers"`
	Badges           []badgeState `json:"badges"`
}

type badgeState struct {
	ID       string     `json:"id"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

func encodeProgress(p *domain.ProgressRecord) ([]byte, error) {
	doc := progressDocument{
		Version:        progressDocVersion,
		XP:             p.XP,
		Streak:         p.Streak,
		TotalQuestions: p.TotalQuestions,
		CorrectAnswers: p.CorrectAnswers,
		Badges:         make([]badgeState, 0, len(p.Badges)),
	}
	if p.LastActivityDate != nil {
		doc.LastActivityDate = p.LastActivityDate.String()
	}
	for _, b := range p.Badges {
		doc.Badges = append(doc.Badges, badgeState{ID: b.ID, Earned: b.Earned, EarnedAt: b.EarnedAt})
	}
	return json.Marshal(doc)
}

// decodeProgress rebuilds a record from stored bytes. Badge metadata always
// comes from catalog; only earned state is merged by id and stored ids that
// are no longer in the catalog are dropped.
func decodeProgress(data []byte, catalog []domain.Badge) (*domain.ProgressRecord, error) {
	var doc progressDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	if doc.Version != progressDocVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrCorruptRecord, doc.Version)
	}

	p := domain.NewProgressRecord(catalog)
	p.XP = doc.XP
	p.Streak = doc.Streak
	p.TotalQuestions = doc.TotalQuestions
	p.CorrectAnswers = doc.CorrectAnswers
	if doc.LastActivityDate != "" {
		d, err := domain.ParseDate(doc.LastActivityDate)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptRecord, err)
		}
		p.LastActivityDate = &d
	}
	for _, st := range doc.Badges {
		i := p.BadgeIndex(st.ID)
		if i < 0 || !st.Earned {
			continue
		}
		at := time.Time{}
		if st.EarnedAt != nil {
			at = *st.EarnedAt
		}
		p.MarkEarned(i, at)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
