package contract

import (
	"strconv"
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// BadgeView is the presentation shape of a badge.
type BadgeView struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Emoji       string     `json:"emoji"`
	Earned      bool       `json:"earned"`
	EarnedAt    *time.Time `json:"earned_at,omitempty"`
}

// ProgressView is the presentation shape of a progress record, with the
// derived values precomputed.
type ProgressView struct {
	XP               int         `json:"xp"`
	Level            int         `json:"level"`
	XPToNextLevel    int         `json:"xp_to_next_level"`
	Streak           int         `json:"streak"`
	LastActivityDate string      `json:"last_activity_date,omitempty"`
	TotalQuestions   int         `json:"total_questions"`
	CorrectAnswers   int         `json:"correct_answers"`
	Accuracy         int         `json:"accuracy"`
	Badges           []BadgeView `json:"badges"`
	Encouragements   []string    `json:"encouragements,omitempty"`
}

func NewBadgeView(b domain.Badge) BadgeView {
	return BadgeView{
		ID:          b.ID,
		Name:        b.Name,
		Description: b.Description,
		Emoji:       b.Emoji,
		Earned:      b.Earned,
		EarnedAt:    b.EarnedAt,
	}
}

func NewBadgeViews(badges []domain.Badge) []BadgeView {
	out := make([]BadgeView, 0, len(badges))
	for _, b := range badges {
		out = append(out, NewBadgeView(b))
	}
	return out
}

func NewProgressView(p domain.ProgressRecord) ProgressView {
	v := ProgressView{
		XP:             p.XP,
		Level:          p.Level(),
		XPToNextLevel:  p.XPToNextLevel(),
		Streak:         p.Streak,
		TotalQuestions: p.TotalQuestions,
		CorrectAnswers: p.CorrectAnswers,
		Accuracy:       p.Accuracy(),
		Badges:         NewBadgeViews(p.Badges),
		Encouragements: Encouragements(p),
	}
	if p.LastActivityDate != nil {
		v.LastActivityDate = p.LastActivityDate.String()
	}
	return v
}

// Encouragements returns the motivational lines shown on the progress screen.
func Encouragements(p domain.ProgressRecord) []string {
	var lines []string
	if p.Streak > 0 {
		lines = append(lines, "🔥 Amazing! You're on a "+strconv.Itoa(p.Streak)+"-day learning streak!")
	}
	if p.Level() >= 5 {
		lines = append(lines, "🌟 Wow! You've reached Level "+strconv.Itoa(p.Level())+"! You're becoming a learning superstar!")
	}
	if p.TotalQuestions > 0 && p.Accuracy() >= 80 {
		lines = append(lines, "🎯 Incredible accuracy! You're really mastering these concepts!")
	}
	lines = append(lines, "💡 Keep asking questions and exploring new topics to earn more XP and unlock badges!")
	return lines
}

// AnswerResult is the outcome of one recorded quiz answer.
type AnswerResult struct {
	Progress       domain.ProgressRecord
	NewBadges      []domain.Badge
	PersistWarning string
}

// AnswerResultView is the JSON shape of an AnswerResult.
type AnswerResultView struct {
	Progress       ProgressView `json:"progress"`
	NewBadges      []BadgeView  `json:"new_badges"`
	PersistWarning string       `json:"persist_warning,omitempty"`
}

func NewAnswerResultView(r *AnswerResult) AnswerResultView {
	return AnswerResultView{
		Progress:       NewProgressView(r.Progress),
		NewBadges:      NewBadgeViews(r.NewBadges),
		PersistWarning: r.PersistWarning,
	}
}
