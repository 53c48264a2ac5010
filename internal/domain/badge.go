package domain

import (
	"fmt"
	"time"
)

// UnlockRule is a tagged rule variant. N is the threshold for counting rules;
// MinQuestions guards accuracy rules against tiny samples.
type UnlockRule struct {
	Kind         RuleKind
	N            int
	MinQuestions int
}

type Badge struct {
	ID          string
	Name        string
	Description string
	Emoji       string
	Rule        UnlockRule

	Earned   bool
	EarnedAt *time.Time
}

// Holds reports whether the rule is satisfied by the record and the
// triggering event. Unknown kinds never hold.
func (r UnlockRule) Holds(p *ProgressRecord, ev Event) bool {
	switch r.Kind {
	case RuleFirstTurn:
		return ev.Category == CategoryMessage && ev.MessageCount >= 1
	case RuleMessageCountAtLeast:
		return ev.Category == CategoryMessage && ev.MessageCount >= r.N
	case RuleLevelAtLeast:
		return p.Level() >= r.N
	case RuleStreakAtLeast:
		return p.Streak >= r.N
	case RuleCorrectAnswersAtLeast:
		return p.CorrectAnswers >= r.N
	case RuleAccuracyAtLeast:
		return p.TotalQuestions >= r.MinQuestions && p.TotalQuestions > 0 && p.Accuracy() >= r.N
	default:
		return false
	}
}

// RelevantTo reports whether events of the given category can unlock the rule.
func (r UnlockRule) RelevantTo(c EventCategory) bool {
	switch r.Kind {
	case RuleFirstTurn, RuleMessageCountAtLeast:
		return c == CategoryMessage
	case RuleCorrectAnswersAtLeast, RuleAccuracyAtLeast:
		return c == CategoryAnswer
	case RuleLevelAtLeast, RuleStreakAtLeast:
		return c == CategoryMessage || c == CategoryAnswer
	default:
		return false
	}
}

// DefaultCatalog returns the badge catalog in definition order, all unearned.
func DefaultCatalog() []Badge {
	return []Badge{
		{
			ID: "first-chat", Name: "First Hello", Emoji: "👋",
			Description: "Finish your first chat with your learning buddy",
			Rule:        UnlockRule{Kind: RuleFirstTurn},
		},
		{
			ID: "curious-mind", Name: "Curious Mind", Emoji: "🧠",
			Description: "Ask 10 questions in one session",
			Rule:        UnlockRule{Kind: RuleMessageCountAtLeast, N: 10},
		},
		{
			ID: "rising-star", Name: "Rising Star", Emoji: "🌟",
			Description: "Reach level 5",
			Rule:        UnlockRule{Kind: RuleLevelAtLeast, N: 5},
		},
		{
			ID: "on-fire", Name: "On Fire", Emoji: "🔥",
			Description: "Learn 3 days in a row",
			Rule:        UnlockRule{Kind: RuleStreakAtLeast, N: 3},
		},
		{
			ID: "quiz-whiz", Name: "Quiz Whiz", Emoji: "🏆",
			Description: "Get 10 quiz answers right",
			Rule:        UnlockRule{Kind: RuleCorrectAnswersAtLeast, N: 10},
		},
		{
			ID: "sharp-shooter", Name: "Sharp Shooter", Emoji: "🎯",
			Description: "Keep 80% accuracy over at least 10 questions",
			Rule:        UnlockRule{Kind: RuleAccuracyAtLeast, N: 80, MinQuestions: 10},
		},
	}
}

// ValidateCatalog rejects duplicate ids and unknown rule kinds.
func ValidateCatalog(badges []Badge) error {
	seen := make(map[string]bool, len(badges))
	for _, b := range badges {
		if b.ID == "" {
			return fmt.Errorf("badge with empty id")
		}
		if seen[b.ID] {
			return fmt.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = true
		if !ValidRuleKinds[b.Rule.Kind] {
			return fmt.Errorf("badge %q: unknown rule kind %q", b.ID, b.Rule.Kind)
		}
	}
	return nil
}
