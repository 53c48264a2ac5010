package domain

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// EventCategory classifies the activity that triggers a badge evaluation.
type EventCategory string

const (
	CategoryMessage EventCategory = "message"
	CategoryAnswer  EventCategory = "answer"
)

// RuleKind is the closed set of badge unlock rule variants.
type RuleKind string

const (
	RuleFirstTurn             RuleKind = "first_turn"
	RuleMessageCountAtLeast   RuleKind = "message_count_at_least"
	RuleLevelAtLeast          RuleKind = "level_at_least"
	RuleStreakAtLeast         RuleKind = "streak_at_least"
	RuleCorrectAnswersAtLeast RuleKind = "correct_answers_at_least"
	RuleAccuracyAtLeast       RuleKind = "accuracy_at_least"
)

// ValidRuleKinds is the canonical set of accepted rule kinds.
var ValidRuleKinds = map[RuleKind]bool{
	RuleFirstTurn:             true,
	RuleMessageCountAtLeast:   true,
	RuleLevelAtLeast:          true,
	RuleStreakAtLeast:         true,
	RuleCorrectAnswersAtLeast: true,
	RuleAccuracyAtLeast:       true,
}
