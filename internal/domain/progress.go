package domain

import (
	"fmt"
	"math"
	"time"
)

// XPPerLevel is the XP span of one level.
const XPPerLevel = 100

// ProgressRecord is the learner's gamification state. Level is always
// derived from XP and never stored.
type ProgressRecord struct {
	XP               int
	Streak           int
	LastActivityDate *Date
	TotalQuestions   int
	CorrectAnswers   int
	Badges           []Badge
}

// NewProgressRecord returns a zeroed record carrying a copy of the catalog.
func NewProgressRecord(catalog []Badge) *ProgressRecord {
	badges := make([]Badge, len(catalog))
	copy(badges, catalog)
	for i := range badges {
		badges[i].Earned = false
		badges[i].EarnedAt = nil
	}
	return &ProgressRecord{Badges: badges}
}

func (p *ProgressRecord) Level() int {
	return 1 + p.XP/XPPerLevel
}

// XPToNextLevel returns how much XP is left before the next level.
func (p *ProgressRecord) XPToNextLevel() int {
	return XPPerLevel - p.XP%XPPerLevel
}

// Accuracy returns the rounded percentage of correct answers, 0 with no answers.
func (p *ProgressRecord) Accuracy() int {
	if p.TotalQuestions == 0 {
		return 0
	}
	return (p.CorrectAnswers*100 + p.TotalQuestions/2) / p.TotalQuestions
}

func (p *ProgressRecord) Validate() error {
	switch {
	case p.XP < 0:
		return fmt.Errorf("%w: negative xp %d", ErrInvariant, p.XP)
	case p.Streak < 0:
		return fmt.Errorf("%w: negative streak %d", ErrInvariant, p.Streak)
	case p.TotalQuestions < 0 || p.CorrectAnswers < 0:
		return fmt.Errorf("%w: negative answer counters", ErrInvariant)
	case p.CorrectAnswers > p.TotalQuestions:
		return fmt.Errorf("%w: correct answers %d exceed total questions %d",
			ErrInvariant, p.CorrectAnswers, p.TotalQuestions)
	}
	return nil
}

// AddXP applies an XP award on the given day and advances the streak:
// the day after the last activity extends it, the same day leaves it, and
// anything else restarts it at 1.
func (p *ProgressRecord) AddXP(amount int, today Date) error {
	if amount <= 0 {
		return fmt.Errorf("%w: xp award must be positive, got %d", ErrInvariant, amount)
	}
	if amount > math.MaxInt-p.XP {
		return fmt.Errorf("%w: xp award %d overflows total %d", ErrInvariant, amount, p.XP)
	}
	switch {
	case p.LastActivityDate == nil:
		p.Streak = 1
	case today.DaysSince(*p.LastActivityDate) == 0:
		if p.Streak == 0 {
			p.Streak = 1
		}
	case today.DaysSince(*p.LastActivityDate) == 1:
		p.Streak++
	default:
		p.Streak = 1
	}
	p.XP += amount
	p.LastActivityDate = &today
	return nil
}

func (p *ProgressRecord) RecordAnswer(correct bool) {
	p.TotalQuestions++
	if correct {
		p.CorrectAnswers++
	}
}

// BadgeIndex returns the catalog position of id, or -1.
func (p *ProgressRecord) BadgeIndex(id string) int {
	for i := range p.Badges {
		if p.Badges[i].ID == id {
			return i
		}
	}
	return -1
}

// EarnedCount returns how many badges are earned.
func (p *ProgressRecord) EarnedCount() int {
	n := 0
	for _, b := range p.Badges {
		if b.Earned {
			n++
		}
	}
	return n
}

// MarkEarned flips a badge to earned. It is a no-op for an earned badge.
func (p *ProgressRecord) MarkEarned(i int, at time.Time) bool {
	if p.Badges[i].Earned {
		return false
	}
	p.Badges[i].Earned = true
	p.Badges[i].EarnedAt = &at
	return true
}

// Clone returns a deep copy that shares no pointers with p.
func (p *ProgressRecord) Clone() ProgressRecord {
	c := *p
	if p.LastActivityDate != nil {
		d := *p.LastActivityDate
		c.LastActivityDate = &d
	}
	c.Badges = make([]Badge, len(p.Badges))
	for i, b := range p.Badges {
		if b.EarnedAt != nil {
			t := *b.EarnedAt
			b.EarnedAt = &t
		}
		c.Badges[i] = b
	}
	return c
}
