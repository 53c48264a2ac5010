package service

import (
	"unicode/utf8"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// ContextPolicy bounds the history sent with each completion. Zero fields
// mean unbounded.
type ContextPolicy struct {
	MaxTurns int
	MaxChars int
}

// DefaultContextPolicy is used when no policy is configured.
var DefaultContextPolicy = ContextPolicy{MaxTurns: 40, MaxChars: 24000}

// BuildContext assembles the ordered turns for one completion call: the
// system instruction, then history oldest first, then the new user message.
// When the policy is exceeded the oldest history turns are dropped; the
// system instruction and the new message always survive.
func BuildContext(history []domain.Turn, newMessage string, policy ContextPolicy) []domain.Turn {
	system := domain.Turn{Role: domain.RoleSystem, Content: SystemPrompt}
	user := domain.Turn{Role: domain.RoleUser, Content: newMessage}

	kept := make([]domain.Turn, 0, len(history))
	for _, t := range history {
		if t.Role == domain.RoleSystem {
			continue
		}
		kept = append(kept, t)
	}

	if policy.MaxTurns > 0 && len(kept) > policy.MaxTurns {
		kept = kept[len(kept)-policy.MaxTurns:]
	}
	if policy.MaxChars > 0 {
		budget := policy.MaxChars - runes(system) - runes(user)
		total := 0
		for _, t := range kept {
			total += runes(t)
		}
		for len(kept) > 0 && total > budget {
			total -= runes(kept[0])
			kept = kept[1:]
		}
	}

	out := make([]domain.Turn, 0, len(kept)+2)
	out = append(out, system)
	out = append(out, kept...)
	out = append(out, user)
	return out
}

func runes(t domain.Turn) int {
	return utf8.RuneCountInString(t.Content)
}
