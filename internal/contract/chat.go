package contract

import (
	"time"

	"github.com/alexanderramin/learnerbot/internal/domain"
)

// TurnView is the presentation shape of a conversation turn.
type TurnView struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnResult is the outcome of one learner submission.
//
// Success is false when the completion call failed; the fallback reply is
// then in AssistantTurn and ErrorKind/ErrorMessage describe the failure for
// diagnostics. NotConfigured marks the canned reply given without a key.
type TurnResult struct {
	UserTurn       domain.Turn
	AssistantTurn  domain.Turn
	Success        bool
	NotConfigured  bool
	XPAwarded      int
	ErrorKind      string
	ErrorMessage   string
	NewBadges      []domain.Badge
	Progress       domain.ProgressRecord
	PersistWarning string
	Err            error
}

// TurnResultView is the JSON shape of a TurnResult.
type TurnResultView struct {
	UserTurn       TurnView     `json:"user_turn"`
	AssistantTurn  TurnView     `json:"assistant_turn"`
	Success        bool         `json:"success"`
	XPAwarded      int          `json:"xp_awarded"`
	Error          string       `json:"error,omitempty"`
	ErrorKind      string       `json:"error_kind,omitempty"`
	NewBadges      []BadgeView  `json:"new_badges"`
	Progress       ProgressView `json:"progress"`
	PersistWarning string       `json:"persist_warning,omitempty"`
}

// StatusView describes the session for the presentation layer.
type StatusView struct {
	SessionID  string `json:"session_id"`
	Busy       bool   `json:"busy"`
	Configured bool   `json:"configured"`
	Reachable  bool   `json:"reachable"`
	Turns      int    `json:"turns"`
}

// WelcomeView is shown at session start; it is not part of the history.
type WelcomeView struct {
	Message string   `json:"message"`
	Options []string `json:"options"`
}

func NewTurnView(t domain.Turn) TurnView {
	return TurnView{ID: t.ID, Role: string(t.Role), Content: t.Content, CreatedAt: t.CreatedAt}
}

func NewTurnViews(turns []domain.Turn) []TurnView {
	out := make([]TurnView, 0, len(turns))
	for _, t := range turns {
		out = append(out, NewTurnView(t))
	}
	return out
}

func NewTurnResultView(r *TurnResult) TurnResultView {
	v := TurnResultView{
		UserTurn:       NewTurnView(r.UserTurn),
		AssistantTurn:  NewTurnView(r.AssistantTurn),
		Success:        r.Success,
		XPAwarded:      r.XPAwarded,
		ErrorKind:      r.ErrorKind,
		NewBadges:      NewBadgeViews(r.NewBadges),
		Progress:       NewProgressView(r.Progress),
		PersistWarning: r.PersistWarning,
	}
	switch {
	case r.NotConfigured:
		v.Error = "not_configured"
	case !r.Success:
		v.Error = "completion_failed"
	}
	return v
}
