package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/learnerbot/internal/contract"
)

// FormatWelcome renders the session greeting and starter suggestions.
func FormatWelcome(w contract.WelcomeView) string {
	var b strings.Builder
	b.WriteString(StylePurple.Render("LearnerBot") + Dim(": ") + w.Message + "\n")
	if len(w.Options) > 0 {
		b.WriteString("\n" + Dim("Try one of these:") + "\n")
		for i, opt := range w.Options {
			fmt.Fprintf(&b, "  %s %s\n", Dim(fmt.Sprintf("%d.", i+1)), opt)
		}
	}
	return b.String()
}

// FormatUserLine renders the learner's own message in the transcript.
func FormatUserLine(text string) string {
	return StyleBlue.Render("You") + Dim(": ") + text
}

// FormatTurnResult renders the assistant reply and any progress feedback.
func FormatTurnResult(r contract.TurnResultView) string {
	var b strings.Builder
	b.WriteString(StylePurple.Render("LearnerBot") + Dim(": ") + r.AssistantTurn.Content + "\n")

	if r.Success {
		fmt.Fprintf(&b, "%s\n", Dim(fmt.Sprintf("+%d XP · level %d · %d XP to next",
			r.XPAwarded, r.Progress.Level, r.Progress.XPToNextLevel)))
	} else if r.ErrorKind != "" {
		b.WriteString(Dim("(reply failed: "+strings.ToLower(r.ErrorKind)+")") + "\n")
	}
	if r.Error == "not_configured" {
		b.WriteString(Dim("(no API key set: add OPENROUTER_API_KEY to chat for real)") + "\n")
	}
	b.WriteString(FormatNewBadges(r.NewBadges))
	if r.PersistWarning != "" {
		b.WriteString(FormatPersistWarning(r.PersistWarning))
	}
	return b.String()
}

// FormatError renders a rejected command or submission.
func FormatError(err error) string {
	return StyleRed.Render("Error: ") + err.Error() + "\n"
}
