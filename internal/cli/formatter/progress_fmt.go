package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/learnerbot/internal/contract"
	"github.com/alexanderramin/learnerbot/internal/domain"
)

const barWidth = 20

// FormatProgress renders the learner's progress screen.
func FormatProgress(v contract.ProgressView) string {
	var b strings.Builder

	b.WriteString(Header("Your Learning Journey"))
	b.WriteString("\n\n")

	intoLevel := domain.XPPerLevel - v.XPToNextLevel
	fmt.Fprintf(&b, "  %s %s   %s\n",
		StyleHeader.Render(fmt.Sprintf("Level %d", v.Level)),
		Dim(fmt.Sprintf("(%d XP total)", v.XP)),
		RenderXPBar(intoLevel, domain.XPPerLevel, barWidth))
	fmt.Fprintf(&b, "  %s\n", Dim(fmt.Sprintf("%d XP to level %d", v.XPToNextLevel, v.Level+1)))

	fmt.Fprintf(&b, "\n  %-18s %s\n", "Streak", streak(v.Streak))
	if v.LastActivityDate != "" {
		fmt.Fprintf(&b, "  %-18s %s\n", "Last activity", v.LastActivityDate)
	}
	fmt.Fprintf(&b, "  %-18s %d/%d correct\n", "Quiz answers", v.CorrectAnswers, v.TotalQuestions)
	if v.TotalQuestions > 0 {
		fmt.Fprintf(&b, "  %-18s %s\n", "Accuracy", RenderProgress(float64(v.Accuracy)/100, barWidth))
	}

	earned := 0
	for _, badge := range v.Badges {
		if badge.Earned {
			earned++
		}
	}
	b.WriteString("\n")
	b.WriteString(Header(fmt.Sprintf("Badges %d/%d", earned, len(v.Badges))))
	b.WriteString("\n")
	for _, badge := range v.Badges {
		b.WriteString(FormatBadgeLine(badge))
		b.WriteString("\n")
	}

	if len(v.Encouragements) > 0 {
		b.WriteString("\n")
		for _, line := range v.Encouragements {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

// FormatBadgeLine renders one catalog entry, dimmed while still locked.
func FormatBadgeLine(v contract.BadgeView) string {
	if !v.Earned {
		return Dim(fmt.Sprintf("  🔒 %-14s %s", v.Name, v.Description))
	}
	line := fmt.Sprintf("  %s %-14s %s", v.Emoji, StyleGreen.Render(v.Name), v.Description)
	if v.EarnedAt != nil {
		line += Dim("  earned " + v.EarnedAt.Local().Format("Jan 2, 2006"))
	}
	return line
}

// FormatNewBadges celebrates badges unlocked by the last action.
// It returns "" when nothing was unlocked.
func FormatNewBadges(badges []contract.BadgeView) string {
	if len(badges) == 0 {
		return ""
	}
	var b strings.Builder
	for _, badge := range badges {
		fmt.Fprintf(&b, "%s %s %s\n",
			StyleYellow.Render("🎉 New badge!"),
			badge.Emoji,
			Bold(badge.Name))
		b.WriteString("   " + Dim(badge.Description) + "\n")
	}
	return b.String()
}

// FormatAnswerResult renders the outcome of a recorded quiz answer.
func FormatAnswerResult(v contract.AnswerResultView, correct bool) string {
	var b strings.Builder
	if correct {
		b.WriteString(StyleGreen.Render("✔ Correct! Nice work!") + "\n")
	} else {
		b.WriteString(StyleYellow.Render("✖ Not quite, keep going!") + "\n")
	}
	fmt.Fprintf(&b, "  %d/%d correct · %d%% accuracy\n",
		v.Progress.CorrectAnswers, v.Progress.TotalQuestions, v.Progress.Accuracy)
	b.WriteString(FormatNewBadges(v.NewBadges))
	if v.PersistWarning != "" {
		b.WriteString(FormatPersistWarning(v.PersistWarning))
	}
	return b.String()
}

func FormatPersistWarning(msg string) string {
	return StyleRed.Render("! progress not saved yet: ") + Dim(msg) + "\n"
}

func streak(days int) string {
	switch {
	case days == 0:
		return Dim("no streak yet")
	case days == 1:
		return "🔥 1 day"
	default:
		return fmt.Sprintf("🔥 %d days", days)
	}
}
