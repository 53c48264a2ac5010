package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderProgress renders a progress bar like [████░░░░] 45%.
// The bar is colored based on percentage: green >66%, yellow 33-66%, red <33%.
func RenderProgress(pct float64, width int) string {
	pct, filled, empty := split(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderXPBar renders the progress through the current level in purple,
// e.g. [██████░░░░] 60/100 XP.
func RenderXPBar(intoLevel, span, width int) string {
	pct := 0.0
	if span > 0 {
		pct = float64(intoLevel) / float64(span)
	}
	_, filled, empty := split(pct, width)
	bar := strings.Repeat(filledBlock, filled) + Dim(strings.Repeat(emptyBlock, empty))
	return fmt.Sprintf("[%s] %d/%d XP", StylePurple.Render(bar), intoLevel, span)
}

func split(pct float64, width int) (float64, int, int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	if width < 2 {
		width = 2
	}
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	return pct, filled, width - filled
}
