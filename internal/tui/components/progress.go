package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/tui/theme"
)

// ProgressBar renders a bar filled to pct with a trailing percentage.
func ProgressBar(pct float64, width int) string {
	t := theme.Active
	filled := clamp(int(pct*float64(width)), 0, width)

	barColor := t.Accent
	if pct >= 0.8 {
		barColor = t.AccentBright
	}

	filledStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	pctStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Bold(true)

	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled)) +
		pctStyle.Render(fmt.Sprintf(" %.0f%%", pct*100))
}

// ShareBar renders a horizontal bar of value against maxValue in color.
func ShareBar(value, maxValue float64, width int, color lipgloss.Color) string {
	t := theme.Active
	n := 0
	if maxValue > 0 {
		n = clamp(int(value/maxValue*float64(width)), 0, width)
	}
	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(strings.Repeat("█", n)) +
		lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", width-n))
}
