package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/tui/theme"
)

// StatusInfo is what the status bar shows on its right side.
type StatusInfo struct {
	Mode       string
	Outcome    string
	LoadTime   string
	Refreshing bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	warn := lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface)

	left := muted.Render(" [?]help  [m]ode  [r]efresh  [q]uit")

	right := muted.Render("mode ") + accent.Render(info.Mode)
	if info.Outcome != "" && info.Outcome != "fitted" {
		right += muted.Render(" ") + warn.Render(info.Outcome)
	}
	switch {
	case info.Refreshing:
		right += muted.Render("  refreshing… ")
	case info.LoadTime != "":
		right += muted.Render(fmt.Sprintf("  loaded in %s ", info.LoadTime))
	default:
		right += muted.Render(" ")
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	return left + lipgloss.NewStyle().Background(t.Surface).Width(gap).Render("") + right
}
