package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/tui/theme"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Forecast", Key: 'f', KeyPos: 0},
	{Name: "Categories", Key: 'c', KeyPos: 0},
	{Name: "Advice", Key: 'a', KeyPos: 0},
}

// TabVisualWidth is the rendered width of a tab, including padding and the
// shortcut brackets shown on inactive tabs.
func TabVisualWidth(tab Tab, active bool) int {
	w := len(tab.Name) + 2
	if !active {
		w += 2
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().
		Foreground(t.AccentBright).
		Background(t.Surface).
		Bold(true).
		Padding(0, 1)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
	pad := inactiveStyle.Render(" ")

	parts := make([]string, len(Tabs))
	for i, tab := range Tabs {
		if i == activeIdx {
			parts[i] = activeStyle.Render(tab.Name)
			continue
		}
		before, key, after := tab.Name[:tab.KeyPos], string(tab.Name[tab.KeyPos]), tab.Name[tab.KeyPos+1:]
		parts[i] = pad + inactiveStyle.Render(before) +
			dimStyle.Render("[") + keyStyle.Render(key) + dimStyle.Render("]") +
			inactiveStyle.Render(after) + pad
	}

	row := strings.Join(parts, dimStyle.Render("│"))
	return lipgloss.NewStyle().Background(t.Background).Width(width).Render(row)
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
