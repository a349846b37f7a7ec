package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/tui/components"
	"github.com/fincast/fincast/internal/tui/theme"
)

func (a App) renderCategoriesTab(cw, h int) string {
	if a.isCompactLayout() {
		return a.renderExpenseCard(cw, h/2) + "\n" + a.renderIncomeCard(cw, h/2)
	}
	widths := components.LayoutRow(cw, 2)
	return components.CardRow([]string{
		a.renderExpenseCard(widths[0], h),
		a.renderIncomeCard(widths[1], h),
	})
}

func (a App) renderExpenseCard(w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.Expense).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	const numW = 12
	const shareW = 7
	nameW := max(10, innerW/3)
	barW := max(4, innerW-nameW-2*numW-shareW-4)

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-*s %*s %*s %*s", nameW, "Category", numW, "Actual", numW, "Planned", shareW, "Share")))

	if len(a.categories) == 0 {
		b.WriteString("\n")
		b.WriteString(mutedStyle.Render("No expenses."))
		return components.ContentCard("Expenses by category", b.String(), w)
	}

	top := a.categories[0].Actual.InexactFloat64()
	visible := max(1, h-6)
	end := min(len(a.categories), a.catScroll+visible)
	for _, cs := range a.categories[a.catScroll:end] {
		b.WriteString("\n")
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(cs.Category, nameW))))
		b.WriteString(numStyle.Render(fmt.Sprintf("%*s ", numW, cli.FormatMoney(cs.Actual))))
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%*s %*s ", numW, cli.FormatMoney(cs.Planned), shareW, cli.FormatPercent(cs.SharePercent))))
		b.WriteString(components.ShareBar(cs.Actual.InexactFloat64(), top, barW, t.Expense))
	}

	title := "Expenses by category"
	if len(a.categories) > visible {
		title = fmt.Sprintf("%s (%d-%d of %d)", title, a.catScroll+1, end, len(a.categories))
	}
	return components.ContentCard(title, b.String(), w)
}

func (a App) renderIncomeCard(w, h int) string {
	t := theme.Active
	innerW := components.CardInnerWidth(w)

	nameStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	numStyle := lipgloss.NewStyle().Foreground(t.Income).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	if len(a.incomes) == 0 {
		return components.ContentCard("Income sources", mutedStyle.Render("No income."), w)
	}

	const numW = 14
	nameW := max(10, innerW-numW-1)
	rows := a.incomes[:min(len(a.incomes), max(1, h-5))]

	var b strings.Builder
	for i, ds := range rows {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(nameStyle.Render(fmt.Sprintf("%-*s ", nameW, truncStr(ds.Description, nameW))))
		b.WriteString(numStyle.Render(fmt.Sprintf("%*s", numW, cli.FormatMoney(ds.Amount))))
	}
	return components.ContentCard("Income sources", b.String(), w)
}
