package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/tui/components"
	"github.com/fincast/fincast/internal/tui/theme"
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	r := a.report
	totals := r.Totals
	closing := r.ClosingBalance()

	var b strings.Builder

	metrics := []components.Metric{
		{
			Label: "Balance",
			Value: cli.FormatAmount(closing),
			Delta: "as of " + cli.FormatDate(totals.LastDate),
			Color: t.Signed(closing),
		},
		{
			Label: "Income",
			Value: cli.FormatMoney(totals.RealIncome),
			Delta: "planned " + cli.FormatMoney(totals.PlannedIncome),
			Color: t.Income,
		},
		{
			Label: "Expense",
			Value: cli.FormatMoney(totals.RealExpense),
			Delta: "planned " + cli.FormatMoney(totals.PlannedExpense),
			Color: t.Expense,
		},
		{
			Label: "Net",
			Value: cli.FormatSigned(totals.RealNet()),
			Delta: fmt.Sprintf("%d transactions", totals.Transactions),
			Color: t.Signed(totals.RealNet().InexactFloat64()),
		},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}
	title := fmt.Sprintf("Balance · %d days history, %d days %s forecast",
		len(r.Cleaned), len(r.Forecast.Points), a.cfg.Options.Forecast.Mode)
	b.WriteString(components.ContentCard(title,
		components.BalanceChart(model.Values(r.Cleaned), model.ForecastValues(r.Forecast.Points),
			components.CardInnerWidth(cw), chartH),
		cw))
	b.WriteString("\n")

	if len(a.months) > 0 {
		b.WriteString(components.ContentCard("Recent months", a.monthsTable(components.CardInnerWidth(cw), 6), cw))
	}

	return b.String()
}

func (a App) monthsTable(innerW, limit int) string {
	t := theme.Active
	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	months := a.months
	if len(months) > limit {
		months = months[len(months)-limit:]
	}

	const colW = 14
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-10s %*s %*s %*s %*s",
		"Month", colW, "Income", colW, "Expense", colW, "Difference", colW, "Cumulative")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, 10+4*(colW+1)))))
	for _, m := range months {
		diff := m.Difference.InexactFloat64()
		b.WriteString("\n")
		b.WriteString(rowStyle.Render(fmt.Sprintf("%-10s %*s %*s ",
			cli.FormatMonth(m.Year, m.Month), colW, cli.FormatMoney(m.Income), colW, cli.FormatMoney(m.Expense))))
		b.WriteString(lipgloss.NewStyle().Foreground(t.Signed(diff)).Background(t.Surface).
			Render(fmt.Sprintf("%*s", colW, cli.FormatSigned(m.Difference))))
		b.WriteString(rowStyle.Render(fmt.Sprintf(" %*s", colW, cli.FormatMoney(m.Cumulative))))
	}
	return b.String()
}
