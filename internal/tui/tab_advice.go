package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/tui/components"
	"github.com/fincast/fincast/internal/tui/theme"
)

func (a App) renderAdviceTab(cw int) string {
	t := theme.Active
	r := a.report

	bulletStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var recs strings.Builder
	for i, rec := range r.Recommendations {
		if i > 0 {
			recs.WriteString("\n")
		}
		recs.WriteString(bulletStyle.Render("• "))
		recs.WriteString(textStyle.Render(rec))
	}

	source := "forecast movement"
	if r.Planned > 0 {
		source = fmt.Sprintf("%d planned transactions", r.Planned)
	}
	basis := fmt.Sprintf("%-18s %14s\n%-18s %14s\n%-18s %14s\n%-18s %14s\n",
		"Real income", cli.FormatMoney(r.Totals.RealIncome),
		"Real expense", cli.FormatMoney(r.Totals.RealExpense),
		"Forecast income", cli.FormatMoney(r.ForecastIncome),
		"Forecast expense", cli.FormatMoney(r.ForecastExpense),
	)

	return components.ContentCard("Recommendations", recs.String(), cw) + "\n" +
		components.ContentCard("Basis", textStyle.Render(basis)+mutedStyle.Render("Forecast totals from "+source), cw)
}
