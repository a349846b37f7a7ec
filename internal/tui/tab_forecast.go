package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/tui/components"
	"github.com/fincast/fincast/internal/tui/theme"
)

// forecastRowStep is the spacing in days of the forecast table rows.
const forecastRowStep = 7

func (a App) renderForecastTab(cw int) string {
	t := theme.Active
	r := a.report
	fc := r.Forecast
	closing := r.ClosingBalance()
	end := r.ForecastEnd()

	outcomeColor := t.Income
	if fc.Outcome != forecast.OutcomeFitted {
		outcomeColor = t.Warning
	}

	var b strings.Builder
	metrics := []components.Metric{
		{Label: "Mode", Value: string(a.cfg.Options.Forecast.Mode), Delta: "[m] to cycle", Color: t.Accent},
		{Label: "Outcome", Value: string(fc.Outcome), Delta: chunkSummary(fc.Chunks), Color: outcomeColor},
		{Label: "Forecast end", Value: cli.FormatAmount(end), Delta: signedAmount(end - closing), Color: t.Forecast},
		{Label: "Planned", Value: fmt.Sprintf("%d in horizon", r.Planned), Delta: fmt.Sprintf("%d outliers dropped", r.Dropped), Color: t.Planned},
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	if len(fc.Points) == 0 {
		b.WriteString(components.ContentCard("Forecast",
			"Not enough history for this mode. Try another with [m].", cw))
		return b.String()
	}

	innerW := components.CardInnerWidth(cw)
	b.WriteString(components.ContentCard("Forecast trajectory",
		components.Sparkline(model.ForecastValues(fc.Points), t.Forecast), cw))
	b.WriteString("\n")

	headerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface)

	var table strings.Builder
	table.WriteString(headerStyle.Render(fmt.Sprintf("%-16s %14s %14s", "Date", "Balance", "vs today")))
	table.WriteString("\n")
	table.WriteString(mutedStyle.Render(strings.Repeat("─", min(innerW, 46))))
	for i := forecastRowStep - 1; i < len(fc.Points); i += forecastRowStep {
		table.WriteString("\n")
		table.WriteString(forecastRow(fc.Points[i], closing, valueStyle))
	}
	if last := len(fc.Points) - 1; last%forecastRowStep != forecastRowStep-1 {
		table.WriteString("\n")
		table.WriteString(forecastRow(fc.Points[last], closing, valueStyle))
	}
	b.WriteString(components.ContentCard("Weekly checkpoints", table.String(), cw))

	return b.String()
}

func forecastRow(p model.ForecastPoint, closing float64, valueStyle lipgloss.Style) string {
	t := theme.Active
	delta := p.Value - closing
	return valueStyle.Render(fmt.Sprintf("%-16s %14s ", cli.FormatDate(p.Date), cli.FormatAmount(p.Value))) +
		lipgloss.NewStyle().Foreground(t.Signed(delta)).Background(t.Surface).
			Render(fmt.Sprintf("%14s", signedAmount(delta)))
}

func signedAmount(v float64) string {
	if v < 0 {
		return cli.FormatAmount(v)
	}
	return "+" + cli.FormatAmount(v)
}

// chunkSummary condenses per-chunk outcomes of an iterative forecast.
func chunkSummary(chunks []forecast.Outcome) string {
	if len(chunks) == 0 {
		return ""
	}
	fitted := 0
	for _, c := range chunks {
		if c == forecast.OutcomeFitted {
			fitted++
		}
	}
	return fmt.Sprintf("%d/%d chunks fitted", fitted, len(chunks))
}
