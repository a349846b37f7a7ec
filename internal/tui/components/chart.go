package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/tui/theme"
)

var blocks = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders values scaled between their minimum and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	lo, hi := bounds(values)
	span := hi - lo

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(blocks) - 1
		if span > 0 {
			idx = 1 + int((v-lo)/span*float64(len(blocks)-2))
		}
		buf.WriteRune(blocks[clamp(idx, 1, len(blocks)-1)])
	}
	return lipgloss.NewStyle().Foreground(color).Background(theme.Active.Surface).Render(buf.String())
}

// BalanceChart draws history followed by forecast as one column chart of
// the given size. Forecast columns use the forecast color. Values may be
// negative; the axis spans the observed minimum to maximum.
func BalanceChart(history, forecast []float64, width, height int) string {
	t := theme.Active
	all := append(append(make([]float64, 0, len(history)+len(forecast)), history...), forecast...)
	if len(all) == 0 {
		return ""
	}
	if height < 3 {
		height = 3
	}

	lo, hi := bounds(all)
	if hi == lo {
		lo, hi = lo-1, hi+1
	}
	top, bottom := formatChartLabel(hi), formatChartLabel(lo)
	labelW := max(len(top), len(bottom)) + 1

	chartW := width - labelW - 1
	if chartW < 5 {
		chartW = 5
	}
	cols, isForecast := sample(all, len(history), chartW)

	axis := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	histStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	fcStyle := lipgloss.NewStyle().Foreground(t.Forecast).Background(t.Surface)

	levels := make([]int, len(cols))
	for i, v := range cols {
		levels[i] = int(math.Round((v - lo) / (hi - lo) * float64(height*8)))
		if levels[i] < 1 {
			levels[i] = 1
		}
	}

	var b strings.Builder
	for row := height; row >= 1; row-- {
		label := ""
		switch row {
		case height:
			label = top
		case 1:
			label = bottom
		}
		b.WriteString(axis.Render(fmt.Sprintf("%*s", labelW, label) + "│"))

		floor := (row - 1) * 8
		for i, lvl := range levels {
			cell := blocks[clamp(lvl-floor, 0, 8)]
			style := histStyle
			if isForecast[i] {
				style = fcStyle
			}
			b.WriteString(style.Render(string(cell)))
		}
		if row > 1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// sample reduces values to at most width columns, reporting which columns
// come from index split or later.
func sample(values []float64, split, width int) ([]float64, []bool) {
	n := len(values)
	if n <= width {
		marks := make([]bool, n)
		for i := split; i < n; i++ {
			marks[i] = true
		}
		return values, marks
	}

	out := make([]float64, width)
	marks := make([]bool, width)
	for i := range out {
		src := i * (n - 1) / (width - 1)
		out[i] = values[src]
		marks[i] = src >= split
	}
	return out, marks
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

func formatChartLabel(v float64) string {
	sign := ""
	if v < 0 {
		sign, v = "-", -v
	}
	switch {
	case v >= 1e6:
		return fmt.Sprintf("%s%.1fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s%.1fk", sign, v/1e3)
	default:
		return fmt.Sprintf("%s%.0f", sign, v)
	}
}
