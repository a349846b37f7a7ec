// Package tui provides the interactive Bubble Tea dashboard for fincast.
package tui

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
	"github.com/fincast/fincast/internal/store"
	"github.com/fincast/fincast/internal/tui/components"
	"github.com/fincast/fincast/internal/tui/theme"
)

// Config selects the data and filters the dashboard starts with.
type Config struct {
	DataDir  string
	UseCache bool
	Category string
	Since    civil.Date
	Until    civil.Date
	Options  pipeline.Options
}

// DataLoadedMsg is sent when the data pipeline finishes.
type DataLoadedMsg struct {
	Transactions []model.Transaction
	ParseErrors  int
	LoadTime     time.Duration
	Err          error
}

// ProgressMsg reports file parsing progress.
type ProgressMsg struct {
	Current int
	Total   int
}

// RefreshDataMsg is sent when a background reload completes.
type RefreshDataMsg DataLoadedMsg

// App is the root Bubble Tea model.
type App struct {
	cfg Config

	// Data
	txs         []model.Transaction
	parseErrors int
	loaded      bool
	loadErr     error
	loadTime    time.Duration
	refreshing  bool

	// Derived for the current filter and options
	filtered   []model.Transaction
	report     pipeline.Report
	categories []model.CategoryStats
	incomes    []model.DescriptionStats
	months     []model.MonthlyStats

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	catScroll int

	// First-run setup
	setupForm *huh.Form
	setupVals SetupValues
	needSetup bool

	// Loading
	spinner     spinner.Model
	progress    int
	progressMax int
	loadSub     chan tea.Msg
}

const (
	minTerminalWidth = 80
	compactWidth     = 120
	maxContentWidth  = 180
	minContentHeight = 5
)

// Tab indexes, in components.Tabs order.
const (
	tabOverview = iota
	tabForecast
	tabCategories
	tabAdvice
)

// NewApp creates a new TUI app model.
func NewApp(cfg Config) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	fileCfg, _ := config.Load()
	vals := SetupValuesFrom(fileCfg)
	vals.DataDir = cfg.DataDir

	return App{
		cfg:       cfg,
		needSetup: !config.Exists(),
		setupVals: vals,
		spinner:   sp,
		loadSub:   make(chan tea.Msg, 1),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadDataCmd(a.cfg.DataDir, a.cfg.UseCache, a.loadSub),
		a.spinner.Tick,
	)
}

func (a *App) recompute() {
	filtered := pipeline.FilterByCategory(a.txs, a.cfg.Category)
	a.filtered = pipeline.FilterByDate(filtered, a.cfg.Since, a.cfg.Until)

	a.report = pipeline.Run(a.filtered, a.cfg.Options)
	a.categories = pipeline.GroupExpensesByCategory(a.filtered)
	a.incomes = pipeline.GroupIncomeByDescription(a.filtered)
	a.months = pipeline.AggregateMonths(a.filtered, a.cfg.Options.IncludePlanned)

	if a.catScroll >= len(a.categories) {
		a.catScroll = max(0, len(a.categories)-1)
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		if !a.loaded || a.showHelp || a.setupForm != nil {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if a.activeTab == tabCategories && a.catScroll > 0 {
				a.catScroll--
			}
		case tea.MouseButtonWheelDown:
			if a.activeTab == tabCategories && a.catScroll < len(a.categories)-1 {
				a.catScroll++
			}
		case tea.MouseButtonLeft:
			if msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.activeTab = tab
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case DataLoadedMsg:
		a.applyLoad(msg)
		a.loaded = true

		if a.needSetup {
			a.setupForm = NewSetupForm(len(a.txs), &a.setupVals)
			if a.width > 0 {
				a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
			}
			return a, a.setupForm.Init()
		}
		return a, nil

	case RefreshDataMsg:
		a.refreshing = false
		a.applyLoad(DataLoadedMsg(msg))
		return a, nil

	case ProgressMsg:
		a.progress = msg.Current
		a.progressMax = msg.Total
		return a, waitForLoadMsg(a.loadSub)

	case spinner.TickMsg:
		if !a.loaded || a.refreshing {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a *App) applyLoad(msg DataLoadedMsg) {
	a.loadTime = msg.LoadTime
	a.loadErr = msg.Err
	if msg.Err != nil {
		return
	}
	a.txs = msg.Transactions
	a.parseErrors = msg.ParseErrors
	a.recompute()
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}
	if !a.loaded {
		return a, nil
	}
	if a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, tea.Batch(refreshDataCmd(a.cfg.DataDir, a.cfg.UseCache), a.spinner.Tick)
	case "m":
		a.cfg.Options.Forecast.Mode = a.cfg.Options.Forecast.Mode.Next()
		a.recompute()
	case "p":
		a.cfg.Options.IncludePlanned = !a.cfg.Options.IncludePlanned
		a.recompute()
	case "j", "down":
		if a.activeTab == tabCategories && a.catScroll < len(a.categories)-1 {
			a.catScroll++
		}
	case "k", "up":
		if a.activeTab == tabCategories && a.catScroll > 0 {
			a.catScroll--
		}
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
	default:
		if len(msg.Runes) == 1 {
			if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
				a.activeTab = idx
			}
		}
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		_ = a.saveSetupConfig()
		a.needSetup = false
		a.setupForm = nil
		if dir := strings.TrimSpace(a.setupVals.DataDir); dir != "" && dir != a.cfg.DataDir {
			a.cfg.DataDir = dir
			a.refreshing = true
			return a, refreshDataCmd(a.cfg.DataDir, a.cfg.UseCache)
		}
		a.recompute()
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	switch {
	case a.width == 0:
		return ""
	case a.width < minTerminalWidth:
		return a.viewTooNarrow()
	case !a.loaded:
		return a.viewLoading()
	case a.setupForm != nil:
		return a.setupForm.View()
	case a.showHelp:
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  fincast needs at least %d columns.\n",
		a.width, minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	spinnerStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ fincast"))
	b.WriteString(subtitleStyle.Render(" · balance forecast"))
	b.WriteString("\n\n")

	if a.progressMax > 0 {
		barW := max(20, min(40, a.width-30))
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(fmt.Sprintf(" Parsing files %d/%d\n\n", a.progress, a.progressMax)))
		b.WriteString(components.ProgressBar(float64(a.progress)/float64(a.progressMax), barW))
	} else {
		b.WriteString(spinnerStyle.Render(a.spinner.View()))
		b.WriteString(subtitleStyle.Render(" Scanning " + a.cfg.DataDir))
	}

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	bindings := []struct{ key, desc string }{
		{"o f c a", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll categories"},
		{"m", "Cycle forecast mode"},
		{"p", "Toggle planned in history"},
		{"r", "Reload data"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w, cw, h := a.width, a.contentWidth(), a.height

	header := components.RenderTabBar(a.activeTab, w) + "\n" + a.filterRow(w)

	info := components.StatusInfo{
		Mode:       string(a.cfg.Options.Forecast.Mode),
		Outcome:    string(a.report.Forecast.Outcome),
		LoadTime:   fmt.Sprintf("%.1fs", a.loadTime.Seconds()),
		Refreshing: a.refreshing,
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch {
	case a.loadErr != nil:
		content = components.ContentCard("Load failed", a.loadErr.Error(), cw)
	case len(a.filtered) == 0:
		content = components.ContentCard("No transactions",
			"Put JSON exports or CSV statements into "+a.cfg.DataDir+" and press r.", cw)
	default:
		switch a.activeTab {
		case tabOverview:
			content = a.renderOverviewTab(cw)
		case tabForecast:
			content = a.renderForecastTab(cw)
		case tabCategories:
			content = a.renderCategoriesTab(cw, contentH)
		case tabAdvice:
			content = a.renderAdviceTab(cw)
		}
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) filterRow(w int) string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)

	parts := []string{accent.Render(fmt.Sprintf("%d txs", len(a.filtered)))}
	if a.cfg.Category != "" {
		parts = append(parts, accent.Render(a.cfg.Category))
	}
	if a.cfg.Since.IsValid() || a.cfg.Until.IsValid() {
		parts = append(parts, accent.Render(dateRange(a.cfg.Since, a.cfg.Until)))
	}
	if a.cfg.Options.IncludePlanned {
		parts = append(parts, accent.Render("incl. planned"))
	}
	if a.parseErrors > 0 {
		parts = append(parts, lipgloss.NewStyle().Foreground(t.Warning).Background(t.Surface).
			Render(fmt.Sprintf("%d bad rows", a.parseErrors)))
	}

	row := pill.Render(" ") + strings.Join(parts, pill.Render(" │ ")) + pill.Render(" ")
	return lipgloss.NewStyle().Background(t.Surface).Width(w).Render(row)
}

func dateRange(since, until civil.Date) string {
	from, to := "…", "…"
	if since.IsValid() {
		from = since.String()
	}
	if until.IsValid() {
		to = until.String()
	}
	return from + " → " + to
}

// tabAtX maps a click column on the tab bar to a tab index, or -1.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func loadTransactions(dataDir string, useCache bool, progressFn pipeline.ProgressFunc) ([]model.Transaction, int, error) {
	if useCache {
		cache, err := store.Open(pipeline.CachePath())
		if err == nil {
			cr, loadErr := pipeline.LoadWithCache(dataDir, cache, progressFn)
			_ = cache.Close()
			if loadErr == nil {
				return cr.Transactions, cr.ParseErrors, nil
			}
		}
	}

	result, err := pipeline.Load(dataDir, progressFn)
	if err != nil {
		return nil, 0, err
	}
	return result.Transactions, result.ParseErrors, nil
}

func loadDataCmd(dataDir string, useCache bool, sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		go func() {
			start := time.Now()
			progressFn := func(current, total int) {
				select {
				case sub <- ProgressMsg{Current: current, Total: total}:
				default:
				}
			}
			txs, parseErrors, err := loadTransactions(dataDir, useCache, progressFn)
			sub <- DataLoadedMsg{
				Transactions: txs,
				ParseErrors:  parseErrors,
				LoadTime:     time.Since(start),
				Err:          err,
			}
		}()
		return <-sub
	}
}

func waitForLoadMsg(sub chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-sub
	}
}

func refreshDataCmd(dataDir string, useCache bool) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		txs, parseErrors, err := loadTransactions(dataDir, useCache, nil)
		return RefreshDataMsg{
			Transactions: txs,
			ParseErrors:  parseErrors,
			LoadTime:     time.Since(start),
			Err:          err,
		}
	}
}

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	var result strings.Builder
	for i, line := range lines {
		result.WriteString(lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg)))
		if i < len(lines)-1 {
			result.WriteString("\n")
		}
	}
	return result.String()
}
