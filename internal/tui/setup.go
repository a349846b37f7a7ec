package tui

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/tui/theme"
)

// SetupValues holds the answers of the setup form.
type SetupValues struct {
	DataDir        string
	Mode           string
	HorizonDays    int
	IncludePlanned bool
	Theme          string
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		DataDir:        config.DataDir(cfg),
		Mode:           cfg.Forecast.Mode,
		HorizonDays:    cfg.Forecast.HorizonDays,
		IncludePlanned: cfg.General.IncludePlanned,
		Theme:          cfg.Appearance.Theme,
	}
}

// Apply writes the answers into cfg.
func (v SetupValues) Apply(cfg *config.Config) {
	cfg.General.DataDir = strings.TrimSpace(v.DataDir)
	cfg.General.IncludePlanned = v.IncludePlanned
	cfg.Forecast.Mode = v.Mode
	if v.HorizonDays > 0 {
		cfg.Forecast.HorizonDays = v.HorizonDays
	}
	cfg.Appearance.Theme = v.Theme
}

var horizonOptions = []int{30, 60, 90, 180}

// NewSetupForm builds the first-run form. txCount is shown in the welcome
// note when positive.
func NewSetupForm(txCount int, vals *SetupValues) *huh.Form {
	welcome := "Let's set up a few things."
	if txCount > 0 {
		welcome = fmt.Sprintf("Found %d transactions. Let's set up a few things.", txCount)
	}

	modeOpts := make([]huh.Option[string], len(forecast.Modes))
	for i, m := range forecast.Modes {
		modeOpts[i] = huh.NewOption(modeLabel(m), string(m))
	}
	horizonOpts := make([]huh.Option[int], len(horizonOptions))
	for i, d := range horizonOptions {
		horizonOpts[i] = huh.NewOption(strconv.Itoa(d)+" days", d)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to fincast").
				Description(welcome),
			huh.NewInput().
				Title("Transaction directory").
				Description("JSON exports and CSV statements are read from here.").
				Value(&vals.DataDir).
				Validate(validateDataDir),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Forecast mode").
				Options(modeOpts...).
				Value(&vals.Mode),
			huh.NewSelect[int]().
				Title("Forecast horizon").
				Options(horizonOpts...).
				Value(&vals.HorizonDays),
			huh.NewConfirm().
				Title("Include planned transactions in the balance history?").
				Value(&vals.IncludePlanned),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(huh.NewOptions(theme.Names()...)...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeDracula()).WithShowHelp(true)
}

func validateDataDir(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errors.New("directory is required")
	}
	info, err := os.Stat(s)
	if errors.Is(err, os.ErrNotExist) {
		return nil // created on first import
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", s)
	}
	return nil
}

func modeLabel(m forecast.Mode) string {
	switch m {
	case forecast.ModeIterative:
		return "Iterative seasonal (recommended)"
	case forecast.ModeSeasonal:
		return "Seasonal difference"
	case forecast.ModePlain:
		return "Plain AR(1)"
	case forecast.ModeLinear:
		return "Linear trend"
	default:
		return string(m)
	}
}

func (a *App) saveSetupConfig() error {
	cfg, _ := config.Load()
	a.setupVals.Apply(&cfg)
	theme.SetActive(cfg.Appearance.Theme)
	if m, err := forecast.ParseMode(cfg.Forecast.Mode); err == nil {
		a.cfg.Options.Forecast.Mode = m
	}
	a.cfg.Options.Forecast.Steps = cfg.Forecast.HorizonDays
	a.cfg.Options.IncludePlanned = cfg.General.IncludePlanned
	return config.Save(cfg)
}
