// Package config loads and saves the fincast TOML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/series"
)

// ErrInvalid wraps every problem reported by Validate.
var ErrInvalid = errors.New("invalid config")

// Config holds all fincast configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	Forecast   ForecastConfig   `toml:"forecast"`
	Cleaning   CleaningConfig   `toml:"cleaning"`
	Serve      ServeConfig      `toml:"serve"`
	Appearance AppearanceConfig `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	DataDir        string `toml:"data_dir,omitempty"`
	IncludePlanned bool   `toml:"include_planned"`
}

// ForecastConfig selects the forecast mode and its horizon.
type ForecastConfig struct {
	Mode           string `toml:"mode"`
	HorizonDays    int    `toml:"horizon_days"`
	SeasonalPeriod int    `toml:"seasonal_period"`
	ChunkSize      int    `toml:"chunk_size"`
}

// CleaningConfig controls gap filling and outlier removal.
type CleaningConfig struct {
	OutlierK float64 `toml:"outlier_k"`
	GapFill  string  `toml:"gap_fill"`
}

// ServeConfig holds daemon settings.
type ServeConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Forecast: ForecastConfig{
			Mode:           string(forecast.ModeIterative),
			HorizonDays:    forecast.DefaultSteps,
			SeasonalPeriod: forecast.DefaultSeasonalPeriod,
			ChunkSize:      forecast.DefaultChunkSize,
		},
		Cleaning: CleaningConfig{
			OutlierK: series.BudgetOutlierK,
			GapFill:  string(series.GapFillCompat),
		},
		Serve: ServeConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  30,
			EventsBuffer: 200,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "fincast")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config at path over the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // user-owned config path
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	return SaveTo(Path(), cfg)
}

// SaveTo writes the config to path, creating its directory.
func SaveTo(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
	}

	if _, err := forecast.ParseMode(c.Forecast.Mode); err != nil {
		bad("forecast.mode: %v", err)
	}
	if c.Forecast.HorizonDays <= 0 {
		bad("forecast.horizon_days must be positive, got %d", c.Forecast.HorizonDays)
	}
	if c.Forecast.SeasonalPeriod <= 0 {
		bad("forecast.seasonal_period must be positive, got %d", c.Forecast.SeasonalPeriod)
	}
	if c.Forecast.ChunkSize <= 0 {
		bad("forecast.chunk_size must be positive, got %d", c.Forecast.ChunkSize)
	}
	if c.Cleaning.OutlierK <= 0 {
		bad("cleaning.outlier_k must be positive, got %g", c.Cleaning.OutlierK)
	}
	switch series.GapFill(c.Cleaning.GapFill) {
	case series.GapFillCompat, series.GapFillLinear:
	default:
		bad("cleaning.gap_fill must be %q or %q, got %q", series.GapFillCompat, series.GapFillLinear, c.Cleaning.GapFill)
	}
	if c.Serve.IntervalSec <= 0 {
		bad("serve.interval_sec must be positive, got %d", c.Serve.IntervalSec)
	}
	if c.Serve.EventsBuffer <= 0 {
		bad("serve.events_buffer must be positive, got %d", c.Serve.EventsBuffer)
	}
	return errors.Join(errs...)
}

// ForecastParams converts the forecast section. An unknown mode falls back
// to the default.
func (c Config) ForecastParams() forecast.Params {
	p := forecast.DefaultParams()
	if m, err := forecast.ParseMode(c.Forecast.Mode); err == nil {
		p.Mode = m
	}
	if c.Forecast.HorizonDays > 0 {
		p.Steps = c.Forecast.HorizonDays
	}
	if c.Forecast.SeasonalPeriod > 0 {
		p.SeasonalPeriod = c.Forecast.SeasonalPeriod
	}
	if c.Forecast.ChunkSize > 0 {
		p.ChunkSize = c.Forecast.ChunkSize
	}
	return p
}

// CleanOptions converts the cleaning section.
func (c Config) CleanOptions() series.CleanOptions {
	opts := series.DefaultCleanOptions()
	if c.Cleaning.OutlierK > 0 {
		opts.OutlierK = c.Cleaning.OutlierK
	}
	if g := series.GapFill(c.Cleaning.GapFill); g == series.GapFillLinear {
		opts.GapFill = g
	}
	return opts
}

// DataDir resolves the transaction directory: FINCAST_DATA_DIR, then the
// config value, then the XDG data directory.
func DataDir(cfg Config) string {
	if dir := os.Getenv("FINCAST_DATA_DIR"); dir != "" {
		return dir
	}
	if cfg.General.DataDir != "" {
		return cfg.General.DataDir
	}
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "fincast")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "fincast")
}
