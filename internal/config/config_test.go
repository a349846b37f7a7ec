package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/series"
)

func TestDefaultConfigIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFrom_MissingReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "none.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast.HorizonDays != forecast.DefaultSteps {
		t.Errorf("HorizonDays = %d, want %d", cfg.Forecast.HorizonDays, forecast.DefaultSteps)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	cfg := DefaultConfig()
	cfg.General.DataDir = "/srv/money"
	cfg.Forecast.Mode = "seasonal"
	cfg.Forecast.HorizonDays = 90
	cfg.Cleaning.GapFill = "linear"

	if err := SaveTo(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, cfg)
	}
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[forecast]\nmode = \"plain\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Forecast.Mode != "plain" || cfg.Forecast.ChunkSize != forecast.DefaultChunkSize {
		t.Errorf("got %+v", cfg.Forecast)
	}
}

func TestLoadFrom_BadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[forecast\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Forecast.Mode = "arima"
	cfg.Forecast.HorizonDays = 0
	cfg.Cleaning.GapFill = "spline"

	err := cfg.Validate()
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	for _, want := range []string{"forecast.mode", "horizon_days", "gap_fill"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err, want)
		}
	}
	if err := SaveTo(filepath.Join(t.TempDir(), "c.toml"), cfg); !errors.Is(err, ErrInvalid) {
		t.Errorf("SaveTo accepted an invalid config: %v", err)
	}
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Forecast.Mode = "linear"
	cfg.Forecast.HorizonDays = 14
	cfg.Cleaning.OutlierK = 3
	cfg.Cleaning.GapFill = "linear"

	p := cfg.ForecastParams()
	if p.Mode != forecast.ModeLinear || p.Steps != 14 {
		t.Errorf("params = %+v", p)
	}
	opts := cfg.CleanOptions()
	if opts.OutlierK != 3 || opts.GapFill != series.GapFillLinear {
		t.Errorf("clean options = %+v", opts)
	}
}

func TestDataDir(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.DataDir = "/from/config"

	t.Setenv("FINCAST_DATA_DIR", "/from/env")
	if got := DataDir(cfg); got != "/from/env" {
		t.Errorf("env: got %q", got)
	}

	t.Setenv("FINCAST_DATA_DIR", "")
	if got := DataDir(cfg); got != "/from/config" {
		t.Errorf("config: got %q", got)
	}

	t.Setenv("XDG_DATA_HOME", "/xdg")
	if got := DataDir(DefaultConfig()); got != filepath.Join("/xdg", "fincast") {
		t.Errorf("xdg: got %q", got)
	}
}
