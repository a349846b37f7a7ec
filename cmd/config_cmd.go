package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file for out-of-range settings",
	RunE:  runConfigValidate,
}

func init() {
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Data directory:  %s\n", config.DataDir(cfg))
	fmt.Printf("    Include planned: %v\n", cfg.General.IncludePlanned)
	fmt.Println()

	fmt.Println("  [Forecast]")
	fmt.Printf("    Mode:            %s\n", cfg.Forecast.Mode)
	fmt.Printf("    Horizon:         %d days\n", cfg.Forecast.HorizonDays)
	fmt.Printf("    Seasonal period: %d days\n", cfg.Forecast.SeasonalPeriod)
	fmt.Printf("    Chunk size:      %d days\n", cfg.Forecast.ChunkSize)
	fmt.Println()

	fmt.Println("  [Cleaning]")
	fmt.Printf("    Outlier k:       %g\n", cfg.Cleaning.OutlierK)
	fmt.Printf("    Gap fill:        %s\n", cfg.Cleaning.GapFill)
	fmt.Println()

	fmt.Println("  [Serve]")
	fmt.Printf("    Address:         %s\n", cfg.Serve.Addr)
	fmt.Printf("    Interval:        %ds\n", cfg.Serve.IntervalSec)
	fmt.Printf("    Events buffer:   %d\n", cfg.Serve.EventsBuffer)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme:           %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `fincast setup` to reconfigure.")
	return nil
}

func runConfigValidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	fmt.Printf("  %s is valid\n", config.Path())
	return nil
}
