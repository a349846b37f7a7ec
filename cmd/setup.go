package cmd

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/source"
	"github.com/fincast/fincast/internal/tui"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg := appCfg

	vals := tui.SetupValuesFrom(cfg)
	vals.DataDir = flagDataDir

	files, _ := source.ScanDir(flagDataDir)
	if err := tui.NewSetupForm(len(files), &vals).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup aborted, nothing saved.")
			return nil
		}
		return err
	}

	vals.Apply(&cfg)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Println("  Run `fincast setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}
