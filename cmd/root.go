// Package cmd implements the fincast CLI commands.
package cmd

import (
	"fmt"
	"os"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/config"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/logger"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
	"github.com/fincast/fincast/internal/series"
	"github.com/fincast/fincast/internal/source"
	"github.com/fincast/fincast/internal/store"
	"github.com/fincast/fincast/internal/tui/theme"
)

var (
	flagDataDir        string
	flagNoCache        bool
	flagQuiet          bool
	flagVerbose        bool
	flagIncludePlanned bool
	flagCategory       string
	flagSince          string
	flagUntil          string

	flagMode     string
	flagDays     int
	flagPeriod   int
	flagChunk    int
	flagOutlierK float64
	flagGapFill  string
)

// Resolved in PersistentPreRunE.
var (
	appCfg config.Config
	log    zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "fincast",
	Short: "Daily balance history and forecasts from your transactions",
	Long: "Build a daily balance from JSON exports and CSV statements, clean it,\n" +
		"forecast it with AR(1) models and compare income against expense.",
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runSummary,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagDataDir, "data-dir", "d", "", "Transaction directory (default from config or XDG data dir)")
	pf.BoolVar(&flagNoCache, "no-cache", false, "Skip SQLite cache, reparse everything")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Log pipeline decisions to stderr")
	pf.BoolVar(&flagIncludePlanned, "include-planned", false, "Include planned transactions in the balance history")
	pf.StringVarP(&flagCategory, "category", "c", "", "Filter to category (substring match)")
	pf.StringVar(&flagSince, "since", "", "First day to include (YYYY-MM-DD)")
	pf.StringVar(&flagUntil, "until", "", "Last day to include (YYYY-MM-DD)")

	pf.StringVar(&flagMode, "mode", "", "Forecast mode: iterative, seasonal, plain or linear")
	pf.IntVar(&flagDays, "days", 0, "Forecast horizon in days")
	pf.IntVar(&flagPeriod, "period", 0, "Seasonal period in days")
	pf.IntVar(&flagChunk, "chunk", 0, "Iterative chunk size in days")
	pf.Float64Var(&flagOutlierK, "outlier-k", 0, "Outlier threshold in standard deviations")
	pf.StringVar(&flagGapFill, "gap-fill", "", "Gap fill strategy: compat or linear")
}

// setup loads config, builds the logger and resolves the data directory.
func setup(cmd *cobra.Command, _ []string) error {
	log = logger.New(os.Stderr, flagVerbose)

	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Str("path", config.Path()).Msg("config unreadable, using defaults")
		cfg = config.DefaultConfig()
	}
	appCfg = cfg
	theme.SetActive(cfg.Appearance.Theme)

	if !cmd.Flags().Changed("data-dir") {
		flagDataDir = config.DataDir(cfg)
	}
	if !cmd.Flags().Changed("include-planned") {
		flagIncludePlanned = cfg.General.IncludePlanned
	}
	log.Debug().Str("data_dir", flagDataDir).Msg("resolved data directory")
	return nil
}

// pipelineOptions merges config values and flags. Flags win when set.
func pipelineOptions(cmd *cobra.Command) (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	opts.Forecast = appCfg.ForecastParams()
	opts.Clean = appCfg.CleanOptions()
	opts.IncludePlanned = flagIncludePlanned

	flags := cmd.Flags()
	if flags.Changed("mode") {
		m, err := forecast.ParseMode(flagMode)
		if err != nil {
			return opts, err
		}
		opts.Forecast.Mode = m
	}
	if flags.Changed("days") {
		if flagDays <= 0 {
			return opts, fmt.Errorf("--days must be positive, got %d", flagDays)
		}
		opts.Forecast.Steps = flagDays
	}
	if flags.Changed("period") {
		if flagPeriod <= 0 {
			return opts, fmt.Errorf("--period must be positive, got %d", flagPeriod)
		}
		opts.Forecast.SeasonalPeriod = flagPeriod
	}
	if flags.Changed("chunk") {
		if flagChunk <= 0 {
			return opts, fmt.Errorf("--chunk must be positive, got %d", flagChunk)
		}
		opts.Forecast.ChunkSize = flagChunk
	}
	if flags.Changed("outlier-k") {
		if flagOutlierK <= 0 {
			return opts, fmt.Errorf("--outlier-k must be positive, got %g", flagOutlierK)
		}
		opts.Clean.OutlierK = flagOutlierK
	}
	if flags.Changed("gap-fill") {
		switch g := series.GapFill(flagGapFill); g {
		case series.GapFillCompat, series.GapFillLinear:
			opts.Clean.GapFill = g
		default:
			return opts, fmt.Errorf("--gap-fill must be %q or %q, got %q", series.GapFillCompat, series.GapFillLinear, flagGapFill)
		}
	}
	return opts, nil
}

// dateRange parses --since and --until. Empty flags give a zero date.
func dateRange() (since, until civil.Date, err error) {
	if flagSince != "" {
		if since, err = source.ParseDate(flagSince); err != nil {
			return since, until, fmt.Errorf("--since: %w", err)
		}
	}
	if flagUntil != "" {
		if until, err = source.ParseDate(flagUntil); err != nil {
			return since, until, fmt.Errorf("--until: %w", err)
		}
	}
	if since.IsValid() && until.IsValid() && until.Before(since) {
		return since, until, fmt.Errorf("--until %s is before --since %s", until, since)
	}
	return since, until, nil
}

// loadData is the shared data loading path used by all commands.
// Uses SQLite cache when available for fast subsequent runs.
func loadData() (*pipeline.LoadResult, error) {
	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Scanning %s...\n", flagDataDir)
	}

	progressFn := func(current, total int) {
		if flagQuiet {
			return
		}
		if current%20 == 0 || current == total {
			fmt.Fprintf(os.Stderr, "\r  Parsing [%d/%d]", current, total)
		}
	}

	if !flagNoCache {
		cache, err := store.Open(pipeline.CachePath())
		if err != nil {
			log.Debug().Err(err).Msg("cache unavailable, doing full parse")
		} else {
			defer func() { _ = cache.Close() }()

			cr, err := pipeline.LoadWithCache(flagDataDir, cache, progressFn)
			if err != nil {
				log.Warn().Err(err).Msg("cached load failed, falling back to full parse")
			} else {
				if !flagQuiet && cr.TotalFiles > 0 {
					fmt.Fprintf(os.Stderr, "\r  %s transactions: %d files cached, %d reparsed    \n",
						cli.FormatNumber(int64(len(cr.Transactions))), cr.CacheHits, cr.Reparsed)
				}
				log.Debug().Int("hits", cr.CacheHits).Int("reparsed", cr.Reparsed).Int("pruned", cr.Pruned).Msg("cache")
				return &cr.LoadResult, nil
			}
		}
	}

	result, err := pipeline.Load(flagDataDir, progressFn)
	if err != nil {
		return nil, err
	}
	if !flagQuiet && result.TotalFiles > 0 {
		fmt.Fprintf(os.Stderr, "\r  Parsed %s transactions from %d files    \n",
			cli.FormatNumber(int64(len(result.Transactions))), result.ParsedFiles)
	}
	return result, nil
}

// loadFiltered loads data and applies --category, --since and --until.
// It prints a hint and returns nil when nothing is left.
func loadFiltered() ([]model.Transaction, *pipeline.LoadResult, error) {
	since, until, err := dateRange()
	if err != nil {
		return nil, nil, err
	}
	result, err := loadData()
	if err != nil {
		return nil, nil, err
	}
	if len(result.Transactions) == 0 {
		fmt.Printf("\n  No transactions found in %s.\n", flagDataDir)
		fmt.Println("  Add JSON exports or CSV statements there, then come back!")
		return nil, result, nil
	}

	txs := pipeline.FilterByCategory(result.Transactions, flagCategory)
	txs = pipeline.FilterByDate(txs, since, until)
	if len(txs) == 0 {
		fmt.Println("\n  No transactions match the selected filters.")
	}
	return txs, result, nil
}

// warnParseProblems reports skipped rows and files on stderr.
func warnParseProblems(result *pipeline.LoadResult) {
	if result == nil {
		return
	}
	if result.ParseErrors > 0 {
		fmt.Fprintf(os.Stderr, "\n  %d rows could not be parsed and were skipped\n", result.ParseErrors)
	}
	if result.FileErrors > 0 {
		fmt.Fprintf(os.Stderr, "  %d files could not be read\n", result.FileErrors)
	}
}

// logReport writes the forecast decisions at debug level.
func logReport(r pipeline.Report, opts pipeline.Options) {
	log.Debug().
		Str("mode", string(opts.Forecast.Mode)).
		Str("outcome", string(r.Forecast.Outcome)).
		Int("history_days", len(r.Balances)).
		Int("dropped_outliers", r.Dropped).
		Int("planned_in_horizon", r.Planned).
		Msg("forecast")
}
