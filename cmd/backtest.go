package cmd

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
	"github.com/fincast/fincast/internal/source"
)

var (
	flagBacktestCutoff string
	flagBacktestTrain  float64
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Score a forecast trained on older history against what happened",
	RunE:  runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&flagBacktestCutoff, "cutoff", "", "Last training day (YYYY-MM-DD); default from --train")
	backtestCmd.Flags().Float64Var(&flagBacktestTrain, "train", 0.8, "Share of the real history used for training when --cutoff is not set")
	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	opts, err := pipelineOptions(cmd)
	if err != nil {
		return err
	}
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	var cutoff civil.Date
	if flagBacktestCutoff != "" {
		if cutoff, err = source.ParseDate(flagBacktestCutoff); err != nil {
			return fmt.Errorf("--cutoff: %w", err)
		}
	} else {
		var ok bool
		if cutoff, ok = defaultCutoff(txs, flagBacktestTrain); !ok {
			fmt.Println("\n  Not enough real history to backtest.")
			return nil
		}
	}

	br := pipeline.Backtest(txs, cutoff, opts)
	log.Debug().Str("cutoff", cutoff.String()).Int("train_days", len(br.Train)).
		Int("test_days", len(br.Actual)).Str("outcome", string(br.Forecast.Outcome)).Msg("backtest")

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("BACKTEST  %s, cutoff %s", opts.Forecast.Mode, cutoff)))
	fmt.Println()

	if len(br.Actual) == 0 || br.Metrics.Pairs == 0 {
		fmt.Println("  Nothing to compare: no real balance after the cutoff, or the forecast was empty.")
		return nil
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Training days", cli.FormatNumber(int64(len(br.Train)))},
			{"Test days", cli.FormatNumber(int64(len(br.Actual)))},
			{"Outcome", string(br.Forecast.Outcome)},
			cli.SeparatorRow,
			{"MAPE", cli.FormatPercent(br.Metrics.MAPE)},
			{"RMSE", cli.FormatAmount(br.Metrics.RMSE)},
			{"Pearson r", fmt.Sprintf("%.3f", br.Metrics.Pearson)},
		},
	}))
	fmt.Println()
	fmt.Printf("  actual    %s\n", cli.RenderSparkline(model.Values(br.Actual)))
	fmt.Printf("  forecast  %s\n", cli.Forecast(cli.RenderSparkline(model.ForecastValues(br.Forecast.Points))))

	warnParseProblems(result)
	return nil
}

// defaultCutoff places the cutoff after share of the days spanned by real
// transactions. It needs at least two distinct real days.
func defaultCutoff(txs []model.Transaction, share float64) (civil.Date, bool) {
	var first, last civil.Date
	seen := false
	for _, tx := range txs {
		if tx.IsPlanned {
			continue
		}
		if !seen || tx.Date.Before(first) {
			first = tx.Date
		}
		if !seen || tx.Date.After(last) {
			last = tx.Date
		}
		seen = true
	}
	span := last.DaysSince(first)
	if !seen || span < 1 {
		return civil.Date{}, false
	}
	if share <= 0 || share >= 1 {
		share = 0.8
	}
	offset := min(max(int(float64(span)*share), 0), span-1)
	return first.AddDays(offset), true
}
