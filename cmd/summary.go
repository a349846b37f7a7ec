package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Balance, totals, forecast end and recommendations",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, _ []string) error {
	opts, err := pipelineOptions(cmd)
	if err != nil {
		return err
	}
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	r := pipeline.Run(txs, opts)
	logReport(r, opts)
	t := r.Totals

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FINCAST  %s - %s", t.FirstDate, t.LastDate)))
	fmt.Println()

	closing := r.ClosingBalance()
	end := r.ForecastEnd()
	outcome := string(r.Forecast.Outcome)
	if r.Forecast.Outcome != forecast.OutcomeFitted {
		outcome = cli.Warn(outcome)
	}

	rows := [][]string{
		{"Transactions", cli.FormatNumber(int64(t.Transactions))},
		{"Planned", cli.FormatNumber(int64(t.Planned))},
		cli.SeparatorRow,
		{"Income", cli.FormatMoney(t.RealIncome)},
		{"Expense", cli.FormatMoney(t.RealExpense)},
		{"Net", cli.Signed(cli.FormatSigned(t.RealNet()), !t.RealNet().IsNegative())},
		{"Planned net", cli.FormatSigned(t.PlannedNet())},
		cli.SeparatorRow,
		{"Balance", cli.Signed(cli.FormatAmount(closing), closing >= 0)},
		{"Forecast mode", string(opts.Forecast.Mode)},
		{"Forecast outcome", outcome},
		{fmt.Sprintf("Balance in %dd", len(r.Forecast.Points)), cli.Forecast(cli.FormatAmount(end))},
	}
	if r.Dropped > 0 {
		rows = append(rows, []string{"Outliers dropped", cli.FormatNumber(int64(r.Dropped))})
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Metric", "Value"},
		Rows:    rows,
	}))

	fmt.Println()
	for _, rec := range r.Recommendations {
		fmt.Printf("  • %s\n", rec)
	}

	warnParseProblems(result)
	return nil
}
