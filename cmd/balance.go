package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
)

var (
	flagBalanceLast  int
	flagBalanceSplit bool
)

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Daily running balance",
	RunE:  runBalance,
}

func init() {
	balanceCmd.Flags().IntVarP(&flagBalanceLast, "last", "n", 30, "Number of most recent days to list (0 for all)")
	balanceCmd.Flags().BoolVar(&flagBalanceSplit, "split", false, "Continue the real balance with planned transactions")
	rootCmd.AddCommand(balanceCmd)
}

func runBalance(_ *cobra.Command, _ []string) error {
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	var history, planned []model.DailyPoint
	if flagBalanceSplit {
		history, planned = pipeline.SplitRealAndPlanned(txs)
	} else {
		history = pipeline.ComputeDailyBalances(txs, flagIncludePlanned)
	}
	if len(history) == 0 && len(planned) == 0 {
		fmt.Println("\n  No balance history for the selected filters.")
		return nil
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY BALANCE  %d days", len(history))))
	fmt.Println()
	fmt.Printf("  %s\n\n", cli.RenderSparkline(model.Values(history)))

	shown := history
	if flagBalanceLast > 0 && len(shown) > flagBalanceLast {
		shown = shown[len(shown)-flagBalanceLast:]
	}

	rows := make([][]string, 0, len(shown)+len(planned)+1)
	prev := 0.0
	if first := len(history) - len(shown); first > 0 {
		prev = history[first-1].Value
	}
	for _, p := range shown {
		rows = append(rows, balanceRow(p, prev, false))
		prev = p.Value
	}
	if len(planned) > 0 {
		rows = append(rows, cli.SeparatorRow)
		for _, p := range planned {
			rows = append(rows, balanceRow(p, prev, true))
			prev = p.Value
		}
	}

	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance", "Change"},
		Rows:    rows,
	}))

	warnParseProblems(result)
	return nil
}

func balanceRow(p model.DailyPoint, prev float64, planned bool) []string {
	balance := cli.FormatAmount(p.Value)
	if planned {
		balance = cli.Forecast(balance)
	}
	change := p.Value - prev
	changeStr := ""
	if change != 0 {
		changeStr = cli.Signed(signedAmount(change), change > 0)
	}
	return []string{cli.FormatDate(p.Date), balance, changeStr}
}

func signedAmount(v float64) string {
	if v < 0 {
		return cli.FormatAmount(v)
	}
	return "+" + cli.FormatAmount(v)
}
