package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/pipeline"
)

var monthlyCmd = &cobra.Command{
	Use:   "monthly",
	Short: "Income, expense and running difference per month",
	RunE:  runMonthly,
}

func init() {
	rootCmd.AddCommand(monthlyCmd)
}

func runMonthly(_ *cobra.Command, _ []string) error {
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	months := pipeline.AggregateMonths(txs, flagIncludePlanned)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("MONTHLY  %d months", len(months))))
	fmt.Println()

	rows := make([][]string, 0, len(months))
	for _, m := range months {
		rows = append(rows, []string{
			cli.FormatMonth(m.Year, m.Month),
			cli.FormatMoney(m.Income),
			cli.FormatMoney(m.Expense),
			cli.Signed(cli.FormatSigned(m.Difference), !m.Difference.IsNegative()),
			cli.FormatMoney(m.Cumulative),
		})
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Month", "Income", "Expense", "Difference", "Cumulative"},
		Rows:    rows,
	}))

	warnParseProblems(result)
	return nil
}
