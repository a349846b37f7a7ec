package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/pipeline"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Expense by category and income by source",
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(_ *cobra.Command, _ []string) error {
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	cats := pipeline.GroupExpensesByCategory(txs)
	incomes := pipeline.GroupIncomeByDescription(txs)

	fmt.Println()
	fmt.Println(cli.RenderTitle("CATEGORIES"))
	fmt.Println()

	if len(cats) > 0 {
		top := cats[0].Actual.InexactFloat64()
		rows := make([][]string, 0, len(cats))
		for _, cs := range cats {
			rows = append(rows, []string{
				cs.Category,
				cli.FormatMoney(cs.Actual),
				cli.Muted(cli.FormatMoney(cs.Planned)),
				cli.FormatPercent(cs.SharePercent),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Expenses",
			Headers: []string{"Category", "Actual", "Planned", "Share"},
			Rows:    rows,
		}))
		fmt.Println()
		for _, cs := range cats {
			fmt.Println(cli.RenderHorizontalBar(cs.Category, cs.Actual.InexactFloat64(), top, 16, 40))
		}
		fmt.Println()
	}

	if len(incomes) > 0 {
		rows := make([][]string, 0, len(incomes))
		for _, ds := range incomes {
			rows = append(rows, []string{ds.Description, cli.FormatMoney(ds.Amount)})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Income",
			Headers: []string{"Source", "Amount"},
			Rows:    rows,
		}))
	}

	warnParseProblems(result)
	return nil
}
