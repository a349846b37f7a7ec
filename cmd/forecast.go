package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/spf13/cobra"

	"github.com/fincast/fincast/internal/cli"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/pipeline"
)

var (
	flagForecastEvery int
	flagForecastJSON  bool
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the daily balance",
	Long: "Forecast the cleaned daily balance with the selected mode:\n" +
		"  iterative  seasonal AR(1) in chunks, each refit on the previous ones\n" +
		"  seasonal   AR(1) on lag-m differences\n" +
		"  plain      AR(1) on the balance itself\n" +
		"  linear     least-squares trend",
	RunE: runForecast,
}

func init() {
	forecastCmd.Flags().IntVar(&flagForecastEvery, "every", 7, "List every Nth forecast day (1 lists all)")
	forecastCmd.Flags().BoolVar(&flagForecastJSON, "json", false, "Write the forecast as JSON to stdout")
	rootCmd.AddCommand(forecastCmd)
}

type forecastJSON struct {
	Mode            string        `json:"mode"`
	Outcome         string        `json:"outcome"`
	Chunks          []string      `json:"chunks,omitempty"`
	LastDate        civil.Date    `json:"last_date"`
	Balance         float64       `json:"balance"`
	DroppedOutliers int           `json:"dropped_outliers"`
	Points          []forecastDay `json:"points"`
	Recommendations []string      `json:"recommendations"`
}

type forecastDay struct {
	Date  civil.Date `json:"date"`
	Value float64    `json:"value"`
}

func runForecast(cmd *cobra.Command, _ []string) error {
	opts, err := pipelineOptions(cmd)
	if err != nil {
		return err
	}
	if flagForecastJSON {
		flagQuiet = true
	}
	txs, result, err := loadFiltered()
	if err != nil || len(txs) == 0 {
		return err
	}

	r := pipeline.Run(txs, opts)
	logReport(r, opts)

	if flagForecastJSON {
		return writeForecastJSON(r, opts)
	}

	fc := r.Forecast
	closing := r.ClosingBalance()

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("FORECAST  %s, %d days", opts.Forecast.Mode, len(fc.Points))))
	fmt.Println()

	outcome := string(fc.Outcome)
	if fc.Outcome != forecast.OutcomeFitted {
		outcome = cli.Warn(outcome)
	}
	fmt.Printf("  Outcome:  %s\n", outcome)
	if len(fc.Chunks) > 0 {
		fmt.Printf("  Chunks:   %s\n", joinOutcomes(fc.Chunks))
	}
	fmt.Printf("  Balance:  %s on %s\n", cli.FormatAmount(closing), cli.FormatDate(r.Totals.LastDate))
	if r.Dropped > 0 {
		fmt.Printf("  Cleaning: %d outliers dropped\n", r.Dropped)
	}
	if r.Planned > 0 {
		fmt.Printf("  Planned:  %d occurrences inside the horizon\n", r.Planned)
	}
	fmt.Println()

	if len(fc.Points) == 0 {
		fmt.Println("  Not enough history for this mode; try --mode linear or a longer range.")
		return nil
	}

	fmt.Printf("  %s %s\n\n",
		cli.RenderSparkline(model.Values(r.Cleaned)),
		cli.Forecast(cli.RenderSparkline(model.ForecastValues(fc.Points))))

	every := max(flagForecastEvery, 1)
	var rows [][]string
	for i := every - 1; i < len(fc.Points); i += every {
		rows = append(rows, forecastRow(fc.Points[i], closing))
	}
	if last := len(fc.Points) - 1; (last+1)%every != 0 {
		rows = append(rows, forecastRow(fc.Points[last], closing))
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Balance", "vs today"},
		Rows:    rows,
	}))

	warnParseProblems(result)
	return nil
}

func forecastRow(p model.ForecastPoint, closing float64) []string {
	delta := p.Value - closing
	return []string{cli.FormatDate(p.Date), cli.Forecast(cli.FormatAmount(p.Value)), cli.Signed(signedAmount(delta), delta >= 0)}
}

func joinOutcomes(outcomes []forecast.Outcome) string {
	parts := make([]string, len(outcomes))
	for i, o := range outcomes {
		parts[i] = string(o)
	}
	return strings.Join(parts, ", ")
}

func writeForecastJSON(r pipeline.Report, opts pipeline.Options) error {
	out := forecastJSON{
		Mode:            string(opts.Forecast.Mode),
		Outcome:         string(r.Forecast.Outcome),
		LastDate:        r.Totals.LastDate,
		Balance:         r.ClosingBalance(),
		DroppedOutliers: r.Dropped,
		Points:          make([]forecastDay, len(r.Forecast.Points)),
		Recommendations: r.Recommendations,
	}
	for _, c := range r.Forecast.Chunks {
		out.Chunks = append(out.Chunks, string(c))
	}
	for i, p := range r.Forecast.Points {
		out.Points[i] = forecastDay{Date: p.Date, Value: p.Value}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
