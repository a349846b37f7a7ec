package pipeline

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/fincast/fincast/internal/advice"
	"github.com/fincast/fincast/internal/forecast"
	"github.com/fincast/fincast/internal/metrics"
	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/series"
)

// Options configures Run and Backtest.
type Options struct {
	Forecast forecast.Params
	Clean    series.CleanOptions
	// IncludePlanned feeds planned transactions into the balance history.
	IncludePlanned bool
	// OverlayPlanned adds planned transactions inside the horizon onto the
	// forecast. Ignored when IncludePlanned is set.
	OverlayPlanned bool
}

// DefaultOptions returns the iterative forecast over the real balance with
// planned transactions overlaid.
func DefaultOptions() Options {
	return Options{
		Forecast:       forecast.DefaultParams(),
		Clean:          series.DefaultCleanOptions(),
		OverlayPlanned: true,
	}
}

// Report is the outcome of one pass through the pipeline.
type Report struct {
	Totals   model.Totals
	Balances []model.DailyPoint
	Cleaned  []model.DailyPoint
	Dropped  int
	Forecast forecast.Result
	// Planned counts planned occurrences that fall inside the horizon.
	Planned         int
	ForecastIncome  decimal.Decimal
	ForecastExpense decimal.Decimal
	Recommendations []string
}

// ClosingBalance is the last value of the balance history, or zero.
func (r Report) ClosingBalance() float64 {
	if len(r.Balances) == 0 {
		return 0
	}
	return r.Balances[len(r.Balances)-1].Value
}

// ForecastEnd is the last forecast value, or the closing balance when the
// forecast is empty.
func (r Report) ForecastEnd() float64 {
	if n := len(r.Forecast.Points); n > 0 {
		return r.Forecast.Points[n-1].Value
	}
	return r.ClosingBalance()
}

// Run builds balances, cleans them, forecasts and derives recommendations.
func Run(txs []model.Transaction, opts Options) Report {
	r := Report{Totals: ComputeTotals(txs)}

	r.Balances = ComputeDailyBalances(txs, opts.IncludePlanned)
	r.Cleaned, r.Dropped = series.Clean(r.Balances, opts.Clean)
	r.Forecast = forecast.Run(r.Cleaned, opts.Forecast)

	planned := plannedInHorizon(txs, r.Forecast.Points)
	r.Planned = len(planned)
	if opts.OverlayPlanned && !opts.IncludePlanned && len(planned) > 0 {
		r.Forecast.Points = OverlayPlanned(r.Forecast.Points, planned)
	}

	if len(planned) > 0 {
		pt := ComputeTotals(planned)
		r.ForecastIncome, r.ForecastExpense = pt.PlannedIncome, pt.PlannedExpense
	} else {
		r.ForecastIncome, r.ForecastExpense = forecastMoves(r.Cleaned, r.Forecast.Points)
	}

	r.Recommendations = advice.Recommend(r.Totals.RealIncome, r.Totals.RealExpense, r.ForecastIncome, r.ForecastExpense)
	return r
}

// OverlayPlanned adds the net of planned transactions dated on each forecast
// day to that day and every later one. Transactions outside the forecast
// range are ignored.
func OverlayPlanned(points []model.ForecastPoint, txs []model.Transaction) []model.ForecastPoint {
	out := make([]model.ForecastPoint, len(points))
	copy(out, points)
	if len(out) == 0 {
		return out
	}

	first, last := out[0].Date, out[len(out)-1].Date
	byDay := make(map[civil.Date]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsPlanned || tx.Date.Before(first) || tx.Date.After(last) {
			continue
		}
		byDay[tx.Date] = byDay[tx.Date].Add(tx.Signed())
	}

	running := decimal.Zero
	for i := range out {
		if net, ok := byDay[out[i].Date]; ok {
			running = running.Add(net)
		}
		out[i].Value += running.InexactFloat64()
	}
	return out
}

// plannedInHorizon expands recurring planned transactions through the last
// forecast day and keeps the occurrences dated inside the forecast.
func plannedInHorizon(txs []model.Transaction, points []model.ForecastPoint) []model.Transaction {
	if len(points) == 0 {
		return nil
	}
	first, last := points[0].Date, points[len(points)-1].Date

	var planned []model.Transaction
	for _, tx := range txs {
		if tx.IsPlanned {
			planned = append(planned, tx)
		}
	}
	var in []model.Transaction
	for _, tx := range ExpandRecurring(planned, last) {
		if !tx.Date.Before(first) && !tx.Date.After(last) {
			in = append(in, tx)
		}
	}
	return in
}

// forecastMoves splits the day-over-day changes of the forecast, starting
// from the last history value, into gains and losses.
func forecastMoves(history []model.DailyPoint, points []model.ForecastPoint) (gain, loss decimal.Decimal) {
	if len(points) == 0 {
		return decimal.Zero, decimal.Zero
	}
	prev := points[0].Value
	if len(history) > 0 {
		prev = history[len(history)-1].Value
	}
	var up, down float64
	for _, p := range points {
		if d := p.Value - prev; d > 0 {
			up += d
		} else {
			down -= d
		}
		prev = p.Value
	}
	return decimal.NewFromFloat(up).Round(2), decimal.NewFromFloat(down).Round(2)
}

// BacktestReport compares a forecast trained on data up to a cutoff with the
// balances that followed.
type BacktestReport struct {
	Cutoff   civil.Date
	Train    []model.DailyPoint
	Actual   []model.DailyPoint
	Forecast forecast.Result
	Metrics  metrics.Report
}

// Backtest trains on real transactions dated on or before cutoff, forecasts
// through the last real transaction date and scores the forecast against the
// real balance on the same days. Planned transactions are ignored.
func Backtest(txs []model.Transaction, cutoff civil.Date, opts Options) BacktestReport {
	br := BacktestReport{Cutoff: cutoff}

	var train []model.Transaction
	for _, tx := range txs {
		if !tx.IsPlanned && !tx.Date.After(cutoff) {
			train = append(train, tx)
		}
	}
	full := ComputeDailyBalances(txs, false)
	trainBalances := ComputeDailyBalances(train, false)
	if len(full) == 0 || len(trainBalances) == 0 {
		br.Forecast = forecast.Run(nil, opts.Forecast)
		return br
	}

	lastTrain := trainBalances[len(trainBalances)-1].Date
	for _, p := range full {
		if p.Date.After(lastTrain) {
			br.Actual = append(br.Actual, p)
		}
	}

	br.Train, _ = series.Clean(trainBalances, opts.Clean)
	params := opts.Forecast
	params.Steps = len(br.Actual)
	br.Forecast = forecast.Run(br.Train, params)

	predicted := make(map[civil.Date]float64, len(br.Forecast.Points))
	for _, p := range br.Forecast.Points {
		predicted[p.Date] = p.Value
	}
	var actual, pred []float64
	for _, p := range br.Actual {
		if v, ok := predicted[p.Date]; ok {
			actual = append(actual, p.Value)
			pred = append(pred, v)
		}
	}
	br.Metrics = metrics.Evaluate(actual, pred)
	return br
}
