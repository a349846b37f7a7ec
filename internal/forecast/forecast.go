// Package forecast projects a cleaned daily balance series forward.
//
// All modes share the AR(1) primitive in ar.go and the fallback rules in
// policy.go. Inputs are never mutated.
package forecast

import (
	"fmt"
	"sort"
	"strings"

	"cloud.google.com/go/civil"

	"github.com/fincast/fincast/internal/model"
	"github.com/fincast/fincast/internal/series"
)

// Mode selects a forecasting strategy.
type Mode string

const (
	ModePlain     Mode = "plain"
	ModeSeasonal  Mode = "seasonal"
	ModeIterative Mode = "iterative"
	ModeLinear    Mode = "linear"
)

// Modes lists every mode in display order.
var Modes = []Mode{ModeIterative, ModeSeasonal, ModePlain, ModeLinear}

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Modes {
		if m == known {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown forecast mode %q", s)
}

// Next returns the mode after m in Modes, wrapping around.
func (m Mode) Next() Mode {
	for i, known := range Modes {
		if known == m {
			return Modes[(i+1)%len(Modes)]
		}
	}
	return Modes[0]
}

// Defaults used by DefaultParams.
const (
	DefaultSteps          = 60
	DefaultSeasonalPeriod = 30
	DefaultChunkSize      = 30
)

// Params configures Run.
type Params struct {
	Mode           Mode
	Steps          int
	SeasonalPeriod int
	ChunkSize      int
}

// DefaultParams returns the iterative 60-day forecast.
func DefaultParams() Params {
	return Params{
		Mode:           ModeIterative,
		Steps:          DefaultSteps,
		SeasonalPeriod: DefaultSeasonalPeriod,
		ChunkSize:      DefaultChunkSize,
	}
}

// Result is a forecast and the rule that produced it.
type Result struct {
	Points  []model.ForecastPoint
	Outcome Outcome
	// Chunks holds the per-chunk outcome of an iterative forecast.
	Chunks []Outcome
}

// Run dispatches on p.Mode. An unknown mode falls back to iterative.
func Run(points []model.DailyPoint, p Params) Result {
	if p.SeasonalPeriod <= 0 {
		p.SeasonalPeriod = DefaultSeasonalPeriod
	}
	switch p.Mode {
	case ModePlain:
		return Plain(points, p.Steps)
	case ModeSeasonal:
		return Seasonal(points, p.Steps, p.SeasonalPeriod)
	case ModeLinear:
		return Linear(points, p.Steps)
	default:
		return Iterative(points, p.Steps, p.ChunkSize, p.SeasonalPeriod)
	}
}

// Plain fits AR(1) to the series and forecasts steps days after its last date.
func Plain(points []model.DailyPoint, steps int) Result {
	values, last := prepare(points)
	if len(values) < 2 || steps <= 0 {
		return empty()
	}
	if isConstant(values) {
		return flat(ModePlain, values, last, steps)
	}

	pred, _ := FitAR1(values).Predict(steps)
	outcome := patchNaN(ModePlain, pred, values)
	return Result{Points: dated(last, pred), Outcome: outcome}
}

// Seasonal fits AR(1) to the lag-m differences and adds each predicted
// difference back onto the value one period earlier. A constant series is
// forecast flat even when it is shorter than one period.
func Seasonal(points []model.DailyPoint, steps, m int) Result {
	values, last := prepare(points)
	if len(values) >= 2 && steps > 0 && isConstant(values) {
		return flat(ModeSeasonal, values, last, steps)
	}
	if m <= 0 || len(values) < m+1 || steps <= 0 {
		return empty()
	}

	pred, outcome := seasonalChunk(ModeSeasonal, values, steps, m)
	return Result{Points: dated(last, pred), Outcome: outcome}
}

// Iterative builds a long horizon from seasonal chunks of at most chunkSize
// days. Each chunk is forecast from the history plus every chunk before it.
// The result's Outcome is the first non-fitted chunk outcome, if any.
func Iterative(points []model.DailyPoint, totalSteps, chunkSize, m int) Result {
	values, last := prepare(points)
	if len(values) < 2 || totalSteps <= 0 {
		return empty()
	}
	if isConstant(values) {
		return flat(ModeIterative, values, last, totalSteps)
	}
	if chunkSize <= 0 {
		chunkSize = totalSteps
	}
	if m <= 0 {
		m = DefaultSeasonalPeriod
	}

	base := make([]float64, len(values), len(values)+totalSteps)
	copy(base, values)
	res := Result{
		Points:  make([]model.ForecastPoint, 0, totalSteps),
		Outcome: OutcomeFitted,
	}
	cursor := last
	for remaining := totalSteps; remaining > 0; {
		size := min(remaining, chunkSize)
		chunk, outcome := seasonalChunk(ModeIterative, base, size, m)

		res.Chunks = append(res.Chunks, outcome)
		if res.Outcome == OutcomeFitted {
			res.Outcome = outcome
		}
		res.Points = append(res.Points, dated(cursor, chunk)...)
		base = append(base, chunk...)
		cursor = cursor.AddDays(size)
		remaining -= size
	}
	return res
}

// Linear extends the least-squares trend over the day index.
func Linear(points []model.DailyPoint, steps int) Result {
	values, last := prepare(points)
	n := len(values)
	if n < 2 || steps <= 0 {
		return empty()
	}
	if isConstant(values) {
		return flat(ModeLinear, values, last, steps)
	}

	slope, intercept := leastSquares(values)
	pred := make([]float64, steps)
	for i := range pred {
		pred[i] = intercept + slope*float64(n+i)
	}
	outcome := patchNaN(ModeLinear, pred, values)
	return Result{Points: dated(last, pred), Outcome: outcome}
}

// seasonalChunk forecasts steps values after base from its lag-m differences.
func seasonalChunk(mode Mode, base []float64, steps, m int) ([]float64, Outcome) {
	n := len(base)
	if n < m+1 {
		return substitute(Policy(mode, OutcomeShortBase), steps, base), OutcomeShortBase
	}

	diffs := series.SeasonalDifferences(base, m)
	dhat, _ := FitAR1(diffs).Predict(steps)
	outcome := patchNaN(mode, dhat, diffs)

	out := make([]float64, steps)
	for i := range out {
		idx := min(n-m+i, n-1)
		out[i] = base[idx] + dhat[i]
	}
	return out, outcome
}

// patchNaN discards pred in place when any element is NaN, overwriting the
// whole vector with the mode's flat substitute.
func patchNaN(mode Mode, pred, history []float64) Outcome {
	if !hasNaN(pred) {
		return OutcomeFitted
	}
	copy(pred, substitute(Policy(mode, OutcomeNaN), len(pred), history))
	return OutcomeNaN
}

// leastSquares fits values[i] = intercept + slope*i.
func leastSquares(values []float64) (slope, intercept float64) {
	n := float64(len(values))
	var sx, sy, sxy, sxx float64
	for i, v := range values {
		x := float64(i)
		sx += x
		sy += v
		sxy += x * v
		sxx += x * x
	}
	slope = (n*sxy - sx*sy) / (n*sxx - sx*sx)
	intercept = (sy - slope*sx) / n
	return slope, intercept
}

func prepare(points []model.DailyPoint) ([]float64, civil.Date) {
	if len(points) == 0 {
		return nil, civil.Date{}
	}
	sorted := make([]model.DailyPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})
	return model.Values(sorted), sorted[len(sorted)-1].Date
}

func empty() Result {
	return Result{Points: []model.ForecastPoint{}, Outcome: OutcomeInsufficient}
}

func flat(mode Mode, values []float64, last civil.Date, steps int) Result {
	return Result{
		Points:  dated(last, substitute(Policy(mode, OutcomeConstant), steps, values)),
		Outcome: OutcomeConstant,
	}
}

// dated assigns consecutive calendar days after last.
func dated(last civil.Date, values []float64) []model.ForecastPoint {
	out := make([]model.ForecastPoint, len(values))
	for i, v := range values {
		out[i] = model.ForecastPoint{Date: last.AddDays(i + 1), Value: v}
	}
	return out
}
