package forecast

import (
	"math"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

var day0 = civil.Date{Year: 2024, Month: 1, Day: 1}

func seriesOf(values ...float64) []model.DailyPoint {
	out := make([]model.DailyPoint, len(values))
	for i, v := range values {
		out[i] = model.DailyPoint{Date: day0.AddDays(i), Value: v}
	}
	return out
}

func ramp(n int, start, step float64) []model.DailyPoint {
	values := make([]float64, n)
	for i := range values {
		values[i] = start + step*float64(i)
	}
	return seriesOf(values...)
}

func assertConsecutive(t *testing.T, after civil.Date, pts []model.ForecastPoint) {
	t.Helper()
	for i, p := range pts {
		require.Equal(t, after.AddDays(i+1), p.Date, "point %d", i)
	}
}

func allModes(steps int) []Params {
	out := make([]Params, 0, len(Modes))
	for _, m := range Modes {
		out = append(out, Params{Mode: m, Steps: steps, SeasonalPeriod: 7, ChunkSize: 5})
	}
	return out
}

func TestRun_ConstantSeriesEveryMode(t *testing.T) {
	in := seriesOf(100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
	for _, p := range allModes(12) {
		t.Run(string(p.Mode), func(t *testing.T) {
			res := Run(in, p)
			require.Len(t, res.Points, 12)
			assert.Equal(t, OutcomeConstant, res.Outcome)
			for _, pt := range res.Points {
				assert.Equal(t, 100.0, pt.Value)
			}
			assertConsecutive(t, day0.AddDays(9), res.Points)
		})
	}
}

func TestRun_ConstantShorterThanPeriodIsFlat(t *testing.T) {
	in := seriesOf(100, 100, 100, 100, 100, 100, 100, 100, 100, 100)
	for _, m := range Modes {
		t.Run(string(m), func(t *testing.T) {
			p := DefaultParams()
			p.Mode, p.Steps = m, 12
			require.Equal(t, 30, p.SeasonalPeriod)

			res := Run(in, p)
			require.Len(t, res.Points, 12)
			assert.Equal(t, OutcomeConstant, res.Outcome)
			for _, pt := range res.Points {
				assert.Equal(t, 100.0, pt.Value)
			}
		})
	}
}

func TestRun_SingleValueIsEmpty(t *testing.T) {
	for _, p := range allModes(10) {
		t.Run(string(p.Mode), func(t *testing.T) {
			res := Run(seriesOf(42), p)
			assert.NotNil(t, res.Points)
			assert.Empty(t, res.Points)
			assert.Equal(t, OutcomeInsufficient, res.Outcome)
		})
	}
}

func TestRun_EmptyAndZeroHorizon(t *testing.T) {
	for _, p := range allModes(10) {
		assert.Empty(t, Run(nil, p).Points, p.Mode)

		p.Steps = 0
		assert.Empty(t, Run(ramp(20, 0, 1), p).Points, p.Mode)
	}
}

func TestSeasonal_NeedsOneFullPeriod(t *testing.T) {
	res := Seasonal(ramp(7, 0, 1), 5, 7)
	assert.Empty(t, res.Points)
	assert.Equal(t, OutcomeInsufficient, res.Outcome)

	// One period plus one day leaves a single difference, predicted at
	// every step.
	res = Seasonal(ramp(8, 0, 1), 5, 7)
	require.Len(t, res.Points, 5)
	assert.Equal(t, OutcomeFitted, res.Outcome)
	for i, p := range res.Points {
		assert.InDelta(t, float64(8+i), p.Value, 1e-9, "step %d", i)
	}
}

func TestFitAR1_SingleValue(t *testing.T) {
	pred, _ := FitAR1([]float64{7}).Predict(3)
	assert.Equal(t, []float64{7, 7, 7}, pred)
}

func TestSeasonal_RepeatsWeeklyPattern(t *testing.T) {
	week := []float64{10, 20, 30, 40, 30, 20, 10}
	var values []float64
	for range 4 {
		values = append(values, week...)
	}
	res := Seasonal(seriesOf(values...), 7, 7)
	require.Len(t, res.Points, 7)
	assert.Equal(t, OutcomeFitted, res.Outcome)
	assert.InDeltaSlice(t, week, model.ForecastValues(res.Points), 1e-9)
}

func TestSeasonal_ClampsBaseIndexBeyondHistory(t *testing.T) {
	// Seasonal differences are a constant +7 per week, so every predicted
	// difference is 7. Past one period the base index is clamped to the last
	// observed value.
	res := Seasonal(ramp(14, 0, 1), 10, 7)
	require.Len(t, res.Points, 10)
	got := model.ForecastValues(res.Points)
	for i := range 7 {
		assert.InDelta(t, float64(7+i)+7, got[i], 1e-9)
	}
	for i := 7; i < 10; i++ {
		assert.InDelta(t, 13.0+7, got[i], 1e-9)
	}
}

func TestIterative_ChunksAreContinuous(t *testing.T) {
	in := ramp(90, 1000, -3)
	res := Iterative(in, 60, 30, 30)
	require.Len(t, res.Points, 60)
	assertConsecutive(t, day0.AddDays(89), res.Points)
	assert.Len(t, res.Chunks, 2)
	for _, pt := range res.Points {
		assert.False(t, math.IsNaN(pt.Value))
	}
}

func TestIterative_UnevenLastChunk(t *testing.T) {
	res := Iterative(ramp(40, 0, 1), 25, 10, 7)
	require.Len(t, res.Points, 25)
	assert.Len(t, res.Chunks, 3)
	assertConsecutive(t, day0.AddDays(39), res.Points)
}

func TestIterative_ShortBaseIsFlat(t *testing.T) {
	res := Iterative(seriesOf(5, 8, 6), 10, 5, 30)
	require.Len(t, res.Points, 10)
	assert.Equal(t, OutcomeShortBase, res.Outcome)
	for _, pt := range res.Points {
		assert.Equal(t, 6.0, pt.Value)
	}
}

func TestIterative_NonPositiveChunkIsOneChunk(t *testing.T) {
	res := Iterative(ramp(40, 0, 1), 12, 0, 7)
	assert.Len(t, res.Points, 12)
	assert.Len(t, res.Chunks, 1)
}

func TestPlain_TrendAndDates(t *testing.T) {
	res := Plain(ramp(30, 10, 1), 4)
	require.Len(t, res.Points, 4)
	assert.Equal(t, OutcomeFitted, res.Outcome)
	assert.InDeltaSlice(t, []float64{40, 41, 42, 43}, model.ForecastValues(res.Points), 1e-3)
	assertConsecutive(t, day0.AddDays(29), res.Points)
}

func TestPlain_SortsInputCopy(t *testing.T) {
	in := ramp(10, 0, 1)
	in[0], in[9] = in[9], in[0]
	res := Plain(in, 1)
	require.Len(t, res.Points, 1)
	assert.Equal(t, day0.AddDays(10), res.Points[0].Date)
	assert.Equal(t, day0.AddDays(9), in[0].Date, "input must not be reordered")
}

func TestLinear_ExtendsTrend(t *testing.T) {
	res := Linear(seriesOf(1, 3, 5, 7), 3)
	assert.InDeltaSlice(t, []float64{9, 11, 13}, model.ForecastValues(res.Points), 1e-9)
}

func TestPatchNaN(t *testing.T) {
	tests := []struct {
		mode Mode
		want float64
	}{
		{ModePlain, 4},
		{ModeLinear, 4},
		{ModeSeasonal, 0},
		{ModeIterative, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			pred := []float64{1, math.NaN(), 3}
			got := patchNaN(tt.mode, pred, []float64{2, 4})
			assert.Equal(t, OutcomeNaN, got)
			assert.Equal(t, []float64{tt.want, tt.want, tt.want}, pred)
		})
	}

	assert.Equal(t, OutcomeFitted, patchNaN(ModePlain, []float64{1, 2}, []float64{1}))
}

func TestPolicy_Table(t *testing.T) {
	assert.Equal(t, SubEmpty, Policy(ModeSeasonal, OutcomeInsufficient))
	assert.Equal(t, SubLastValue, Policy(ModeIterative, OutcomeShortBase))
	assert.Equal(t, SubNone, Policy(ModePlain, OutcomeShortBase))
	assert.Equal(t, SubNone, Policy(Mode("other"), OutcomeNaN))
}

func TestParseModeAndNext(t *testing.T) {
	m, err := ParseMode(" Seasonal ")
	require.NoError(t, err)
	assert.Equal(t, ModeSeasonal, m)

	_, err = ParseMode("arima")
	assert.Error(t, err)

	seen := map[Mode]bool{}
	m = ModeIterative
	for range Modes {
		seen[m] = true
		m = m.Next()
	}
	assert.Len(t, seen, len(Modes))
	assert.Equal(t, ModeIterative, m)
}

func TestRun_DefaultsMatchDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, ModeIterative, p.Mode)
	assert.Equal(t, 60, p.Steps)

	res := Run(ramp(120, 500, 2), p)
	assert.Len(t, res.Points, 60)
}
