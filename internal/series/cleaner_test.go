package series

import (
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fincast/fincast/internal/model"
)

var day0 = civil.Date{Year: 2024, Month: 1, Day: 1}

// mk builds a daily series; nil entries are missing.
func mk(values ...*float64) []model.DailyPoint {
	out := make([]model.DailyPoint, len(values))
	for i, v := range values {
		out[i].Date = day0.AddDays(i)
		if v == nil {
			out[i].Missing = true
			continue
		}
		out[i].Value = *v
	}
	return out
}

func f(v float64) *float64 { return &v }

func flat(n int, v float64) []model.DailyPoint {
	vals := make([]*float64, n)
	for i := range vals {
		vals[i] = f(v)
	}
	return mk(vals...)
}

func TestFillGaps_SingleInterior(t *testing.T) {
	out := FillGaps(mk(f(10), nil, f(20)))
	require.Len(t, out, 3)
	assert.False(t, out[1].Missing)
	assert.InDelta(t, 15.0, out[1].Value, 1e-12)
}

func TestFillGaps_Boundaries(t *testing.T) {
	out := FillGaps(mk(nil, f(20), f(30)))
	assert.Equal(t, 20.0, out[0].Value)
	assert.False(t, out[0].Missing)

	out = FillGaps(mk(f(20), f(30), nil))
	assert.Equal(t, 30.0, out[2].Value)
	assert.False(t, out[2].Missing)
}

func TestFillGaps_LoneMissingBecomesZero(t *testing.T) {
	out := FillGaps(mk(nil))
	require.Len(t, out, 1)
	assert.Equal(t, 0.0, out[0].Value)
	assert.False(t, out[0].Missing)
}

func TestFillGaps_ConsecutiveRunIsSinglePass(t *testing.T) {
	// [10, _, _, 40]: the first gap sees a missing successor (counts as 0),
	// the second sees the already-filled predecessor.
	out := FillGaps(mk(f(10), nil, nil, f(40)))
	assert.InDelta(t, 5.0, out[1].Value, 1e-12)
	assert.InDelta(t, 22.5, out[2].Value, 1e-12)
}

func TestFillGaps_DoesNotMutateInput(t *testing.T) {
	in := mk(f(10), nil, f(20))
	_ = FillGaps(in)
	assert.True(t, in[1].Missing)
	assert.Equal(t, 0.0, in[1].Value)
}

func TestInterpolateGaps(t *testing.T) {
	tests := []struct {
		name string
		in   []model.DailyPoint
		want []float64
	}{
		{"interior run", mk(f(10), nil, nil, f(40)), []float64{10, 20, 30, 40}},
		{"leading run", mk(nil, nil, f(5), f(6)), []float64{5, 5, 5, 6}},
		{"trailing run", mk(f(1), f(2), nil, nil), []float64{1, 2, 2, 2}},
		{"all missing", mk(nil, nil), []float64{0, 0}},
		{"nothing missing", mk(f(3), f(4)), []float64{3, 4}},
		{"empty", mk(), []float64{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := InterpolateGaps(tt.in)
			require.Len(t, out, len(tt.want))
			for i, w := range tt.want {
				assert.False(t, out[i].Missing, "index %d still missing", i)
				assert.InDelta(t, w, out[i].Value, 1e-12, "index %d", i)
			}
		})
	}
}

func TestRemoveOutliers_DropsSpike(t *testing.T) {
	// One spike among n equal points sits sqrt(n-1) population standard
	// deviations out, so five points never cross 3; use a longer run.
	in := flat(20, 10)
	in = append(in, model.DailyPoint{Date: day0.AddDays(20), Value: 1000})

	out := RemoveOutliers(in, GenericOutlierK)
	require.Len(t, out, 20)
	for _, p := range out {
		assert.Equal(t, 10.0, p.Value)
	}
}

func TestRemoveOutliers_SmallSampleKeepsEverything(t *testing.T) {
	out := RemoveOutliers(mk(f(10), f(10), f(10), f(10), f(1000)), GenericOutlierK)
	assert.Len(t, out, 5)
}

func TestRemoveOutliers_ConstantSeriesKept(t *testing.T) {
	out := RemoveOutliers(flat(7, 3), BudgetOutlierK)
	assert.Len(t, out, 7)
}

func TestRemoveOutliers_LeavesGapsInDates(t *testing.T) {
	in := flat(30, 100)
	in[10].Value = 100000

	out := RemoveOutliers(in, BudgetOutlierK)
	require.Len(t, out, 29)
	assert.Equal(t, day0.AddDays(9), out[9].Date)
	assert.Equal(t, day0.AddDays(11), out[10].Date)
}

func TestClean_FallsBackWhenEverythingDropped(t *testing.T) {
	// mean 2, sd 1: a tiny k rejects both points
	out, dropped := Clean(mk(f(1), f(3)), CleanOptions{OutlierK: 1e-9, GapFill: GapFillCompat})
	assert.Equal(t, 0, dropped)
	require.Len(t, out, 2)
	assert.Equal(t, 1.0, out[0].Value)
}

func TestClean_NonPositiveKUsesBudgetPreset(t *testing.T) {
	out, dropped := Clean(mk(f(1), f(2), f(3)), CleanOptions{})
	assert.Equal(t, 0, dropped)
	assert.Len(t, out, 3)
}

func TestClean_FillThenRemove(t *testing.T) {
	vals := make([]*float64, 0, 41)
	for i := 0; i < 40; i++ {
		vals = append(vals, f(50))
	}
	vals[5] = nil
	vals = append(vals, f(50000))

	out, dropped := Clean(mk(vals...), CleanOptions{OutlierK: GenericOutlierK, GapFill: GapFillCompat})
	assert.Equal(t, 1, dropped)
	require.Len(t, out, 40)
	assert.InDelta(t, 50.0, out[5].Value, 1e-12)
}

func TestMoments(t *testing.T) {
	mean, sd := Moments(mk(f(2), f(4), f(4), f(4), f(5), f(5), f(7), f(9)))
	assert.InDelta(t, 5.0, mean, 1e-12)
	assert.InDelta(t, 2.0, sd, 1e-12)

	mean, sd = Moments(nil)
	assert.Zero(t, mean)
	assert.Zero(t, sd)
}
