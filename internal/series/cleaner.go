// Package series fills, de-noises and differences daily series before they
// reach the forecast engine. Every function returns a new slice.
package series

import (
	"math"

	"github.com/fincast/fincast/internal/model"

	"gonum.org/v1/gonum/stat"
)

// Outlier thresholds, in population standard deviations.
const (
	GenericOutlierK = 3.0 // generic preprocessing path
	BudgetOutlierK  = 5.0 // balance series
)

// GapFill selects how missing values are resolved.
type GapFill string

const (
	// GapFillCompat is the single-pass neighbour average.
	GapFillCompat GapFill = "compat"
	// GapFillLinear interpolates across whole gaps.
	GapFillLinear GapFill = "linear"
)

// CleanOptions controls Clean.
type CleanOptions struct {
	OutlierK float64
	GapFill  GapFill
}

// DefaultCleanOptions is the balance-series preset.
func DefaultCleanOptions() CleanOptions {
	return CleanOptions{OutlierK: BudgetOutlierK, GapFill: GapFillCompat}
}

// FillGaps resolves missing values in one left-to-right pass.
//
// An interior gap takes the mean of its neighbours, the first point copies the
// second, the last copies the one before it, and a lone point becomes 0. The
// predecessor has already been resolved by the pass; a successor that is still
// missing counts as 0. Runs of two or more gaps are therefore only partially
// corrected. Use InterpolateGaps for a full fill.
func FillGaps(points []model.DailyPoint) []model.DailyPoint {
	out := make([]model.DailyPoint, len(points))
	copy(out, points)

	n := len(out)
	for i := range out {
		if !out[i].Missing {
			continue
		}
		switch {
		case n == 1:
			out[i].Value = 0
			out[i].Missing = false
		case i == 0:
			// copies the successor as-is, including a missing flag
			out[i].Value = out[1].Value
			out[i].Missing = out[1].Missing
		case i == n-1:
			out[i].Value = out[n-2].Value
			out[i].Missing = out[n-2].Missing
		default:
			out[i].Value = (presentOrZero(out[i-1]) + presentOrZero(out[i+1])) / 2
			out[i].Missing = false
		}
	}
	return out
}

func presentOrZero(p model.DailyPoint) float64 {
	if p.Missing {
		return 0
	}
	return p.Value
}

// InterpolateGaps fills every missing run by linear interpolation between
// the nearest present values. Leading and trailing runs take the nearest
// present value; a series with no present value becomes all zeros.
func InterpolateGaps(points []model.DailyPoint) []model.DailyPoint {
	out := make([]model.DailyPoint, len(points))
	copy(out, points)

	prev := -1
	for i := 0; i <= len(out); i++ {
		if i < len(out) && out[i].Missing {
			continue
		}
		// out[prev+1 : i] is a gap
		if i-prev > 1 {
			fillRun(out, prev, i)
		}
		prev = i
	}
	return out
}

func fillRun(out []model.DailyPoint, left, right int) {
	n := len(out)
	switch {
	case left < 0 && right >= n:
		for j := range out {
			out[j].Value, out[j].Missing = 0, false
		}
	case left < 0:
		for j := 0; j < right; j++ {
			out[j].Value, out[j].Missing = out[right].Value, false
		}
	case right >= n:
		for j := left + 1; j < n; j++ {
			out[j].Value, out[j].Missing = out[left].Value, false
		}
	default:
		a, b := out[left].Value, out[right].Value
		span := float64(right - left)
		for j := left + 1; j < right; j++ {
			frac := float64(j-left) / span
			out[j].Value, out[j].Missing = a+(b-a)*frac, false
		}
	}
}

// Moments returns the population mean and standard deviation of the values.
func Moments(points []model.DailyPoint) (mean, sd float64) {
	if len(points) == 0 {
		return 0, 0
	}
	mean, variance := stat.PopMeanVariance(model.Values(points), nil)
	return mean, math.Sqrt(variance)
}

// RemoveOutliers drops points outside [mean-k*sd, mean+k*sd] using the
// population standard deviation. Dropped days are not re-filled, so the
// result may have date gaps. The result can be empty; see Clean.
func RemoveOutliers(points []model.DailyPoint, k float64) []model.DailyPoint {
	if len(points) == 0 {
		return []model.DailyPoint{}
	}
	mean, sd := Moments(points)
	lo, hi := mean-k*sd, mean+k*sd

	out := make([]model.DailyPoint, 0, len(points))
	for _, p := range points {
		if p.Value < lo || p.Value > hi {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Clean fills gaps and then removes outliers. When outlier removal would
// leave nothing, the filled series is returned unchanged. dropped counts the
// removed points.
func Clean(points []model.DailyPoint, opts CleanOptions) (cleaned []model.DailyPoint, dropped int) {
	var filled []model.DailyPoint
	if opts.GapFill == GapFillLinear {
		filled = InterpolateGaps(points)
	} else {
		filled = FillGaps(points)
	}

	k := opts.OutlierK
	if k <= 0 {
		k = BudgetOutlierK
	}
	kept := RemoveOutliers(filled, k)
	if len(kept) == 0 {
		return filled, 0
	}
	return kept, len(filled) - len(kept)
}
