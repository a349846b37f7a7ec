package series

import "github.com/fincast/fincast/internal/model"

// Differences returns first differences with the first day set to 0.
// Series shorter than two points are returned as a copy.
func Differences(points []model.DailyPoint) []model.DailyPoint {
	out := make([]model.DailyPoint, len(points))
	copy(out, points)
	if len(points) < 2 {
		return out
	}
	out[0].Value = 0
	for i := 1; i < len(points); i++ {
		out[i].Value = points[i].Value - points[i-1].Value
	}
	return out
}

// SeasonalDifferences returns d[i] = x[i] - x[i-m] for i = m..len-1.
// It returns nil when m is not positive or the series is too short.
func SeasonalDifferences(values []float64, m int) []float64 {
	if m <= 0 || len(values) <= m {
		return nil
	}
	out := make([]float64, 0, len(values)-m)
	for i := m; i < len(values); i++ {
		out = append(out, values[i]-values[i-m])
	}
	return out
}
