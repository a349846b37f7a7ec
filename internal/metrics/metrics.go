// Package metrics compares forecasts against what actually happened.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Report bundles the accuracy measures of one forecast.
type Report struct {
	MAPE    float64 `json:"mape"` // percent
	RMSE    float64 `json:"rmse"`
	Pearson float64 `json:"pearson"`
	Pairs   int     `json:"pairs"`
}

// Pearson returns the correlation coefficient of x and y. It is 0 when the
// lengths differ, the input is empty, or either side has no variance.
func Pearson(x, y []float64) float64 {
	if len(x) != len(y) || len(x) == 0 {
		return 0
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// MAPE is the mean absolute percentage error over paired indices, skipping
// days where the actual value is zero. It returns 0 when nothing is left.
func MAPE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	var sum float64
	var count int
	for i := 0; i < n; i++ {
		if actual[i] == 0 {
			continue
		}
		sum += math.Abs((actual[i] - predicted[i]) / actual[i])
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count) * 100
}

// RMSE is the root mean squared error over paired indices.
func RMSE(actual, predicted []float64) float64 {
	n := min(len(actual), len(predicted))
	if n == 0 {
		return 0
	}
	return floats.Distance(actual[:n], predicted[:n], 2) / math.Sqrt(float64(n))
}

// Evaluate truncates both series to their common length and scores them.
func Evaluate(actual, predicted []float64) Report {
	n := min(len(actual), len(predicted))
	actual, predicted = actual[:n], predicted[:n]
	return Report{
		MAPE:    MAPE(actual, predicted),
		RMSE:    RMSE(actual, predicted),
		Pearson: Pearson(actual, predicted),
		Pairs:   n,
	}
}
