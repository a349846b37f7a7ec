package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPearson(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
		want float64
	}{
		{"perfect", []float64{1, 2, 3, 4}, []float64{2, 4, 6, 8}, 1},
		{"inverse", []float64{1, 2, 3, 4}, []float64{8, 6, 4, 2}, -1},
		{"length mismatch", []float64{1, 2, 3}, []float64{1, 2}, 0},
		{"empty", nil, nil, 0},
		{"zero variance", []float64{5, 5, 5}, []float64{1, 2, 3}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Pearson(tt.x, tt.y), 1e-12)
		})
	}
}

func TestPearson_Symmetric(t *testing.T) {
	x := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	y := []float64{2, 7, 1, 8, 2, 8, 1, 8}
	assert.InDelta(t, Pearson(x, y), Pearson(y, x), 1e-12)
}

func TestMAPE(t *testing.T) {
	assert.InDelta(t, 10.0, MAPE([]float64{100, 200}, []float64{110, 180}), 1e-9)
	// zero actuals are skipped
	assert.InDelta(t, 50.0, MAPE([]float64{0, 10}, []float64{5, 5}), 1e-9)
	assert.Equal(t, 0.0, MAPE([]float64{0, 0}, []float64{1, 2}))
	// pairs over the shorter slice
	assert.InDelta(t, 10.0, MAPE([]float64{100}, []float64{90, 1, 1}), 1e-9)
}

func TestRMSE(t *testing.T) {
	assert.InDelta(t, 3.0, RMSE([]float64{0, 0}, []float64{3, -3}), 1e-9)
	assert.Equal(t, 0.0, RMSE(nil, []float64{1}))
	assert.InDelta(t, 0.0, RMSE([]float64{1, 2}, []float64{1, 2}), 1e-12)
}

func TestEvaluate(t *testing.T) {
	r := Evaluate([]float64{100, 200, 300}, []float64{100, 200, 300, 999})
	assert.Equal(t, 3, r.Pairs)
	assert.Equal(t, 0.0, r.MAPE)
	assert.Equal(t, 0.0, r.RMSE)
	assert.InDelta(t, 1.0, r.Pearson, 1e-12)
}
