package forecast

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitAR1_Constant(t *testing.T) {
	m := FitAR1([]float64{7, 7, 7, 7})
	assert.Equal(t, 0.0, m.Phi)
	assert.True(t, m.Converged)

	pred, stderr := m.Predict(5)
	for i := range pred {
		assert.Equal(t, 7.0, pred[i])
		assert.Equal(t, 0.0, stderr[i])
	}
}

func TestFitAR1_LinearTrendContinues(t *testing.T) {
	values := make([]float64, 40)
	for i := range values {
		values[i] = 100 + 2*float64(i)
	}
	m := FitAR1(values)
	require.True(t, m.Converged)
	assert.InDelta(t, 1.0, m.Phi, 1e-6)
	assert.InDelta(t, 0.0, m.Sigma, 1e-6)

	pred, _ := m.Predict(3)
	assert.InDeltaSlice(t, []float64{180, 182, 184}, pred, 1e-4)
}

func TestFitAR1_RecoversCoefficient(t *testing.T) {
	// AR(1) with phi=0.6 around 50, driven by a seeded LCG in [-5, 5).
	values := make([]float64, 400)
	values[0] = 50
	var state uint32 = 1
	for i := 1; i < len(values); i++ {
		state = state*1103515245 + 12345
		shock := float64((state>>16)%1000)/100 - 5
		values[i] = 50 + 0.6*(values[i-1]-50) + shock
	}
	m := FitAR1(values)
	require.True(t, m.Converged)
	assert.InDelta(t, 0.6, m.Phi, 0.1)

	pred, stderr := m.Predict(200)
	mean := m.Center + m.Intercept/(1-m.Phi)
	assert.InDelta(t, mean, pred[199], 1e-6, "long-horizon forecast reverts to the process mean")
	assert.Greater(t, stderr[10], stderr[0])
}

func TestFitAR1_Degenerate(t *testing.T) {
	pred, _ := FitAR1(nil).Predict(2)
	for _, v := range pred {
		assert.True(t, math.IsNaN(v))
	}

	pred, _ = FitAR1([]float64{3}).Predict(2)
	assert.Equal(t, []float64{3, 3}, pred)
}

func TestAR1_PredictNonPositiveSteps(t *testing.T) {
	pred, stderr := FitAR1([]float64{1, 2, 3}).Predict(0)
	assert.Empty(t, pred)
	assert.Empty(t, stderr)
}
