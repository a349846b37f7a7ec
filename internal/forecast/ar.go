package forecast

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

const (
	maxIterations = 200
	tolerance     = 1e-10
)

// AR1 is a fitted first-order autoregression
//
//	y[t] = Intercept + Phi*y[t-1] + e[t],  y = x - Center
//
// where Center is the sample mean of the training values.
type AR1 struct {
	Phi        float64
	Intercept  float64
	Center     float64
	Sigma      float64 // residual standard deviation
	Last       float64 // last training value, the forecast origin
	Iterations int
	Converged  bool
}

// FitAR1 fits an AR(1) model with a fixed-point solver: the slope and the
// intercept are updated alternately, each from the conditional least-squares
// equation given the other, until both stop moving. A constant series fits
// Phi = 0 and reproduces the constant. A single value is treated the same
// way, so a one-element series predicts that value at every step. Degenerate
// inputs produce NaN parameters, which surface as NaN predictions.
func FitAR1(values []float64) AR1 {
	n := len(values)
	if n == 0 {
		return AR1{Phi: math.NaN(), Intercept: math.NaN(), Center: math.NaN(), Last: math.NaN()}
	}
	m := AR1{Last: values[n-1]}
	if n == 1 || isConstant(values) {
		m.Center = values[0]
		m.Converged = true
		return m
	}

	m.Center = stat.Mean(values, nil)
	y := make([]float64, n)
	scale := 0.0
	for i, v := range values {
		y[i] = v - m.Center
		scale = math.Max(scale, math.Abs(y[i]))
	}

	var phi, c float64
	for it := 1; it <= maxIterations; it++ {
		var num, den float64
		for t := 1; t < n; t++ {
			num += (y[t] - c) * y[t-1]
			den += y[t-1] * y[t-1]
		}
		nextPhi := num / den

		var sum float64
		for t := 1; t < n; t++ {
			sum += y[t] - nextPhi*y[t-1]
		}
		nextC := sum / float64(n-1)

		dPhi, dC := math.Abs(nextPhi-phi), math.Abs(nextC-c)
		phi, c = nextPhi, nextC
		m.Iterations = it

		if !finite(phi) || !finite(c) {
			break
		}
		if dPhi < tolerance && dC <= tolerance*(1+scale) {
			m.Converged = true
			break
		}
	}
	m.Phi, m.Intercept = phi, c

	var ss float64
	for t := 1; t < n; t++ {
		r := y[t] - c - phi*y[t-1]
		ss += r * r
	}
	m.Sigma = math.Sqrt(ss / float64(n-1))
	return m
}

// Predict returns steps point forecasts after the training data and the
// standard error of each one.
func (m AR1) Predict(steps int) (pred, stderr []float64) {
	if steps <= 0 {
		return []float64{}, []float64{}
	}
	pred = make([]float64, steps)
	stderr = make([]float64, steps)

	y := m.Last - m.Center
	var acc float64
	pow := 1.0
	for h := 0; h < steps; h++ {
		y = m.Intercept + m.Phi*y
		pred[h] = y + m.Center

		acc += pow
		pow *= m.Phi * m.Phi
		stderr[h] = m.Sigma * math.Sqrt(acc)
	}
	return pred, stderr
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func hasNaN(values []float64) bool {
	for _, v := range values {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
