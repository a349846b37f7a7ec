package model

import "cloud.google.com/go/civil"

// DailyPoint is one calendar day of a measured quantity, usually a running
// balance. Missing marks a value that has not been filled yet.
type DailyPoint struct {
	Date    civil.Date
	Value   float64
	Missing bool
}

// ForecastPoint is one predicted day after the last known date.
type ForecastPoint struct {
	Date  civil.Date
	Value float64
}

// Values extracts the value column of a series.
func Values(points []DailyPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}

// ForecastValues extracts the value column of a forecast.
func ForecastValues(points []ForecastPoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Value
	}
	return out
}
