package series

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifferences(t *testing.T) {
	out := Differences(mk(f(10), f(15), f(12)))
	assert.Equal(t, []float64{0, 5, -3}, []float64{out[0].Value, out[1].Value, out[2].Value})
	assert.Equal(t, day0.AddDays(2), out[2].Date)

	single := Differences(mk(f(7)))
	assert.Equal(t, 7.0, single[0].Value)
}

func TestSeasonalDifferences(t *testing.T) {
	got := SeasonalDifferences([]float64{1, 2, 3, 4, 6, 9}, 3)
	assert.Equal(t, []float64{3, 4, 6}, got)

	assert.Nil(t, SeasonalDifferences([]float64{1, 2, 3}, 3))
	assert.Nil(t, SeasonalDifferences([]float64{1, 2, 3}, 0))
}
