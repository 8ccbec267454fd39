package abtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ChiSquared(t *testing.T) {
	// classic 2x2 example: 30/100 vs 10/100 conversions
	stat, p, ok := chiSquared([][2]float64{
		{30, 70},
		{10, 90},
	})
	require.True(t, ok)
	assert.InDelta(t, 12.5, stat, 0.001)
	assert.Less(t, p, 0.001)

	// identical rows, no signal
	stat, p, ok = chiSquared([][2]float64{
		{20, 80},
		{20, 80},
	})
	require.True(t, ok)
	assert.InDelta(t, 0.0, stat, 0.0001)
	assert.InDelta(t, 1.0, p, 0.0001)

	// three variations
	_, p, ok = chiSquared([][2]float64{
		{25, 75},
		{22, 78},
		{24, 76},
	})
	require.True(t, ok)
	assert.Greater(t, p, 0.05)
}

func Test_ChiSquared_Degenerate(t *testing.T) {
	_, _, ok := chiSquared(nil)
	assert.False(t, ok)

	_, _, ok = chiSquared([][2]float64{{10, 90}})
	assert.False(t, ok)

	// empty row
	_, _, ok = chiSquared([][2]float64{
		{10, 90},
		{0, 0},
	})
	assert.False(t, ok)

	// empty column
	_, _, ok = chiSquared([][2]float64{
		{0, 90},
		{0, 80},
	})
	assert.False(t, ok)
}

func Test_GammaQ(t *testing.T) {
	// chi-squared survival values, 1 degree of freedom
	assert.InDelta(t, 0.05, gammaQ(0.5, 3.841/2), 0.001)
	assert.InDelta(t, 0.3173, gammaQ(0.5, 0.5), 0.001)
	assert.InDelta(t, 1.0, gammaQ(0.5, 0), 0.0001)

	// 2 degrees of freedom: Q = exp(-x/2)
	assert.InDelta(t, 0.0498, gammaQ(1, 6.0/2), 0.001)
}
