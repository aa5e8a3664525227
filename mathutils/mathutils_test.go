package mathutils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/floats"
)

func TestNormalize(t *testing.T) {
	v := []float64{1, 3}
	assert.True(t, Normalize(v))
	assert.Equal(t, []float64{0.25, 0.75}, v)

	z := []float64{0, 0, 0, 0}
	assert.False(t, Normalize(z))
	assert.Equal(t, []float64{0.25, 0.25, 0.25, 0.25}, z)

	bad := []float64{math.Inf(1), 1}
	assert.False(t, Normalize(bad))
	assert.Equal(t, []float64{0.5, 0.5}, bad)

	nan := []float64{math.NaN(), 1}
	assert.False(t, Normalize(nan))
}

func TestArgMaxLowestIndexWins(t *testing.T) {
	assert.Equal(t, 1, ArgMax([]float64{0.2, 0.4, 0.4}))
	assert.Equal(t, 0, ArgMax([]float64{0.5, 0.5}))
	assert.Equal(t, 2, ArgMax([]float64{0.1, 0.2, 0.7}))
}

func TestL1(t *testing.T) {
	assert.InDelta(t, 0.6, L1([]float64{0.2, 0.8}, []float64{0.5, 0.5}), 1e-12)
}

func TestRandomDistribution(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 100; i++ {
		v := make([]float64, 4)
		RandomDistribution(rng, v)
		assert.InDelta(t, 1.0, floats.Sum(v), 1e-12)
		for _, x := range v {
			assert.Greater(t, x, 0.0)
		}
	}
}

func TestMulScaled(t *testing.T) {
	acc := []float64{1, 1}
	logScale := 0.0
	for i := 0; i < 2000; i++ { // Would underflow without rescaling.
		logScale += MulScaled(acc, []float64{0.5, 0.25})
	}
	require.Equal(t, 1.0, acc[0])
	assert.InDelta(t, 2000*math.Log(0.5), logScale, 1e-6)
	assert.Equal(t, 0.0, acc[1]) // (1/2)^2000 relative; far below float range.

	dead := []float64{1, 1}
	assert.True(t, math.IsInf(MulScaled(dead, []float64{0, 0}), -1))
}

func TestAffinity(t *testing.T) {
	c := NewAffinity([][]float64{{4, 1}, {1.5, 2}})
	assert.Equal(t, 1.25, c.At(0, 1))
	assert.Equal(t, 1.25, c.At(1, 0))

	dst := make([]float64, 2)
	c.MulVecTo(dst, []float64{0.5, 0.5})
	assert.InDelta(t, 2.625, dst[0], 1e-12)
	assert.InDelta(t, 1.625, dst[1], 1e-12)

	assert.InDelta(t, 2.125, c.Quad([]float64{0.5, 0.5}), 1e-12)
}
