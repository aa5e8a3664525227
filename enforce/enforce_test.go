package enforce

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnforce(t *testing.T) {
	assert.NotPanics(t, func() { ENFORCE(true) })
	assert.NotPanics(t, func() { ENFORCE(nil) })
	assert.Panics(t, func() { ENFORCE(false, "boom") })
	assert.Panics(t, func() { ENFORCE(errors.New("bad")) })
	assert.Panics(t, func() { ENFORCE("always") })
	assert.Panics(t, func() { ENFORCE(3) })
}

func TestDistribution(t *testing.T) {
	assert.NotPanics(t, func() { Distribution([]float64{0.25, 0.75}, 1e-9) })
	assert.NotPanics(t, func() { Distribution([]float64{1, 0}, 1e-9) })
	assert.Panics(t, func() { Distribution([]float64{0.5, 0.4}, 1e-9) })
	assert.Panics(t, func() { Distribution([]float64{1.5, -0.5}, 1e-9) })
}

func TestSymmetric(t *testing.T) {
	assert.NotPanics(t, func() { Symmetric([]float64{1, 2, 2, 3}, 2, 1e-12) })
	assert.Panics(t, func() { Symmetric([]float64{1, 2, 2.1, 3}, 2, 1e-12) })
	assert.Panics(t, func() { Symmetric([]float64{1, 2, 3}, 2, 1e-12) })
}
