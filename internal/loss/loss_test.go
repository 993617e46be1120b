// Package loss provides unit tests for loss functions.
package loss

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMSEForward(t *testing.T) {
	tests := []struct {
		name  string
		pred  []float64
		truth []float64
		want  float64
	}{
		{"perfect", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"single", []float64{3}, []float64{1}, 4},
		{"mean", []float64{1, 2}, []float64{0, 0}, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MSE{}.Forward(tt.pred, tt.truth), 1e-12)
		})
	}
}

func TestMSEBackward(t *testing.T) {
	grad := MSE{}.Backward([]float64{3, 1}, []float64{1, 2})

	// (2/n) * (pred - true)
	assert.InDeltaSlice(t, []float64{2, -1}, grad, 1e-12)
}

func TestMSEBackwardInPlace(t *testing.T) {
	grad := make([]float64, 1)
	MSE{}.BackwardInPlace([]float64{5}, []float64{2}, grad)

	assert.InDelta(t, 6.0, grad[0], 1e-12)
}

func TestMSELengthMismatchPanics(t *testing.T) {
	assert.Panics(t, func() { MSE{}.Forward([]float64{1, 2}, []float64{1}) })
	assert.Panics(t, func() { MSE{}.BackwardInPlace([]float64{1}, []float64{1}, make([]float64, 2)) })
}

func TestMSEImplementsInterfaces(t *testing.T) {
	var l Loss = MSE{}
	_, ok := l.(BackwardInPlacer)

	assert.True(t, ok)
	assert.Equal(t, "MSE", Name(l))
}
