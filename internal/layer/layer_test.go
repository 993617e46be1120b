// Package layer provides unit tests for neural network layers.
package layer

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/gasprice/internal/activations"
)

func TestDenseForward(t *testing.T) {
	// 2 inputs -> 2 outputs with identity weights
	d := NewDense(CPUDevice{}, 2, 2, activations.ReLU{}, Zeros)
	d.SetWeight(0, 0, 1.0)
	d.SetWeight(1, 1, 1.0)
	d.SetBias(1, -3.0)

	output := d.Forward([]float64{1.0, 2.0})

	// relu(1 + 0) = 1, relu(2 - 3) = 0
	assert.InDelta(t, 1.0, output[0], 1e-12)
	assert.InDelta(t, 0.0, output[1], 1e-12)
}

func TestDenseZeroInitOutputsZero(t *testing.T) {
	d := NewDense(CPUDevice{}, 3, 4, activations.Linear{}, nil)

	for _, v := range d.Forward([]float64{55, 14, 0.7}) {
		assert.Equal(t, 0.0, v)
	}
	for _, p := range d.Params() {
		assert.Equal(t, 0.0, p)
	}
}

func TestDenseBackward(t *testing.T) {
	d := NewDense(CPUDevice{}, 2, 1, activations.Linear{}, Zeros)
	d.SetWeight(0, 0, 2.0)
	d.SetWeight(0, 1, -1.0)

	d.Forward([]float64{3.0, 4.0})
	inputGrad := d.Backward([]float64{0.5})

	// dL/dx = dz * W, dL/dW = dz * x, dL/db = dz
	assert.InDeltaSlice(t, []float64{1.0, -0.5}, inputGrad, 1e-12)
	assert.InDeltaSlice(t, []float64{1.5, 2.0, 0.5}, d.Gradients(), 1e-12)
}

func TestDenseBackwardAccumulates(t *testing.T) {
	d := NewDense(CPUDevice{}, 2, 1, activations.Linear{}, Zeros)

	d.Forward([]float64{1.0, 2.0})
	d.Backward([]float64{1.0})
	d.Forward([]float64{3.0, 4.0})
	d.Backward([]float64{1.0})

	assert.InDeltaSlice(t, []float64{4.0, 6.0, 2.0}, d.Gradients(), 1e-12)

	d.ZeroGrad()
	for _, g := range d.Gradients() {
		assert.Equal(t, 0.0, g)
	}
}

func TestDenseReLUBlocksGradient(t *testing.T) {
	d := NewDense(CPUDevice{}, 1, 1, activations.ReLU{}, Zeros)
	d.SetWeight(0, 0, -1.0)

	d.Forward([]float64{2.0}) // pre-activation -2
	inputGrad := d.Backward([]float64{1.0})

	assert.Equal(t, 0.0, inputGrad[0])
	assert.InDeltaSlice(t, []float64{0, 0}, d.Gradients(), 1e-12)
}

func TestDenseParamsAndSetParams(t *testing.T) {
	d := NewDense(CPUDevice{}, 3, 2, activations.ReLU{}, KaimingUniform(rand.New(rand.NewSource(1))))

	params := d.Params()
	require.Len(t, params, 3*2+2)
	assert.Equal(t, d.NumParams(), len(params))

	newParams := make([]float64, len(params))
	for i := range newParams {
		newParams[i] = float64(i) * 0.1
	}
	d.SetParams(newParams)

	assert.InDeltaSlice(t, newParams, d.Params(), 1e-12)
	assert.InDelta(t, 0.1, d.GetWeight(0, 1), 1e-12)
	assert.InDelta(t, 0.7, d.GetBias(1), 1e-12)
}

func TestKaimingUniformBounds(t *testing.T) {
	d := NewDense(CPUDevice{}, 16, 8, activations.ReLU{}, KaimingUniform(rand.New(rand.NewSource(7))))

	bound := 1 / math.Sqrt(16)
	nonZero := 0
	for _, p := range d.Params() {
		assert.LessOrEqual(t, math.Abs(p), bound)
		if p != 0 {
			nonZero++
		}
	}
	assert.Greater(t, nonZero, 0)
}

func TestKaimingUniformDeterministic(t *testing.T) {
	a := NewDense(CPUDevice{}, 3, 16, activations.ReLU{}, KaimingUniform(rand.New(rand.NewSource(42))))
	b := NewDense(CPUDevice{}, 3, 16, activations.ReLU{}, KaimingUniform(rand.New(rand.NewSource(42))))

	assert.Equal(t, a.Params(), b.Params())
}

func TestDenseForwardBatchMatchesForward(t *testing.T) {
	d := NewDense(CPUDevice{}, 3, 4, activations.ReLU{}, KaimingUniform(rand.New(rand.NewSource(3))))

	rows := [][]float64{
		{1, 2, 3},
		{-1, 0.5, 2},
		{0, 0, 0},
	}
	x := mat.NewDense(len(rows), 3, nil)
	for i, r := range rows {
		x.SetRow(i, r)
	}

	out := d.ForwardBatch(x)
	r, c := out.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 4, c)

	for i, row := range rows {
		want := d.Forward(row)
		assert.InDeltaSlice(t, want, mat.Row(nil, i, out), 1e-12)
	}
}

func TestDenseForwardBatchShapePanics(t *testing.T) {
	d := NewDense(CPUDevice{}, 3, 1, activations.Linear{}, nil)

	assert.Panics(t, func() {
		d.ForwardBatch(mat.NewDense(2, 4, nil))
	})
}

func TestCPUDevice(t *testing.T) {
	var dev Device = CPUDevice{}

	assert.Equal(t, CPU, dev.Type())
	assert.Equal(t, "cpu", dev.Type().String())

	m := dev.NewMatrix(2, 3, nil)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
}
