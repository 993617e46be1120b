// Package layer provides neural network layer implementations.
package layer

import (
	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/gasprice/internal/activations"
)

// Layer is a neural network layer.
type Layer interface {
	Forward(x []float64) []float64
	// Backward adds this sample's parameter gradients to the layer's
	// gradient buffers and returns the gradient w.r.t. the input.
	Backward(grad []float64) []float64
	Params() []float64
	SetParams([]float64)
	Gradients() []float64
	// ZeroGrad clears the accumulated gradients.
	ZeroGrad()
}

// BatchForwarder is an optional interface for layers that can run a whole
// batch (one sample per row) in a single matrix operation.
type BatchForwarder interface {
	ForwardBatch(x *mat.Dense) *mat.Dense
}

// Dense is a fully connected layer optimized for performance.
// Uses contiguous memory layout with pre-allocated buffers for minimal allocations.
type Dense struct {
	// Weights stored as row-major contiguous slice for cache efficiency
	// Shape: [out * in] where weight for output i, input j is at weights[i*in + j]
	weights []float64
	biases  []float64
	act     activations.Activation
	device  Device
	outSize int
	inSize  int

	// Reusable buffers for gradient computation
	inputBuf  []float64
	outputBuf []float64
	preActBuf []float64
	gradWBuf  []float64
	gradBBuf  []float64
	gradInBuf []float64
	dzBuf     []float64
}

// NewDense creates a new dense layer with pre-allocated buffers.
// A nil init leaves every parameter at zero.
func NewDense(dev Device, in, out int, act activations.Activation, init Initializer) *Dense {
	weights := make([]float64, out*in)
	biases := make([]float64, out)
	if init != nil {
		init(in, out, weights, biases)
	}

	return &Dense{
		weights:   weights,
		biases:    biases,
		act:       act,
		device:    dev,
		outSize:   out,
		inSize:    in,
		inputBuf:  make([]float64, in),
		outputBuf: make([]float64, out),
		preActBuf: make([]float64, out),
		gradWBuf:  make([]float64, out*in),
		gradBBuf:  make([]float64, out),
		gradInBuf: make([]float64, in),
		dzBuf:     make([]float64, out),
	}
}

// Forward performs a forward pass through the dense layer.
// The returned slice is reused by the next call.
func (d *Dense) Forward(x []float64) []float64 {
	copy(d.inputBuf, x)

	outSize := d.outSize
	inSize := d.inSize
	weights := d.weights
	biases := d.biases
	input := d.inputBuf
	preAct := d.preActBuf
	output := d.outputBuf

	for o := 0; o < outSize; o++ {
		sum := biases[o]
		wBase := o * inSize
		for i := 0; i < inSize; i++ {
			sum += weights[wBase+i] * input[i]
		}
		preAct[o] = sum
		output[o] = d.act.Activate(sum)
	}

	return output[:outSize]
}

// ForwardBatch computes act(X·Wᵀ + b) for an N×in matrix X.
// It panics with mat.ErrShape when X does not have in columns.
func (d *Dense) ForwardBatch(x *mat.Dense) *mat.Dense {
	r, c := x.Dims()
	if c != d.inSize {
		panic(mat.ErrShape)
	}

	// w shares the layer's backing slice; it is only read here.
	w := d.device.NewMatrix(d.outSize, d.inSize, d.weights)
	out := d.device.NewMatrix(r, d.outSize, nil)
	out.Mul(x, w.T())
	out.Apply(func(_, j int, v float64) float64 {
		return d.act.Activate(v + d.biases[j])
	}, out)
	return out
}

// Backward performs backpropagation through the dense layer.
// Weight and bias gradients are accumulated; call ZeroGrad between steps.
func (d *Dense) Backward(grad []float64) []float64 {
	outSize := d.outSize
	inSize := d.inSize
	weights := d.weights
	input := d.inputBuf
	dz := d.dzBuf
	gradW := d.gradWBuf
	gradB := d.gradBBuf
	gradIn := d.gradInBuf

	// dz = dL/d(output) * activation'(z)
	for o := 0; o < outSize; o++ {
		dz[o] = grad[o] * d.act.Derivative(d.preActBuf[o])
		gradB[o] += dz[o]
	}

	// dL/dW[o, i] = dz[o] * input[i]
	for o := 0; o < outSize; o++ {
		dzo := dz[o]
		wBase := o * inSize
		for i := 0; i < inSize; i++ {
			gradW[wBase+i] += dzo * input[i]
		}
	}

	// dL/dx[i] = sum_o(dz[o] * W[o, i])
	for i := 0; i < inSize; i++ {
		sum := 0.0
		for o := 0; o < outSize; o++ {
			sum += dz[o] * weights[o*inSize+i]
		}
		gradIn[i] = sum
	}

	return gradIn[:inSize]
}

// ZeroGrad clears the accumulated weight and bias gradients.
func (d *Dense) ZeroGrad() {
	for i := range d.gradWBuf {
		d.gradWBuf[i] = 0
	}
	for i := range d.gradBBuf {
		d.gradBBuf[i] = 0
	}
}

// Params returns all dense layer parameters flattened (weights then biases).
func (d *Dense) Params() []float64 {
	params := make([]float64, 0, d.NumParams())
	params = append(params, d.weights...)
	params = append(params, d.biases...)
	return params
}

// SetParams updates weights and biases from a flattened slice (in-place).
func (d *Dense) SetParams(params []float64) {
	copy(d.weights, params[:len(d.weights)])
	copy(d.biases, params[len(d.weights):])
}

// Gradients returns all dense layer gradients flattened.
// The layout matches Params.
func (d *Dense) Gradients() []float64 {
	gradients := make([]float64, 0, d.NumParams())
	gradients = append(gradients, d.gradWBuf...)
	gradients = append(gradients, d.gradBBuf...)
	return gradients
}

// NumParams is out*in + out.
func (d *Dense) NumParams() int {
	return len(d.weights) + len(d.biases)
}

// SetWeight sets a single weight at (row, col).
func (d *Dense) SetWeight(row, col int, val float64) {
	d.weights[row*d.inSize+col] = val
}

// SetBias sets a single bias.
func (d *Dense) SetBias(idx int, val float64) {
	d.biases[idx] = val
}

// GetWeight gets a single weight at (row, col).
func (d *Dense) GetWeight(row, col int) float64 {
	return d.weights[row*d.inSize+col]
}

// GetBias gets a single bias.
func (d *Dense) GetBias(idx int) float64 {
	return d.biases[idx]
}

// InSize returns the input size of the layer.
func (d *Dense) InSize() int {
	return d.inSize
}

// OutSize returns the output size of the layer.
func (d *Dense) OutSize() int {
	return d.outSize
}

// Activation returns the activation function used by this layer.
func (d *Dense) Activation() activations.Activation {
	return d.act
}

// Device returns the device the layer computes batches on.
func (d *Dense) Device() Device {
	return d.device
}
