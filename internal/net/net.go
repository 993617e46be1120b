// Package net provides core neural network types.
package net

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/gasprice/internal/activations"
	"github.com/FlavioCFOliveira/gasprice/internal/layer"
	"github.com/FlavioCFOliveira/gasprice/internal/loss"
	"github.com/FlavioCFOliveira/gasprice/internal/opt"
)

// ErrMalformed is returned when a serialized network cannot be decoded into
// a consistent set of layers.
var ErrMalformed = errors.New("malformed network")

// maxLayers bounds the layer count accepted from a stream.
const maxLayers = 1 << 10

// Network is a collection of layers that can be forwarded and backwarded.
type Network struct {
	layers []layer.Layer
	loss   loss.Loss
	opt    opt.Optimizer

	// Pre-allocated gradient buffer for training
	lossGradBuf []float64
}

// New creates a new neural network with the given layers.
func New(layers []layer.Layer, loss loss.Loss, optimizer opt.Optimizer) *Network {
	return &Network{
		layers: layers,
		loss:   loss,
		opt:    optimizer,
	}
}

// Forward performs a forward pass through all layers.
// The returned slice belongs to the last layer and is reused by the next call.
func (n *Network) Forward(x []float64) []float64 {
	curr := x
	for i := range n.layers {
		curr = n.layers[i].Forward(curr)
	}
	return curr
}

// ForwardBatch runs every row of x through the network and returns one
// output row per input row.
func (n *Network) ForwardBatch(x *mat.Dense) *mat.Dense {
	curr := x
	for _, l := range n.layers {
		if bf, ok := l.(layer.BatchForwarder); ok {
			curr = bf.ForwardBatch(curr)
			continue
		}
		curr = forwardRows(l, curr)
	}
	return curr
}

// forwardRows is the per-sample fallback for layers without a batch path.
func forwardRows(l layer.Layer, x *mat.Dense) *mat.Dense {
	r, _ := x.Dims()
	var out *mat.Dense
	for i := 0; i < r; i++ {
		y := l.Forward(mat.Row(nil, i, x))
		if out == nil {
			out = mat.NewDense(r, len(y), nil)
		}
		out.SetRow(i, y)
	}
	return out
}

// Backward performs a backward pass through all layers.
func (n *Network) Backward(grad []float64) []float64 {
	curr := grad
	for i := len(n.layers) - 1; i >= 0; i-- {
		curr = n.layers[i].Backward(curr)
	}
	return curr
}

// ZeroGrad clears the gradients accumulated by every layer.
func (n *Network) ZeroGrad() {
	for _, l := range n.layers {
		l.ZeroGrad()
	}
}

// Step performs one optimization step over the whole flattened parameter
// vector, then writes the updated values back to the layers.
func (n *Network) Step() {
	params := n.Params()
	n.opt.StepInPlace(params, n.Gradients())

	offset := 0
	for _, l := range n.layers {
		size := len(l.Params())
		l.SetParams(params[offset : offset+size])
		offset += size
	}
}

// ComputeGradients runs forward and backward over the whole batch and leaves
// the batch-averaged gradients in the layers. It returns the mean loss.
func (n *Network) ComputeGradients(batchX [][]float64, batchY [][]float64) float64 {
	n.ZeroGrad()

	batchSize := len(batchX)
	if batchSize == 0 {
		return 0
	}

	var totalLoss float64
	for i := 0; i < batchSize; i++ {
		yPred := n.Forward(batchX[i])
		totalLoss += n.loss.Forward(yPred, batchY[i])

		// Scale by 1/batchSize here so the accumulated sum is already the mean.
		grad := n.lossGrad(yPred, batchY[i])
		for j := range grad {
			grad[j] /= float64(batchSize)
		}
		n.Backward(grad)
	}

	return totalLoss / float64(batchSize)
}

func (n *Network) lossGrad(yPred, yTrue []float64) []float64 {
	if bip, ok := n.loss.(loss.BackwardInPlacer); ok {
		if cap(n.lossGradBuf) < len(yPred) {
			n.lossGradBuf = make([]float64, len(yPred))
		}
		grad := n.lossGradBuf[:len(yPred)]
		bip.BackwardInPlace(yPred, yTrue, grad)
		return grad
	}
	return n.loss.Backward(yPred, yTrue)
}

// TrainBatch performs one full-batch gradient step and returns the mean loss
// of the predictions made before the update.
func (n *Network) TrainBatch(batchX [][]float64, batchY [][]float64) float64 {
	if len(batchX) == 0 {
		return 0
	}
	l := n.ComputeGradients(batchX, batchY)
	n.Step()
	return l
}

// Evaluate returns the mean loss over a batch without touching gradients.
func (n *Network) Evaluate(batchX [][]float64, batchY [][]float64) float64 {
	if len(batchX) == 0 {
		return 0
	}
	var total float64
	for i := range batchX {
		total += n.loss.Forward(n.Forward(batchX[i]), batchY[i])
	}
	return total / float64(len(batchX))
}

// Fit runs epochs full-batch steps and returns the loss of the last epoch.
// There is no early exit: the epoch count is the only stop condition.
func (n *Network) Fit(batchX [][]float64, batchY [][]float64, epochs int, callbacks ...Callback) float64 {
	for _, c := range callbacks {
		c.OnTrainBegin(n)
	}

	var l float64
	for epoch := 0; epoch < epochs; epoch++ {
		l = n.TrainBatch(batchX, batchY)
		for _, c := range callbacks {
			c.OnEpochEnd(epoch, l, n)
		}
	}

	for _, c := range callbacks {
		c.OnTrainEnd(n)
	}
	return l
}

// Params returns all network parameters flattened (copy).
func (n *Network) Params() []float64 {
	var params []float64
	for _, l := range n.layers {
		params = append(params, l.Params()...)
	}
	return params
}

// Gradients returns all network gradients flattened (copy).
func (n *Network) Gradients() []float64 {
	var gradients []float64
	for _, l := range n.layers {
		gradients = append(gradients, l.Gradients()...)
	}
	return gradients
}

// Layers returns the network's layers slice.
func (n *Network) Layers() []layer.Layer {
	return n.layers
}

// Loss returns the loss function the network trains against.
func (n *Network) Loss() loss.Loss {
	return n.loss
}

// Optimizer returns the network's optimizer.
func (n *Network) Optimizer() opt.Optimizer {
	return n.opt
}

// Save saves the network to a file using gob encoding.
// The optimizer state is not saved.
func (n *Network) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := n.Encode(file); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Load loads a network from a file. Layers are placed on dev and the
// optimizer is a fresh one of the saved kind.
func Load(filename string, dev layer.Device) (*Network, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Decode(file, dev)
}

// Encode writes the network to an io.Writer using gob encoding.
func (n *Network) Encode(w io.Writer) error {
	encoder := gob.NewEncoder(w)

	if err := encoder.Encode(int32(len(n.layers))); err != nil {
		return fmt.Errorf("failed to encode layer count: %w", err)
	}

	lossType := loss.Name(n.loss)
	if lossType == "" {
		return fmt.Errorf("unsupported loss %T", n.loss)
	}
	if err := encoder.Encode(lossType); err != nil {
		return fmt.Errorf("failed to encode loss: %w", err)
	}

	var optType string
	switch n.opt.(type) {
	case *opt.Adam:
		optType = "Adam"
	default:
		return fmt.Errorf("unsupported optimizer %T", n.opt)
	}
	if err := encoder.Encode(optType); err != nil {
		return fmt.Errorf("failed to encode optimizer: %w", err)
	}

	for i, l := range n.layers {
		cfg, err := ExtractLayerConfig(l)
		if err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
		if err := encoder.Encode(cfg); err != nil {
			return fmt.Errorf("failed to encode layer: %w", err)
		}
	}

	if err := encoder.Encode(n.Params()); err != nil {
		return fmt.Errorf("failed to encode params: %w", err)
	}

	return nil
}

// Decode reads a network written by Encode.
func Decode(r io.Reader, dev layer.Device) (*Network, error) {
	decoder := gob.NewDecoder(r)

	var numLayers int32
	if err := decoder.Decode(&numLayers); err != nil {
		return nil, fmt.Errorf("failed to read layer count: %w", err)
	}
	if numLayers <= 0 || numLayers > maxLayers {
		return nil, fmt.Errorf("layer count %d: %w", numLayers, ErrMalformed)
	}

	var lossType string
	if err := decoder.Decode(&lossType); err != nil {
		return nil, fmt.Errorf("failed to read loss type: %w", err)
	}
	var l loss.Loss
	switch lossType {
	case "MSE":
		l = loss.MSE{}
	default:
		return nil, fmt.Errorf("loss %q: %w", lossType, ErrMalformed)
	}

	var optType string
	if err := decoder.Decode(&optType); err != nil {
		return nil, fmt.Errorf("failed to read optimizer type: %w", err)
	}
	var optimizer opt.Optimizer
	switch optType {
	case "Adam":
		optimizer = opt.NewAdam(0.001)
	default:
		return nil, fmt.Errorf("optimizer %q: %w", optType, ErrMalformed)
	}

	layerConfigs := make([]LayerConfig, numLayers)
	for i := range layerConfigs {
		if err := decoder.Decode(&layerConfigs[i]); err != nil {
			return nil, fmt.Errorf("failed to read layer %d: %w", i, err)
		}
	}

	var params []float64
	if err := decoder.Decode(&params); err != nil {
		return nil, fmt.Errorf("failed to read parameters: %w", err)
	}

	layers := make([]layer.Layer, 0, len(layerConfigs))
	offset := 0
	for i, cfg := range layerConfigs {
		if i > 0 && cfg.InSize != layerConfigs[i-1].OutSize {
			return nil, fmt.Errorf("layer %d takes %d inputs, previous layer emits %d: %w",
				i, cfg.InSize, layerConfigs[i-1].OutSize, ErrMalformed)
		}
		// Checked before allocating so a corrupt shape cannot size a huge layer.
		if cfg.InSize <= 0 || cfg.OutSize <= 0 || cfg.InSize > len(params) || cfg.OutSize > len(params) {
			return nil, fmt.Errorf("layer %d shape %dx%d: %w", i, cfg.InSize, cfg.OutSize, ErrMalformed)
		}
		size := cfg.OutSize*cfg.InSize + cfg.OutSize
		if size > len(params)-offset {
			return nil, fmt.Errorf("layer %d needs %d params, %d left: %w",
				i, size, len(params)-offset, ErrMalformed)
		}
		d, err := cfg.CreateLayer(dev)
		if err != nil {
			return nil, fmt.Errorf("layer %d: %w", i, err)
		}
		d.SetParams(params[offset : offset+size])
		layers = append(layers, d)
		offset += size
	}
	if offset != len(params) {
		return nil, fmt.Errorf("%d trailing params: %w", len(params)-offset, ErrMalformed)
	}

	return New(layers, l, optimizer), nil
}

// LayerConfig holds the configuration needed to reconstruct a layer.
type LayerConfig struct {
	Type    string
	InSize  int
	OutSize int
	// Activation type for Dense layers
	Activation string
}

// ExtractLayerConfig extracts the configuration from a layer.
func ExtractLayerConfig(l layer.Layer) (LayerConfig, error) {
	dense, ok := l.(*layer.Dense)
	if !ok {
		return LayerConfig{}, fmt.Errorf("unsupported layer type %T", l)
	}
	act := activations.Name(dense.Activation())
	if act == "" {
		return LayerConfig{}, fmt.Errorf("unsupported activation %T", dense.Activation())
	}
	return LayerConfig{
		Type:       "Dense",
		InSize:     dense.InSize(),
		OutSize:    dense.OutSize(),
		Activation: act,
	}, nil
}

// CreateLayer creates a new zero-initialized layer from the configuration.
func (c *LayerConfig) CreateLayer(dev layer.Device) (*layer.Dense, error) {
	if c.Type != "Dense" {
		return nil, fmt.Errorf("layer type %q: %w", c.Type, ErrMalformed)
	}
	if c.InSize <= 0 || c.OutSize <= 0 {
		return nil, fmt.Errorf("layer shape %dx%d: %w", c.InSize, c.OutSize, ErrMalformed)
	}
	act, ok := activations.FromName(c.Activation)
	if !ok {
		return nil, fmt.Errorf("activation %q: %w", c.Activation, ErrMalformed)
	}
	return layer.NewDense(dev, c.InSize, c.OutSize, act, nil), nil
}
