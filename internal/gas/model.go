package gas

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/FlavioCFOliveira/gasprice/internal/activations"
	"github.com/FlavioCFOliveira/gasprice/internal/layer"
	"github.com/FlavioCFOliveira/gasprice/internal/loss"
	"github.com/FlavioCFOliveira/gasprice/internal/net"
	"github.com/FlavioCFOliveira/gasprice/internal/opt"
)

// Features is one model input: previous average price, hour of day and the
// share of high bids.
type Features [InputSize]float64

// Model is the gas price regression network.
type Model struct {
	network *net.Network
}

// NewModel builds the 3-16-8-1 network on cfg's device, initialized by cfg.
func NewModel(cfg Config) *Model {
	dev := cfg.device()
	initFn := cfg.initializer()

	layers := []layer.Layer{
		layer.NewDense(dev, InputSize, Hidden1Size, activations.ReLU{}, initFn),
		layer.NewDense(dev, Hidden1Size, Hidden2Size, activations.ReLU{}, initFn),
		layer.NewDense(dev, Hidden2Size, OutputSize, activations.Linear{}, initFn),
	}
	return &Model{
		network: net.New(layers, loss.MSE{}, opt.NewAdam(LearningRate)),
	}
}

// Forward predicts the price for a single input.
func (m *Model) Forward(x Features) float64 {
	return m.network.Forward(x[:])[0]
}

// Predict runs an N×3 matrix of inputs and returns the N×1 predictions.
// It panics with mat.ErrShape if x does not have three columns.
func (m *Model) Predict(x *mat.Dense) *mat.Dense {
	if _, c := x.Dims(); c != InputSize {
		panic(mat.ErrShape)
	}
	return m.network.ForwardBatch(x)
}

// Params returns a copy of every weight and bias, layer by layer.
func (m *Model) Params() []float64 {
	return m.network.Params()
}

// Loss is the mean squared error of the model over ds.
func (m *Model) Loss(ds Dataset) float64 {
	return m.network.Evaluate(ds.X(), ds.Y())
}

// expectedShapes lists in, out and activation of each layer.
var expectedShapes = []struct {
	in, out int
	act     string
}{
	{InputSize, Hidden1Size, "ReLU"},
	{Hidden1Size, Hidden2Size, "ReLU"},
	{Hidden2Size, OutputSize, "Linear"},
}

// checkTopology reports whether n has exactly the predictor's layers.
func checkTopology(n *net.Network) error {
	layers := n.Layers()
	if len(layers) != len(expectedShapes) {
		return fmt.Errorf("%d layers, want %d: %w", len(layers), len(expectedShapes), ErrShapeMismatch)
	}
	for i, l := range layers {
		want := expectedShapes[i]
		d, ok := l.(*layer.Dense)
		if !ok {
			return fmt.Errorf("layer %d is %T: %w", i, l, ErrShapeMismatch)
		}
		act := activations.Name(d.Activation())
		if d.InSize() != want.in || d.OutSize() != want.out || act != want.act {
			return fmt.Errorf("layer %d is %dx%d %s, want %dx%d %s: %w",
				i, d.InSize(), d.OutSize(), act, want.in, want.out, want.act, ErrShapeMismatch)
		}
	}
	return nil
}
