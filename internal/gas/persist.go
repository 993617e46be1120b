package gas

import (
	"errors"
	"fmt"

	"github.com/FlavioCFOliveira/gasprice/internal/layer"
	"github.com/FlavioCFOliveira/gasprice/internal/net"
)

// ErrShapeMismatch is returned when a model file holds a network whose
// layers differ from the predictor's topology.
var ErrShapeMismatch = errors.New("model shape mismatch")

// Save writes every parameter of m to path.
func Save(m *Model, path string) error {
	if err := m.network.Save(path); err != nil {
		return fmt.Errorf("save model to %s: %w", path, err)
	}
	return nil
}

// Load reads a model written by Save. A missing or malformed file, or one
// whose layers are not 3-16-8-1, is an error.
func Load(path string, cfg Config) (*Model, error) {
	n, err := net.Load(path, cfg.device())
	if err != nil {
		return nil, fmt.Errorf("load model from %s: %w", path, err)
	}
	if err := checkTopology(n); err != nil {
		return nil, fmt.Errorf("load model from %s: %w", path, err)
	}

	cfg.Init = layer.Zeros
	m := NewModel(cfg)
	src := n.Layers()
	for i, l := range m.network.Layers() {
		l.SetParams(src[i].Params())
	}
	return m, nil
}
