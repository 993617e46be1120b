// Package gasprice is the public entry point to the gas price predictor.
package gasprice

import (
	"github.com/FlavioCFOliveira/gasprice/internal/gas"
	"github.com/FlavioCFOliveira/gasprice/internal/layer"
)

// Re-export the domain types for callers outside this module
type (
	Config   = gas.Config
	Model    = gas.Model
	Features = gas.Features
	Sample   = gas.Sample
	Dataset  = gas.Dataset
	Summary  = gas.Summary
	Trainer  = gas.Trainer
	Result   = gas.Result
	Device   = layer.Device
)

const (
	DefaultModelPath = gas.DefaultModelPath
	Epochs           = gas.Epochs
	LearningRate     = gas.LearningRate
)

// ErrShapeMismatch reports a model file with a different topology.
var ErrShapeMismatch = gas.ErrShapeMismatch

// CPU is the host device.
var CPU Device = layer.CPUDevice{}

// ZeroInit makes NewModel start from all-zero weights and biases.
var ZeroInit layer.Initializer = layer.Zeros

func DefaultConfig() Config {
	return gas.DefaultConfig()
}

func NewModel(cfg Config) *Model {
	return gas.NewModel(cfg)
}

// Generate returns the 96-sample synthetic training set.
func Generate() Dataset {
	return gas.Generate()
}

func NewTrainer(cfg Config) *Trainer {
	return gas.NewTrainer(cfg)
}

func Save(m *Model, path string) error {
	return gas.Save(m, path)
}

func Load(path string, cfg Config) (*Model, error) {
	return gas.Load(path, cfg)
}
