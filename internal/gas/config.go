// Package gas implements the gas price predictor: a fixed 3-16-8-1
// feed-forward regression network, the synthetic dataset it is fitted to,
// its training loop and its model file.
package gas

import (
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FlavioCFOliveira/gasprice/internal/layer"
)

// Network topology.
const (
	InputSize   = 3
	Hidden1Size = 16
	Hidden2Size = 8
	OutputSize  = 1
)

// Training schedule. These are fixed, not configuration.
const (
	DatasetSize  = 96
	Epochs       = 500
	LearningRate = 0.01
	LogEvery     = 100
)

const (
	DefaultModelPath = "model.bin"
	DefaultSeed      = 42

	// MetricsNamespace prefixes every exported Prometheus series.
	MetricsNamespace = "gasprice"
)

// Config is passed explicitly to model construction, training and loading.
type Config struct {
	// Device the layers compute batches on. Nil means the CPU.
	Device layer.Device

	// Seed drives the default weight initialization.
	Seed int64

	// Init overrides the default seeded Kaiming-uniform initialization.
	Init layer.Initializer

	ModelPath string
	Logger    zerolog.Logger

	// Registerer receives the training metrics. Nil disables them.
	Registerer prometheus.Registerer
}

// DefaultConfig returns the configuration used by the command line tools.
func DefaultConfig() Config {
	return Config{
		Device:    layer.CPUDevice{},
		Seed:      DefaultSeed,
		ModelPath: DefaultModelPath,
		Logger:    log.Logger,
	}
}

func (c Config) device() layer.Device {
	if c.Device == nil {
		return layer.CPUDevice{}
	}
	return c.Device
}

func (c Config) initializer() layer.Initializer {
	if c.Init != nil {
		return c.Init
	}
	return layer.KaimingUniform(rand.New(rand.NewSource(c.Seed)))
}
