package net

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

// Callback defines the interface for training callbacks.
type Callback interface {
	OnTrainBegin(n *Network)
	OnTrainEnd(n *Network)
	OnEpochEnd(epoch int, loss float64, n *Network)
}

// BaseCallback provides default empty implementations for Callback.
type BaseCallback struct{}

func (c BaseCallback) OnTrainBegin(n *Network)                        {}
func (c BaseCallback) OnTrainEnd(n *Network)                          {}
func (c BaseCallback) OnEpochEnd(epoch int, loss float64, n *Network) {}

// Logger logs training progress every Interval epochs.
type Logger struct {
	BaseCallback
	Log      zerolog.Logger
	Interval int
}

func (c Logger) OnEpochEnd(epoch int, loss float64, n *Network) {
	if c.Interval > 0 && epoch%c.Interval == 0 {
		c.Log.Info().
			Int("epoch", epoch).
			Float64("loss", loss).
			Msgf("Epoch %d: Loss = %.4f", epoch, loss)
	}
}

// Metrics publishes the training loss and epoch count to Prometheus.
type Metrics struct {
	BaseCallback
	Loss   prometheus.Gauge
	Epochs prometheus.Counter
}

// NewMetrics creates the collectors under the given namespace.
func NewMetrics(namespace string) *Metrics {
	return &Metrics{
		Loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "training_loss",
			Help:      "Mean loss of the last completed training epoch.",
		}),
		Epochs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "training_epochs_total",
			Help:      "Number of completed training epochs.",
		}),
	}
}

// Register adds the collectors to r. Collectors already registered by an
// earlier run are adopted so that repeated runs share one series.
func (m *Metrics) Register(r prometheus.Registerer) error {
	if err := r.Register(m.Loss); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		m.Loss = are.ExistingCollector.(prometheus.Gauge)
	}
	if err := r.Register(m.Epochs); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return err
		}
		m.Epochs = are.ExistingCollector.(prometheus.Counter)
	}
	return nil
}

func (m *Metrics) OnEpochEnd(epoch int, loss float64, n *Network) {
	m.Loss.Set(loss)
	m.Epochs.Inc()
}
