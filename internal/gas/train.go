package gas

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/FlavioCFOliveira/gasprice/internal/net"
)

// Result describes a finished training run.
type Result struct {
	RunID       string
	Epochs      int
	InitialLoss float64
	FinalLoss   float64
}

// Trainer fits a Model to a Dataset with full-batch Adam.
type Trainer struct {
	cfg Config
}

// NewTrainer returns a trainer that logs and publishes metrics through cfg.
func NewTrainer(cfg Config) *Trainer {
	return &Trainer{cfg: cfg}
}

// Train runs exactly Epochs full-batch steps over ds. There is no early
// stopping and no validation; a diverging loss is not detected.
// The only error is a failure to register metrics.
func (t *Trainer) Train(m *Model, ds Dataset) (Result, error) {
	res := Result{
		RunID:  uuid.New().String(),
		Epochs: Epochs,
	}
	logger := t.cfg.Logger.With().Str("run", res.RunID).Logger()

	callbacks := []net.Callback{net.Logger{Log: logger, Interval: LogEvery}}
	if t.cfg.Registerer != nil {
		metrics := net.NewMetrics(MetricsNamespace)
		if err := metrics.Register(t.cfg.Registerer); err != nil {
			return Result{}, fmt.Errorf("register training metrics: %w", err)
		}
		callbacks = append(callbacks, metrics)
	}

	if len(ds) > 0 {
		s := ds.Summary()
		logger.Debug().
			Int("samples", len(ds)).
			Float64("mean", s.Mean).
			Float64("std", s.StdDev).
			Float64("min", s.Min).
			Float64("max", s.Max).
			Msg("dataset")
	}

	xs, ys := ds.X(), ds.Y()
	res.InitialLoss = m.network.Evaluate(xs, ys)
	m.network.Fit(xs, ys, Epochs, callbacks...)
	res.FinalLoss = m.network.Evaluate(xs, ys)

	logger.Info().
		Float64("initial_loss", res.InitialLoss).
		Float64("final_loss", res.FinalLoss).
		Msg("training finished")

	return res, nil
}
