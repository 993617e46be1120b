// Command train fits the gas price predictor on the synthetic dataset and
// writes the parameters to model.bin.
// Execute with: go run ./cmd/train
package main

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/FlavioCFOliveira/gasprice/gasprice"
)

func init() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
}

func main() {
	cfg := gasprice.DefaultConfig()
	cfg.Logger = log.Logger
	cfg.Registerer = prometheus.DefaultRegisterer

	model := gasprice.NewModel(cfg)
	data := gasprice.Generate()

	if _, err := gasprice.NewTrainer(cfg).Train(model, data); err != nil {
		log.Fatal().Err(err).Msg("training failed")
	}

	if err := gasprice.Save(model, cfg.ModelPath); err != nil {
		log.Fatal().Err(err).Msg("could not save model")
	}
	fmt.Printf("Model saved to %s\n", cfg.ModelPath)
}
