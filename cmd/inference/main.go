// Command inference loads model.bin and prints the predicted gas price for a
// fixed input.
// Execute with: go run ./cmd/inference
package main

import (
	"fmt"
	"os"

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

	model, err := gasprice.Load(cfg.ModelPath, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.ModelPath).Msg("could not load model")
	}

	// previous average, hour of day, share of high bids
	input := gasprice.Features{55.0, 14.0, 0.7}
	fmt.Printf("Predicted gas price: %.2f\n", model.Forward(input))
}
