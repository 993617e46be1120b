package layer

import (
	"math"
	"math/rand"
)

// Initializer fills freshly allocated weights ([out*in], row-major) and biases.
type Initializer func(in, out int, weights, biases []float64)

// KaimingUniform draws weights and biases from U(-1/sqrt(in), 1/sqrt(in)).
// This is the default initialization of a linear layer in most frameworks.
func KaimingUniform(rng *rand.Rand) Initializer {
	return func(in, out int, weights, biases []float64) {
		bound := 1 / math.Sqrt(float64(in))
		for i := range weights {
			weights[i] = rng.Float64()*2*bound - bound
		}
		for i := range biases {
			biases[i] = rng.Float64()*2*bound - bound
		}
	}
}

// Zeros sets every parameter to zero.
func Zeros(in, out int, weights, biases []float64) {
	for i := range weights {
		weights[i] = 0
	}
	for i := range biases {
		biases[i] = 0
	}
}
