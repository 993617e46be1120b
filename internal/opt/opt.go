// Package opt provides optimization algorithms.
package opt

import "math"

// Optimizer updates network parameters based on gradients.
type Optimizer interface {
	// Step computes updated parameters and returns them in a new slice.
	Step(params, gradients []float64) []float64

	// StepInPlace updates params in-place.
	// This avoids allocations for better performance
	StepInPlace(params, gradients []float64)
}

// Adam optimizer for faster convergence.
//
// Adam keeps one first and one second moment per parameter, so a single
// instance must always be stepped with the same flattened parameter vector.
type Adam struct {
	LearningRate float64
	Beta1        float64 // Exponential decay rate for first moment
	Beta2        float64 // Exponential decay rate for second moment
	Epsilon      float64 // Small constant for numerical stability

	m []float64
	v []float64
	t int
}

// NewAdam creates a new Adam optimizer with default values.
func NewAdam(learningRate float64) *Adam {
	return &Adam{
		LearningRate: learningRate,
		Beta1:        0.9,
		Beta2:        0.999,
		Epsilon:      1e-5,
	}
}

// Step computes updated parameters using Adam.
// The moment estimates advance exactly as they do for StepInPlace.
func (a *Adam) Step(params, gradients []float64) []float64 {
	result := make([]float64, len(params))
	copy(result, params)
	a.StepInPlace(result, gradients)
	return result
}

// StepInPlace updates params in-place using bias-corrected moment estimates.
func (a *Adam) StepInPlace(params, gradients []float64) {
	n := len(params)
	if n != len(gradients) {
		panic("Adam: params and gradients must have same length")
	}
	if a.m == nil {
		a.m = make([]float64, n)
		a.v = make([]float64, n)
	} else if len(a.m) != n {
		panic("Adam: parameter count changed between steps")
	}

	a.t++
	bc1 := 1 - math.Pow(a.Beta1, float64(a.t))
	bc2 := 1 - math.Pow(a.Beta2, float64(a.t))

	for i := 0; i < n; i++ {
		g := gradients[i]
		a.m[i] = a.Beta1*a.m[i] + (1-a.Beta1)*g
		a.v[i] = a.Beta2*a.v[i] + (1-a.Beta2)*g*g

		mHat := a.m[i] / bc1
		vHat := a.v[i] / bc2
		params[i] -= a.LearningRate * mHat / (math.Sqrt(vHat) + a.Epsilon)
	}
}

// Steps returns how many updates have been applied.
func (a *Adam) Steps() int {
	return a.t
}

// Reset discards the moment estimates.
func (a *Adam) Reset() {
	a.m = nil
	a.v = nil
	a.t = 0
}
