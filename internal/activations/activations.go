// Package activations provides activation functions optimized for performance.
package activations

// Activation is an activation function with derivative.
type Activation interface {
	// Activate computes f(x)
	Activate(x float64) float64

	// Derivative computes f'(x)
	Derivative(x float64) float64
}

// ReLU activation function.
type ReLU struct{}

// Activate computes max(0, x)
func (r ReLU) Activate(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

// Derivative returns 1 if x > 0, else 0
func (r ReLU) Derivative(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

// Linear is the identity activation used on regression outputs.
type Linear struct{}

// Activate returns x unchanged.
func (l Linear) Activate(x float64) float64 {
	return x
}

// Derivative is always 1.
func (l Linear) Derivative(x float64) float64 {
	return 1
}

// Name returns the stable name of a known activation, used when a network is
// serialized. Unknown activations yield an empty string.
func Name(act Activation) string {
	switch act.(type) {
	case ReLU, *ReLU:
		return "ReLU"
	case Linear, *Linear:
		return "Linear"
	default:
		return ""
	}
}

// FromName is the inverse of Name.
func FromName(name string) (Activation, bool) {
	switch name {
	case "ReLU":
		return ReLU{}, true
	case "Linear":
		return Linear{}, true
	default:
		return nil, false
	}
}
