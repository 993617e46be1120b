package layer

import "gonum.org/v1/gonum/mat"

// DeviceType represents the hardware device used for computation.
type DeviceType int

const (
	CPU DeviceType = iota
)

func (t DeviceType) String() string {
	switch t {
	case CPU:
		return "cpu"
	default:
		return "unknown"
	}
}

// Device owns the memory that batch operations compute into.
// It is passed explicitly to every layer instead of being picked globally.
type Device interface {
	Type() DeviceType

	// NewMatrix wraps data (or allocates when data is nil) as an r×c matrix.
	NewMatrix(r, c int, data []float64) *mat.Dense
}

// CPUDevice handles computations on the host CPU.
type CPUDevice struct{}

func (CPUDevice) Type() DeviceType { return CPU }

func (CPUDevice) NewMatrix(r, c int, data []float64) *mat.Dense {
	return mat.NewDense(r, c, data)
}
