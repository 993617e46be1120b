package gas

import (
	"github.com/chewxy/math32"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/FlavioCFOliveira/gasprice/internal/layer"
)

// Sample is one labelled training example.
type Sample struct {
	PrevAvg  float64
	Hour     float64
	HighBids float64
	Price    float64
}

// Features returns the model input of the sample.
func (s Sample) Features() Features {
	return Features{s.PrevAvg, s.Hour, s.HighBids}
}

// Dataset is an ordered, immutable list of samples.
type Dataset []Sample

// Generate builds the synthetic training set: four price variants for every
// hour of the day, labelled by a closed-form oracle.
//
// The arithmetic is single precision. Each product is converted explicitly so
// the compiler cannot fuse it into a multiply-add, which keeps the sequence
// identical on every architecture.
func Generate() Dataset {
	ds := make(Dataset, 0, DatasetSize)
	for i := 0; i < DatasetSize; i++ {
		hour := float32(i / 4)
		variant := float32(i % 4)

		prevAvg := 40 + float32(hour*1.5) + float32(variant*3)
		angle := float32(hour*math32.Pi) / 12
		highBids := clamp(0.5+float32(0.3*math32.Cos(angle)), 0, 1)

		hourEffect := 50 + float32(20*math32.Sin(angle))
		prevEffect := float32(prevAvg * 0.8)
		bidEffect := float32(float32(highBids*highBids) * 40)

		ds = append(ds, Sample{
			PrevAvg:  float64(prevAvg),
			Hour:     float64(hour),
			HighBids: float64(highBids),
			Price:    float64(hourEffect + prevEffect + bidEffect),
		})
	}
	return ds
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// X returns the feature rows.
func (ds Dataset) X() [][]float64 {
	x := make([][]float64, len(ds))
	for i, s := range ds {
		f := s.Features()
		x[i] = f[:]
	}
	return x
}

// Y returns the target rows, one price each.
func (ds Dataset) Y() [][]float64 {
	y := make([][]float64, len(ds))
	for i, s := range ds {
		y[i] = []float64{s.Price}
	}
	return y
}

// Matrices returns the features as an N×3 matrix and the targets as N×1.
func (ds Dataset) Matrices(dev layer.Device) (x, y *mat.Dense) {
	x = dev.NewMatrix(len(ds), InputSize, nil)
	y = dev.NewMatrix(len(ds), OutputSize, nil)
	for i, s := range ds {
		f := s.Features()
		x.SetRow(i, f[:])
		y.Set(i, 0, s.Price)
	}
	return x, y
}

// Prices returns the targets as a flat slice.
func (ds Dataset) Prices() []float64 {
	p := make([]float64, len(ds))
	for i, s := range ds {
		p[i] = s.Price
	}
	return p
}

// Summary describes the target distribution.
type Summary struct {
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
}

// Summary computes target statistics. ds must not be empty.
func (ds Dataset) Summary() Summary {
	prices := ds.Prices()
	mean, std := stat.MeanStdDev(prices, nil)
	return Summary{
		Mean:   mean,
		StdDev: std,
		Min:    floats.Min(prices),
		Max:    floats.Max(prices),
	}
}
