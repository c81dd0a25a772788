package periodogram

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrTooFewSamples is returned when fewer than two samples are provided.
	ErrTooFewSamples = errors.New("periodogram needs at least 2 samples")
	// ErrZeroBaseline is returned when all samples share the same timestamp.
	ErrZeroBaseline = errors.New("observation baseline is zero")
	// ErrInvalidGrid is returned for grid options that produce no frequencies.
	ErrInvalidGrid = errors.New("invalid frequency grid")
)

// GridOptions controls the automatic frequency grid.
type GridOptions struct {
	SamplesPerPeak   float64 // grid points per 1/T peak width
	NyquistFactor    float64 // multiple of the average Nyquist frequency
	MinimumFrequency float64 // 1/day, 0 selects df/2
	MaximumFrequency float64 // 1/day, 0 selects NyquistFactor * N / (2T)
}

// DefaultGridOptions returns the grid settings used by the analysis.
func DefaultGridOptions() GridOptions {
	return GridOptions{
		SamplesPerPeak: 5,
		NyquistFactor:  5,
	}
}

// Grid is a uniform frequency grid.
type Grid struct {
	Min  float64 // 1/day
	Step float64 // 1/day
	N    int
}

// At returns the k-th grid frequency.
func (g Grid) At(k int) float64 {
	return g.Min + float64(k)*g.Step
}

// Frequencies materializes the grid.
func (g Grid) Frequencies() []float64 {
	f := make([]float64, g.N)
	for k := range f {
		f[k] = g.At(k)
	}
	return f
}

// AutoGrid derives a frequency grid from the sampling of time.
func AutoGrid(time []float64, opts GridOptions) (Grid, error) {
	if len(time) < 2 {
		return Grid{}, fmt.Errorf("%w: got %d", ErrTooFewSamples, len(time))
	}
	if opts.SamplesPerPeak <= 0 || opts.NyquistFactor <= 0 {
		return Grid{}, fmt.Errorf("%w: samples_per_peak=%g nyquist_factor=%g",
			ErrInvalidGrid, opts.SamplesPerPeak, opts.NyquistFactor)
	}

	tmin, tmax := floats.Min(time), floats.Max(time)
	baseline := tmax - tmin
	if !(baseline > 0) {
		return Grid{}, fmt.Errorf("%w: %d samples at t=%g", ErrZeroBaseline, len(time), tmin)
	}

	df := 1 / baseline / opts.SamplesPerPeak
	fmin := opts.MinimumFrequency
	if fmin <= 0 {
		fmin = 0.5 * df
	}
	fmax := opts.MaximumFrequency
	if fmax <= 0 {
		fmax = opts.NyquistFactor * 0.5 * float64(len(time)) / baseline
	}
	if fmax < fmin {
		return Grid{}, fmt.Errorf("%w: max frequency %g below min frequency %g", ErrInvalidGrid, fmax, fmin)
	}

	return Grid{
		Min:  fmin,
		Step: df,
		N:    1 + int(math.Round((fmax-fmin)/df)),
	}, nil
}
