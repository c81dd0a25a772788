package periodogram

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/lightcurve/pkg/models"
)

var (
	// ErrInvalidUncertainty is returned when a flux error is not finite and positive.
	ErrInvalidUncertainty = errors.New("flux errors must be finite and positive")
	// ErrNonFinite is returned when a time or flux value is NaN or infinite.
	ErrNonFinite = errors.New("time and flux must be finite")
	// ErrConstantFlux is returned when the flux has no weighted variance.
	ErrConstantFlux = errors.New("flux is constant")
	// ErrLengthMismatch is returned when the input channels differ in length.
	ErrLengthMismatch = errors.New("time, flux and error lengths differ")
)

// reseedEvery bounds the drift of the angle-addition recurrence.
const reseedEvery = 128

// AutoPower computes the periodogram on the automatic grid for time.
func AutoPower(time, flux, fluxErr []float64, opts GridOptions) (*models.Periodogram, error) {
	grid, err := AutoGrid(time, opts)
	if err != nil {
		return nil, err
	}
	return Compute(time, flux, fluxErr, grid)
}

// Compute evaluates the generalized Lomb-Scargle power of (time, flux) on
// grid. fluxErr may be nil for uniform weights. Cost is O(len(time) * grid.N).
func Compute(time, flux, fluxErr []float64, grid Grid) (*models.Periodogram, error) {
	w, err := weights(time, flux, fluxErr)
	if err != nil {
		return nil, err
	}
	if grid.N <= 0 || !(grid.Step > 0) {
		return nil, fmt.Errorf("%w: n=%d step=%g", ErrInvalidGrid, grid.N, grid.Step)
	}

	// Power does not depend on the time origin; centering keeps the
	// trigonometric arguments small.
	t0 := stat.Mean(time, nil)
	ybar := floats.Dot(w, flux)
	yy := 0.0
	for i, y := range flux {
		yy += w[i] * (y - ybar) * (y - ybar)
	}
	if yy <= 0 {
		return nil, fmt.Errorf("%w: %d samples at %g", ErrConstantFlux, len(flux), ybar)
	}

	n := grid.N
	sumC := make([]float64, n)
	sumS := make([]float64, n)
	sumYC := make([]float64, n)
	sumYS := make([]float64, n)
	sumCC := make([]float64, n)
	sumCS := make([]float64, n)

	for i, ti := range time {
		dt := ti - t0
		wi := w[i]
		wyi := wi * flux[i]
		sd, cd := math.Sincos(2 * math.Pi * grid.Step * dt)

		var s, c float64
		for k := 0; k < n; k++ {
			if k%reseedEvery == 0 {
				s, c = math.Sincos(2 * math.Pi * grid.At(k) * dt)
			}
			sumC[k] += wi * c
			sumS[k] += wi * s
			sumYC[k] += wyi * c
			sumYS[k] += wyi * s
			sumCC[k] += wi * c * c
			sumCS[k] += wi * c * s
			c, s = c*cd-s*sd, s*cd+c*sd
		}
	}

	power := make([]float64, n)
	for k := 0; k < n; k++ {
		yc := sumYC[k] - ybar*sumC[k]
		ys := sumYS[k] - ybar*sumS[k]
		cc := sumCC[k] - sumC[k]*sumC[k]
		ss := (1 - sumCC[k]) - sumS[k]*sumS[k]
		cs := sumCS[k] - sumC[k]*sumS[k]

		d := cc*ss - cs*cs
		if d <= 1e-300 {
			continue
		}
		p := (ss*yc*yc + cc*ys*ys - 2*cs*yc*ys) / (yy * d)
		power[k] = math.Max(0, math.Min(1, p))
	}

	return &models.Periodogram{
		Frequency: grid.Frequencies(),
		Power:     power,
	}, nil
}

// weights returns 1/σ² weights normalized to sum to one.
func weights(time, flux, fluxErr []float64) ([]float64, error) {
	n := len(time)
	if len(flux) != n || (fluxErr != nil && len(fluxErr) != n) {
		return nil, fmt.Errorf("%w: time=%d flux=%d flux_err=%d", ErrLengthMismatch, n, len(flux), len(fluxErr))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewSamples, n)
	}

	w := make([]float64, n)
	for i := 0; i < n; i++ {
		if !finite(time[i]) || !finite(flux[i]) {
			return nil, fmt.Errorf("%w: sample %d (t=%g, flux=%g)", ErrNonFinite, i, time[i], flux[i])
		}
		if fluxErr == nil {
			w[i] = 1
			continue
		}
		e := fluxErr[i]
		if !finite(e) || e <= 0 {
			return nil, fmt.Errorf("%w: sample %d has error %g", ErrInvalidUncertainty, i, e)
		}
		w[i] = 1 / (e * e)
	}
	floats.Scale(1/floats.Sum(w), w)
	return w, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
