// Package phase folds light curves on candidate periods.
package phase

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/RMahshie/lightcurve/pkg/models"
)

var (
	// ErrInvalidPeriod is returned when the period is not a positive finite number.
	ErrInvalidPeriod = errors.New("period must be positive and finite")
	// ErrLengthMismatch is returned when time and flux (or error) lengths differ.
	ErrLengthMismatch = errors.New("time, flux and error lengths differ")
)

// Fold maps every timestamp to time mod period in [0, period) and reorders
// the samples by ascending phase. fluxErr is optional; when given it is
// reindexed exactly like flux. Samples with equal phase keep their input order.
func Fold(time, flux, fluxErr []float64, period float64) (*models.FoldedCurve, error) {
	if !(period > 0) || math.IsInf(period, 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidPeriod, period)
	}
	if len(flux) != len(time) || (fluxErr != nil && len(fluxErr) != len(time)) {
		return nil, fmt.Errorf("%w: time=%d flux=%d flux_err=%d", ErrLengthMismatch, len(time), len(flux), len(fluxErr))
	}

	phase := make([]float64, len(time))
	for i, t := range time {
		phase[i] = wrap(t, period)
	}

	order := make([]int, len(time))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return phase[order[a]] < phase[order[b]]
	})

	out := &models.FoldedCurve{
		Period: period,
		Phase:  make([]float64, len(order)),
		Flux:   make([]float64, len(order)),
	}
	if fluxErr != nil {
		out.FluxErr = make([]float64, len(order))
	}
	for j, i := range order {
		out.Phase[j] = phase[i]
		out.Flux[j] = flux[i]
		if fluxErr != nil {
			out.FluxErr[j] = fluxErr[i]
		}
	}
	return out, nil
}

// wrap returns t mod period in [0, period), also for negative t.
func wrap(t, period float64) float64 {
	p := math.Mod(t, period)
	if p < 0 {
		p += period
	}
	// p+period can round up to period itself
	if p >= period {
		p = 0
	}
	return p
}

// Result is the outcome of folding on one period.
type Result struct {
	Period float64
	Curve  *models.FoldedCurve
	Err    error
}

// FoldAll folds the same light curve independently on each period. A failed
// fold is reported in its Result and does not affect the others.
func FoldAll(lc *models.LightCurve, periods []float64, withErrors bool) []Result {
	var fluxErr []float64
	if withErrors {
		fluxErr = lc.FluxErr
	}

	results := make([]Result, len(periods))
	for i, p := range periods {
		curve, err := Fold(lc.Time, lc.Flux, fluxErr, p)
		results[i] = Result{Period: p, Curve: curve, Err: err}
	}
	return results
}
