// Package sinefit evaluates and fits the sinusoid
//
//	y = amplitude * sin(2*pi*x/period) + offset
//
// used to overlay a model on light curves and phase-folded curves.
package sinefit

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/RMahshie/lightcurve/pkg/models"
)

var (
	// ErrNotConverged is returned when the least-squares fit fails.
	ErrNotConverged = errors.New("sine fit did not converge")
	// ErrTooFewPoints is returned when there are fewer points than parameters.
	ErrTooFewPoints = errors.New("sine fit needs at least 3 points")
)

// maxEvaluations caps the solver's cost function evaluations.
const maxEvaluations = 20000

// Eval returns the model value at x.
func Eval(p models.SineParams, x float64) float64 {
	return p.Amplitude*math.Sin(2*math.Pi*x/p.Period) + p.Offset
}

// Curve evaluates the model over xs.
func Curve(p models.SineParams, xs []float64) []float64 {
	ys := make([]float64, len(xs))
	for i, x := range xs {
		ys[i] = Eval(p, x)
	}
	return ys
}

// InitialGuess derives starting parameters from the data range and mean.
func InitialGuess(y []float64, period float64) models.SineParams {
	if len(y) == 0 {
		return models.SineParams{Period: period}
	}
	return models.SineParams{
		Amplitude: (floats.Max(y) - floats.Min(y)) / 2,
		Period:    period,
		Offset:    stat.Mean(y, nil),
	}
}

// Fit finds the parameters minimizing the squared residuals against (x, y),
// starting from initial.
func Fit(x, y []float64, initial models.SineParams) (models.SineParams, error) {
	if len(x) != len(y) || len(x) < 3 {
		return models.SineParams{}, fmt.Errorf("%w: x=%d y=%d", ErrTooFewPoints, len(x), len(y))
	}

	problem := optimize.Problem{
		Func: func(v []float64) float64 {
			p := models.SineParams{Amplitude: v[0], Period: v[1], Offset: v[2]}
			if p.Period == 0 {
				return math.Inf(1)
			}
			var sum float64
			for i := range x {
				r := y[i] - Eval(p, x[i])
				sum += r * r
			}
			return sum
		},
	}

	start := []float64{initial.Amplitude, initial.Period, initial.Offset}
	settings := &optimize.Settings{FuncEvaluations: maxEvaluations}
	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if err != nil {
		return models.SineParams{}, fmt.Errorf("%w from %+v: %v", ErrNotConverged, initial, err)
	}
	if !finite(result.F) {
		return models.SineParams{}, fmt.Errorf("%w from %+v: residual %g", ErrNotConverged, initial, result.F)
	}
	switch result.Status {
	case optimize.Failure, optimize.IterationLimit, optimize.FunctionEvaluationLimit, optimize.RuntimeLimit:
		return models.SineParams{}, fmt.Errorf("%w from %+v: %v", ErrNotConverged, initial, result.Status)
	}

	fitted := models.SineParams{Amplitude: result.X[0], Period: result.X[1], Offset: result.X[2]}
	if !finite(fitted.Amplitude) || !finite(fitted.Offset) || !finite(fitted.Period) || fitted.Period <= 0 {
		return models.SineParams{}, fmt.Errorf("%w from %+v: got %+v", ErrNotConverged, initial, fitted)
	}
	return fitted, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
