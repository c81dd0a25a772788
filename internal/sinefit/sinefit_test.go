package sinefit

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/lightcurve/pkg/models"
)

func TestEval(t *testing.T) {
	p := models.SineParams{Amplitude: 2, Period: 4, Offset: 1}

	assert.InDelta(t, 1.0, Eval(p, 0), 1e-12)
	assert.InDelta(t, 3.0, Eval(p, 1), 1e-12)
	assert.InDelta(t, 1.0, Eval(p, 2), 1e-12)
	assert.InDelta(t, -1.0, Eval(p, 3), 1e-12)
	assert.InDeltaSlice(t, []float64{1, 3, 1, -1}, Curve(p, []float64{0, 1, 2, 3}), 1e-12)
}

func TestInitialGuess(t *testing.T) {
	guess := InitialGuess([]float64{0.9, 1.1, 1.0, 1.0}, 5)

	assert.InDelta(t, 0.1, guess.Amplitude, 1e-12)
	assert.Equal(t, 5.0, guess.Period)
	assert.InDelta(t, 1.0, guess.Offset, 1e-12)
}

func TestFit_RecoversParameters(t *testing.T) {
	rng := rand.New(rand.NewSource(31))
	want := models.SineParams{Amplitude: 0.05, Period: 5, Offset: 0.95}

	x := make([]float64, 400)
	y := make([]float64, len(x))
	for i := range x {
		x[i] = 5 * float64(i) / float64(len(x))
		y[i] = Eval(want, x[i]) + 0.002*rng.NormFloat64()
	}

	got, err := Fit(x, y, InitialGuess(y, 5.2))
	require.NoError(t, err)

	assert.InDelta(t, want.Amplitude, got.Amplitude, 0.005)
	assert.InDelta(t, want.Period, got.Period, 0.05)
	assert.InDelta(t, want.Offset, got.Offset, 0.005)
}

func TestFit_TooFewPoints(t *testing.T) {
	_, err := Fit([]float64{1, 2}, []float64{1, 2}, models.SineParams{Period: 1})
	assert.True(t, errors.Is(err, ErrTooFewPoints))

	_, err = Fit([]float64{1, 2, 3}, []float64{1, 2}, models.SineParams{Period: 1})
	assert.True(t, errors.Is(err, ErrTooFewPoints))
}

func TestFit_NonFiniteDataDoesNotConverge(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, math.NaN(), 1, 0}

	_, err := Fit(x, y, models.SineParams{Amplitude: 1, Period: 4})
	assert.True(t, errors.Is(err, ErrNotConverged), "got %v", err)
}
