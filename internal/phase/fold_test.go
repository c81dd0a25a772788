package phase

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/lightcurve/pkg/models"
)

func TestFold_Properties(t *testing.T) {
	rng := rand.New(rand.NewSource(21))

	for trial := 0; trial < 25; trial++ {
		n := 50 + rng.Intn(300)
		time := make([]float64, n)
		flux := make([]float64, n)
		for i := range time {
			time[i] = 1325 + 27*rng.Float64()
			flux[i] = rng.NormFloat64()
		}
		period := 0.05 + 10*rng.Float64()

		folded, err := Fold(time, flux, nil, period)
		require.NoError(t, err)

		require.Equal(t, n, folded.Len())
		assert.Nil(t, folded.FluxErr)
		for i, p := range folded.Phase {
			assert.GreaterOrEqual(t, p, 0.0)
			assert.Less(t, p, period)
			if i > 0 {
				assert.LessOrEqual(t, folded.Phase[i-1], p)
			}
		}

		// folding permutes the flux values, it never transforms them
		want := append([]float64(nil), flux...)
		got := append([]float64(nil), folded.Flux...)
		sort.Float64s(want)
		sort.Float64s(got)
		assert.Equal(t, want, got)
	}
}

func TestFold_ReordersErrorsWithFlux(t *testing.T) {
	time := []float64{0.5, 2.25, 3.0, 4.75}
	flux := []float64{10, 20, 30, 40}
	fluxErr := []float64{1, 2, 3, 4}

	folded, err := Fold(time, flux, fluxErr, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.25, 0.5, 0.75, 1.0}, folded.Phase)
	assert.Equal(t, []float64{20, 10, 40, 30}, folded.Flux)
	assert.Equal(t, []float64{2, 1, 4, 3}, folded.FluxErr)
	assert.Equal(t, 2.0, folded.Period)
}

func TestFold_NegativeTimes(t *testing.T) {
	folded, err := Fold([]float64{-0.5, -3.25}, []float64{1, 2}, nil, 2)
	require.NoError(t, err)

	assert.Equal(t, []float64{0.75, 1.5}, folded.Phase)
	assert.Equal(t, []float64{2, 1}, folded.Flux)
}

func TestFold_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		time    []float64
		flux    []float64
		fluxErr []float64
		period  float64
		wantErr error
	}{
		{name: "zero period", time: []float64{1}, flux: []float64{1}, period: 0, wantErr: ErrInvalidPeriod},
		{name: "negative period", time: []float64{1}, flux: []float64{1}, period: -2, wantErr: ErrInvalidPeriod},
		{name: "nan period", time: []float64{1}, flux: []float64{1}, period: math.NaN(), wantErr: ErrInvalidPeriod},
		{name: "infinite period", time: []float64{1}, flux: []float64{1}, period: math.Inf(1), wantErr: ErrInvalidPeriod},
		{name: "flux too short", time: []float64{1, 2}, flux: []float64{1}, period: 1, wantErr: ErrLengthMismatch},
		{name: "errors too short", time: []float64{1, 2}, flux: []float64{1, 2}, fluxErr: []float64{1}, period: 1, wantErr: ErrLengthMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folded, err := Fold(tt.time, tt.flux, tt.fluxErr, tt.period)
			assert.Nil(t, folded)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)
		})
	}
}

func TestFoldAll_InvalidPeriodOnlyAbortsItsFold(t *testing.T) {
	lc := &models.LightCurve{
		Time:    []float64{0, 1, 2, 3},
		Flux:    []float64{1, 2, 3, 4},
		FluxErr: []float64{0.1, 0.2, 0.3, 0.4},
	}

	results := FoldAll(lc, []float64{1.5, -1, 2.5}, true)

	require.Len(t, results, 3)
	assert.NoError(t, results[0].Err)
	assert.True(t, errors.Is(results[1].Err, ErrInvalidPeriod))
	assert.Nil(t, results[1].Curve)
	assert.NoError(t, results[2].Err)

	assert.Equal(t, []float64{0, 0, 0.5, 1}, results[0].Curve.Phase)
	assert.Equal(t, []float64{1, 4, 3, 2}, results[0].Curve.Flux)
	assert.Equal(t, []float64{0.1, 0.4, 0.3, 0.2}, results[0].Curve.FluxErr)
	assert.Equal(t, 2.5, results[2].Curve.Period)
}
