package render

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/lightcurve/pkg/models"
)

func assertNonEmptyFile(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func testCurve() *models.LightCurve {
	n := 200
	lc := &models.LightCurve{
		Time:    make([]float64, n),
		Flux:    make([]float64, n),
		FluxErr: make([]float64, n),
	}
	for i := 0; i < n; i++ {
		lc.Time[i] = 0.1 * float64(i)
		lc.Flux[i] = 0.95 + 0.05*math.Sin(2*math.Pi*lc.Time[i]/5)
		lc.FluxErr[i] = 0.002
	}
	return lc
}

func TestFormatOf(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{path: "out/exit_0.eps", want: "eps"},
		{path: "exit_1.SVG", want: "svg"},
		{path: "exit_2.png", want: "png"},
		{path: "exit_3.pdf", want: "pdf"},
		{path: "exit_3.gif", wantErr: true},
		{path: "noext", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatOf(tt.path)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurve(t *testing.T) {
	dir := t.TempDir()

	raw := testCurve()
	raw.Flux[3] = math.NaN()
	raw.Flux[7] = math.Inf(1)
	rawPath := filepath.Join(dir, "exit_0.svg")
	require.NoError(t, Curve(rawPath, raw, CurveOptions{Title: "HD74423 raw", XLabel: "Time", YLabel: "Flux"}))
	assertNonEmptyFile(t, rawPath)

	fit := models.SineParams{Amplitude: 0.05, Period: 5, Offset: 0.95}
	cleanPath := filepath.Join(dir, "nested", "exit_1.eps")
	require.NoError(t, Curve(cleanPath, testCurve(), CurveOptions{Title: "HD74423", Fit: &fit}))
	assertNonEmptyFile(t, cleanPath)
}

func TestCurve_NoFinitePoints(t *testing.T) {
	lc := &models.LightCurve{Time: []float64{1, 2}, Flux: []float64{math.NaN(), math.NaN()}, FluxErr: []float64{1, 1}}
	err := Curve(filepath.Join(t.TempDir(), "x.svg"), lc, CurveOptions{})
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestPeriodogram(t *testing.T) {
	n := 2000
	pg := &models.Periodogram{Frequency: make([]float64, n), Power: make([]float64, n)}
	for i := range pg.Frequency {
		pg.Frequency[i] = 0.005 * float64(i+1)
		pg.Power[i] = 0.5 + 0.5*math.Cos(float64(i)/40)
	}
	peaks := []models.Peak{
		{Index: 40, Frequency: pg.Frequency[40], Refined: pg.Frequency[40], Power: pg.Power[40]},
		{Index: 1990, Frequency: pg.Frequency[1990], Refined: pg.Frequency[1990], Power: pg.Power[1990]},
	}

	path := filepath.Join(t.TempDir(), "exit_2.png")
	require.NoError(t, Periodogram(path, pg, peaks, DefaultZoomHalfWidth))
	assertNonEmptyFile(t, path)
}

func TestFolds(t *testing.T) {
	lc := testCurve()
	withErr := &models.FoldedCurve{Period: 5, Phase: lc.Time[:50], Flux: lc.Flux[:50], FluxErr: lc.FluxErr[:50]}
	noErr := &models.FoldedCurve{Period: 2.5, Phase: lc.Time[:25], Flux: lc.Flux[:25]}
	fit := models.SineParams{Amplitude: 0.05, Period: 5, Offset: 0.95}

	path := filepath.Join(t.TempDir(), "exit_3.svg")
	err := Folds(path, "HD74423", []FoldPanel{{Curve: withErr, Fit: &fit}, {Curve: noErr}})
	require.NoError(t, err)
	assertNonEmptyFile(t, path)

	assert.True(t, errors.Is(Folds(path, "HD74423", nil), ErrNoData))
}
