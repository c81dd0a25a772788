package render

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"

	"github.com/RMahshie/lightcurve/internal/sinefit"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// CurveOptions labels a light curve figure. Fit, when set, is drawn over
// the samples across the plotted time range.
type CurveOptions struct {
	Title  string
	XLabel string
	YLabel string
	Fit    *models.SineParams
}

// Curve draws flux against time. Non-finite samples are left out of the
// figure, so raw curves can be plotted as they were loaded.
func Curve(path string, lc *models.LightCurve, opts CurveOptions) error {
	pts := finitePoints(lc.Time, lc.Flux)
	if len(pts) == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoData)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel

	scatter, err := newScatter(pts)
	if err != nil {
		return fmt.Errorf("failed to build scatter: %w", err)
	}
	p.Add(scatter)

	if opts.Fit != nil {
		xs := make([]float64, len(pts))
		for i, pt := range pts {
			xs[i] = pt.X
		}
		line, err := fitLine(*opts.Fit, floats.Min(xs), floats.Max(xs))
		if err != nil {
			return fmt.Errorf("failed to build fit overlay: %w", err)
		}
		p.Add(line)
		p.Legend.Add("sine fit", line)
		p.Legend.Top = true
	}

	return save(path, panelWidth, panelHeight, [][]*plot.Plot{{p}})
}

func fitLine(params models.SineParams, from, to float64) (*plotter.Line, error) {
	xs := make([]float64, overlaySamples)
	floats.Span(xs, from, to)
	return newOverlay(finitePoints(xs, sinefit.Curve(params, xs)))
}
