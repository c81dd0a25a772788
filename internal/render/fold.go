package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// FoldPanel is one phase-folded curve with its optional sine fit.
type FoldPanel struct {
	Curve *models.FoldedCurve
	Fit   *models.SineParams
}

// errorPoints satisfies plotter.XYer and plotter.YErrorer for error bars.
type errorPoints struct {
	plotter.XYs
	plotter.YErrors
}

// Folds draws the folded curves side by side. Error bars are drawn for
// curves that carry an error channel.
func Folds(path, target string, panels []FoldPanel) error {
	if len(panels) == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoData)
	}

	row := make([]*plot.Plot, len(panels))
	for i, panel := range panels {
		p, err := foldPlot(target, panel)
		if err != nil {
			return fmt.Errorf("fold %d: %w", i+1, err)
		}
		row[i] = p
	}

	return save(path, vg.Length(len(panels))*panelWidth, panelHeight, [][]*plot.Plot{row})
}

func foldPlot(target string, panel FoldPanel) (*plot.Plot, error) {
	c := panel.Curve
	pts := make(plotter.XYs, 0, c.Len())
	var errs plotter.YErrors
	for i := range c.Phase {
		if !finite(c.Phase[i]) || !finite(c.Flux[i]) {
			continue
		}
		if c.FluxErr != nil {
			if !finite(c.FluxErr[i]) {
				continue
			}
			errs = append(errs, struct{ Low, High float64 }{c.FluxErr[i], c.FluxErr[i]})
		}
		pts = append(pts, plotter.XY{X: c.Phase[i], Y: c.Flux[i]})
	}
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s folded at P = %.5f d", target, c.Period)
	p.X.Label.Text = "Phase (days)"
	p.Y.Label.Text = "Normalized flux"
	p.X.Min = 0
	p.X.Max = c.Period

	scatter, err := newScatter(pts)
	if err != nil {
		return nil, err
	}
	p.Add(scatter)

	if c.FluxErr != nil {
		bars, err := plotter.NewYErrorBars(errorPoints{XYs: pts, YErrors: errs})
		if err != nil {
			return nil, err
		}
		bars.Color = pointColor
		p.Add(bars)
	}

	if panel.Fit != nil {
		line, err := fitLine(*panel.Fit, 0, c.Period)
		if err != nil {
			return nil, err
		}
		p.Add(line)
	}
	return p, nil
}
