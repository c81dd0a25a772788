package render

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// DefaultZoomHalfWidth is the number of grid samples shown either side of
// a peak in the zoom panels.
const DefaultZoomHalfWidth = 250

// zoomPanels is the number of peak zooms placed next to the full spectrum.
const zoomPanels = 3

// Periodogram draws the full spectrum and one zoom per selected peak in a
// 2x2 grid. Peaks beyond the third are not zoomed; missing peaks leave
// their tile empty.
func Periodogram(path string, pg *models.Periodogram, peaks []models.Peak, halfWidth int) error {
	if pg.Len() == 0 {
		return fmt.Errorf("%s: %w", path, ErrNoData)
	}
	if halfWidth <= 0 {
		halfWidth = DefaultZoomHalfWidth
	}

	full, err := spectrumPlot(pg, 0, pg.Len())
	if err != nil {
		return err
	}
	full.Title.Text = "Lomb-Scargle periodogram"

	panels := []*plot.Plot{full, nil, nil, nil}
	for i, pk := range peaks {
		if i == zoomPanels {
			break
		}
		lo := max(pk.Index-halfWidth, 0)
		hi := min(pk.Index+halfWidth+1, pg.Len())
		zoom, err := spectrumPlot(pg, lo, hi)
		if err != nil {
			return err
		}
		zoom.Title.Text = fmt.Sprintf("Peak %d: f = %.5f 1/d, P = %.5f d", i+1, pk.Refined, pk.Period())
		marker, err := newOverlay(plotter.XYs{{X: pk.Refined, Y: 0}, {X: pk.Refined, Y: pk.Power}})
		if err != nil {
			return fmt.Errorf("failed to build peak marker: %w", err)
		}
		marker.Dashes = []vg.Length{vg.Points(3), vg.Points(2)}
		zoom.Add(marker)
		panels[i+1] = zoom
	}

	rows := [][]*plot.Plot{panels[:2], panels[2:]}
	return save(path, 2*panelWidth, 2*panelHeight, rows)
}

func spectrumPlot(pg *models.Periodogram, lo, hi int) (*plot.Plot, error) {
	line, err := plotter.NewLine(finitePoints(pg.Frequency[lo:hi], pg.Power[lo:hi]))
	if err != nil {
		return nil, fmt.Errorf("failed to build spectrum line: %w", err)
	}
	line.Color = pointColor

	p := plot.New()
	p.X.Label.Text = "Frequency (1/day)"
	p.Y.Label.Text = "Power"
	p.Y.Min = 0
	p.Add(line)
	return p, nil
}
