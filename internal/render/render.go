// Package render draws the analysis figures with gonum/plot. The output
// format follows the file extension of the target path.
package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

var (
	// ErrNoData is returned when a figure has no finite point to draw.
	ErrNoData = errors.New("no finite data to plot")
	// ErrUnsupportedFormat is returned for file extensions without a canvas backend.
	ErrUnsupportedFormat = errors.New("unsupported plot format")
)

const (
	panelWidth     = 8 * vg.Inch
	panelHeight    = 5 * vg.Inch
	overlaySamples = 500
)

var (
	pointColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	overlayColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// FormatOf returns the canvas format name for path.
func FormatOf(path string) (string, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	switch ext {
	case "eps", "svg", "png", "pdf", "jpg", "jpeg", "tif", "tiff":
		return ext, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
}

// save lays out rows of plots on a single canvas and writes it to path.
// Nil entries leave their tile empty.
func save(path string, width, height vg.Length, rows [][]*plot.Plot) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(width, height, format)
	if err != nil {
		return fmt.Errorf("failed to create %s canvas: %w", format, err)
	}

	tiles := draw.Tiles{
		Rows:      len(rows),
		Cols:      len(rows[0]),
		PadX:      6 * vg.Millimeter,
		PadY:      6 * vg.Millimeter,
		PadTop:    2 * vg.Millimeter,
		PadBottom: 2 * vg.Millimeter,
		PadLeft:   2 * vg.Millimeter,
		PadRight:  2 * vg.Millimeter,
	}
	canvases := plot.Align(rows, tiles, draw.New(c))
	for j := range rows {
		for i, p := range rows[j] {
			if p != nil {
				p.Draw(canvases[j][i])
			}
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create plot directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot file: %w", err)
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// finitePoints pairs x and y, skipping pairs with a non-finite member.
func finitePoints(x, y []float64) plotter.XYs {
	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if finite(x[i]) && finite(y[i]) {
			pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
		}
	}
	return pts
}

func newScatter(pts plotter.XYs) (*plotter.Scatter, error) {
	s, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, err
	}
	s.GlyphStyle.Color = pointColor
	s.GlyphStyle.Radius = vg.Points(1)
	s.GlyphStyle.Shape = draw.CircleGlyph{}
	return s, nil
}

func newOverlay(pts plotter.XYs) (*plotter.Line, error) {
	l, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	l.Color = overlayColor
	l.Width = vg.Points(1.5)
	return l, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
