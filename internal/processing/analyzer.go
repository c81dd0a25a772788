package processing

import (
	"context"
	"fmt"
	"math"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/RMahshie/lightcurve/internal/cleaning"
	"github.com/RMahshie/lightcurve/internal/periodogram"
	"github.com/RMahshie/lightcurve/internal/phase"
	"github.com/RMahshie/lightcurve/internal/render"
	"github.com/RMahshie/lightcurve/internal/sinefit"
	"github.com/RMahshie/lightcurve/internal/snapshot"
	"github.com/RMahshie/lightcurve/internal/source"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// PlotNames are the file names of the four figures, relative to the
// output directory. The extension selects the format.
type PlotNames struct {
	Raw         string
	Clean       string
	Periodogram string
	Folds       string
}

// DefaultPlotNames returns the historical figure names.
func DefaultPlotNames() PlotNames {
	return PlotNames{
		Raw:         "exit_0.eps",
		Clean:       "exit_1.eps",
		Periodogram: "exit_2.eps",
		Folds:       "exit_3.eps",
	}
}

// Options configures one analysis run.
type Options struct {
	Target        string
	Threshold     float64
	Columns       source.Columns
	Grid          periodogram.GridOptions
	Selection     periodogram.SelectOptions
	ZoomHalfWidth int
	SnapshotDir   string
	SnapshotNames map[string]string
	OutputDir     string
	Plots         PlotNames
}

// DefaultOptions reproduces the reference analysis of HD 74423.
func DefaultOptions() Options {
	return Options{
		Target:        "HD74423",
		Threshold:     cleaning.DefaultOutlierThreshold,
		Columns:       source.DefaultColumns(),
		Grid:          periodogram.DefaultGridOptions(),
		Selection:     periodogram.DefaultSelectOptions(),
		ZoomHalfWidth: render.DefaultZoomHalfWidth,
		SnapshotDir:   ".",
		OutputDir:     ".",
		Plots:         DefaultPlotNames(),
	}
}

// Fold is one candidate period folded and fitted. Curve is nil when the
// fold failed; Fit is nil when the sine fit did not converge.
type Fold struct {
	Peak  models.Peak
	Curve *models.FoldedCurve
	Fit   *models.SineParams
	Err   error
}

// Result is everything one run produced.
type Result struct {
	Target      string
	Report      cleaning.Report
	Cleaned     *models.LightCurve
	Periodogram *models.Periodogram
	Peaks       []models.Peak
	Folds       []Fold
	// Artifacts are the paths of every file written by the run.
	Artifacts []string
}

// Periods returns the candidate periods in rank order.
func (r *Result) Periods() []float64 {
	periods := make([]float64, len(r.Peaks))
	for i, pk := range r.Peaks {
		periods[i] = pk.Period()
	}
	return periods
}

// Candidates summarizes the peaks for storage and the API.
func (r *Result) Candidates() []models.Candidate {
	out := make([]models.Candidate, len(r.Peaks))
	for i, pk := range r.Peaks {
		out[i] = models.Candidate{
			Rank:      i + 1,
			Frequency: pk.Refined,
			Period:    pk.Period(),
			Power:     pk.Power,
		}
		if i < len(r.Folds) && r.Folds[i].Fit != nil {
			amplitude := math.Abs(r.Folds[i].Fit.Amplitude)
			out[i].Amplitude = &amplitude
		}
	}
	return out
}

// Analyzer runs the batch pipeline: clean, periodogram, peak selection,
// folding, sine fits and figures.
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer with the given options.
func NewAnalyzer(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// RunFile loads the table at path and analyzes it.
func (a *Analyzer) RunFile(ctx context.Context, path string) (*Result, error) {
	lc, err := source.LoadFile(path, a.opts.Columns)
	if err != nil {
		return nil, err
	}
	log.Info().Str("dataset", path).Int("samples", lc.Len()).Msg("Loaded light curve")
	return a.Run(ctx, lc)
}

// Run analyzes a raw light curve.
func (a *Analyzer) Run(ctx context.Context, raw *models.LightCurve) (*Result, error) {
	opts := a.opts
	res := &Result{Target: opts.Target}
	snapshots := &trackingWriter{dir: snapshot.NewDir(opts.SnapshotDir, opts.SnapshotNames)}

	rawPlot := a.plotPath(opts.Plots.Raw)
	err := render.Curve(rawPlot, raw, render.CurveOptions{
		Title:  fmt.Sprintf("%s light curve with out-of-range values", opts.Target),
		XLabel: "Time (BTJD)",
		YLabel: "SAP flux (e-/s)",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render raw curve: %w", err)
	}
	res.Artifacts = append(res.Artifacts, rawPlot)

	cleaned, report, err := cleaning.NewPipeline(opts.Threshold, snapshots).Clean(raw)
	res.Report = report
	res.Artifacts = append(res.Artifacts, snapshots.paths...)
	if err != nil {
		return res, err
	}
	res.Cleaned = cleaned
	if err := ctx.Err(); err != nil {
		return res, err
	}

	cleanPlot := a.plotPath(opts.Plots.Clean)
	err = render.Curve(cleanPlot, cleaned, render.CurveOptions{
		Title:  fmt.Sprintf("%s light curve", opts.Target),
		XLabel: "Time (BTJD)",
		YLabel: "Normalized flux",
	})
	if err != nil {
		return res, fmt.Errorf("failed to render cleaned curve: %w", err)
	}
	res.Artifacts = append(res.Artifacts, cleanPlot)

	pg, err := periodogram.AutoPower(cleaned.Time, cleaned.Flux, cleaned.FluxErr, opts.Grid)
	if err != nil {
		return res, fmt.Errorf("periodogram of %d samples: %w", cleaned.Len(), err)
	}
	res.Periodogram = pg

	peaks, err := periodogram.SelectPeaks(pg, opts.Selection)
	if err != nil {
		return res, err
	}
	res.Peaks = peaks
	for _, pk := range peaks {
		log.Info().
			Float64("frequency", pk.Refined).
			Float64("period", pk.Period()).
			Float64("power", pk.Power).
			Msg("Candidate period")
	}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	pgPlot := a.plotPath(opts.Plots.Periodogram)
	if err := render.Periodogram(pgPlot, pg, peaks, opts.ZoomHalfWidth); err != nil {
		return res, fmt.Errorf("failed to render periodogram: %w", err)
	}
	res.Artifacts = append(res.Artifacts, pgPlot)

	res.Folds = foldAndFit(cleaned, peaks)

	var panels []render.FoldPanel
	for _, f := range res.Folds {
		if f.Curve != nil {
			panels = append(panels, render.FoldPanel{Curve: f.Curve, Fit: f.Fit})
		}
	}
	if len(panels) > 0 {
		foldPlot := a.plotPath(opts.Plots.Folds)
		if err := render.Folds(foldPlot, opts.Target, panels); err != nil {
			return res, fmt.Errorf("failed to render folds: %w", err)
		}
		res.Artifacts = append(res.Artifacts, foldPlot)
	}

	return res, nil
}

// foldAndFit folds the cleaned series at every peak period and fits a
// sinusoid to each fold. Failures are logged and leave the fold partial.
func foldAndFit(cleaned *models.LightCurve, peaks []models.Peak) []Fold {
	periods := make([]float64, len(peaks))
	for i, pk := range peaks {
		periods[i] = pk.Period()
	}

	folds := make([]Fold, len(peaks))
	for i, r := range phase.FoldAll(cleaned, periods, true) {
		folds[i] = Fold{Peak: peaks[i], Curve: r.Curve, Err: r.Err}
		if r.Err != nil {
			log.Warn().Err(r.Err).Float64("period", r.Period).Msg("Skipping fold")
			continue
		}

		guess := sinefit.InitialGuess(r.Curve.Flux, r.Period)
		fit, err := sinefit.Fit(r.Curve.Phase, r.Curve.Flux, guess)
		if err != nil {
			log.Warn().Err(err).Float64("period", r.Period).Msg("Sine fit failed, omitting overlay")
			continue
		}
		folds[i].Fit = &fit
	}
	return folds
}

// trackingWriter records the path of every snapshot it writes.
type trackingWriter struct {
	dir   *snapshot.Dir
	paths []string
}

func (w *trackingWriter) WriteSnapshot(stage string, lc *models.LightCurve) error {
	if err := w.dir.WriteSnapshot(stage, lc); err != nil {
		return err
	}
	w.paths = append(w.paths, w.dir.FilePath(stage))
	return nil
}

func (a *Analyzer) plotPath(name string) string {
	return filepath.Join(a.opts.OutputDir, name)
}
