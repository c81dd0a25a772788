package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/RMahshie/lightcurve/internal/processing"
	"github.com/RMahshie/lightcurve/internal/repository/store"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// edgeItems is how many pairs are printed at each end of a summarized fold.
const (
	edgeItems        = 3
	summaryThreshold = 1000
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	Full bool
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze [dataset]",
		Short: "Run the batch analysis on a light curve table",
		Long: `Loads a FITS or text light curve, writes the four cleaning snapshots,
computes the periodogram, prints the candidate periods and the folded
(phase, flux) pairs, and writes the four figures.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("dataset", args[0]); err != nil {
					return err
				}
			}
			return runAnalyze(cmd, opts)
		},
	}

	cmd.Flags().String("dataset", "", "light curve table (FITS or text)")
	cmd.Flags().String("target", "", "target star name used in plot titles")
	cmd.Flags().Float64("threshold", 0, "outlier threshold in raw flux units")
	cmd.Flags().Int("peaks", 0, "number of candidate periods")
	cmd.Flags().Float64("exclusion-width", 0, "minimum separation of peaks in 1/day")
	cmd.Flags().Float64("samples-per-peak", 0, "frequency grid oversampling")
	cmd.Flags().Float64("nyquist-factor", 0, "frequency grid extent as a multiple of the Nyquist frequency")
	cmd.Flags().Int("zoom-half-width", 0, "grid samples either side of a peak in the zoom panels")
	cmd.Flags().String("snapshot-dir", "", "directory for the snapshot tables")
	cmd.Flags().StringP("output-dir", "o", "", "directory for the figures")
	cmd.Flags().String("format", "", "figure format (eps|svg|png|pdf), overrides the plot name extensions")
	cmd.Flags().String("db", "", "database URL to record the run in (postgres://... or sqlite://path)")
	cmd.Flags().BoolVar(&opts.Full, "full", false, "print every folded pair instead of a summary")

	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *AnalyzeOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	started := time.Now().UTC()
	analyzer := processing.NewAnalyzer(analyzerOptions(cfg))
	result, err := analyzer.RunFile(ctx, cfg.Analysis.Dataset)
	if err != nil {
		return fmt.Errorf("analysis of %s failed: %w", cfg.Analysis.Dataset, err)
	}

	out := cmd.OutOrStdout()
	printPeriods(out, result.Periods())
	for _, f := range result.Folds {
		if f.Curve == nil {
			continue
		}
		fmt.Fprintf(out, "Folded at %.6f d\n", f.Curve.Period)
		printPairs(out, f.Curve.Phase, f.Curve.Flux, opts.Full)
	}

	if cfg.Database.URL == "" {
		return nil
	}
	return recordRun(ctx, cfg.Database.URL, cfg.Analysis.Dataset, started, result)
}

// recordRun stores a completed analysis and its results with local
// artifact paths.
func recordRun(ctx context.Context, url, dataset string, started time.Time, result *processing.Result) error {
	db, err := store.Open(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	id := uuid.New()
	analysis := &models.Analysis{
		ID:         id.String(),
		Target:     result.Target,
		Status:     models.StatusProcessing,
		DatasetKey: &dataset,
		CreatedAt:  started,
		UpdatedAt:  started,
	}
	if err := db.Analyses.Create(ctx, analysis); err != nil {
		return err
	}

	artifacts := make(map[string]string, len(result.Artifacts))
	for _, p := range result.Artifacts {
		artifacts[filepath.Base(p)] = p
	}
	results := &models.AnalysisResults{
		ID:         uuid.New().String(),
		AnalysisID: analysis.ID,
		Candidates: result.Candidates(),
		Counts:     result.Report.Counts,
		FluxMax:    result.Report.FluxMax,
		Artifacts:  artifacts,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.Analyses.StoreResults(ctx, results); err != nil {
		return err
	}
	if err := db.Analyses.UpdateStatus(ctx, id, models.StatusCompleted, 100); err != nil {
		return err
	}

	log.Info().Str("analysis_id", analysis.ID).Str("dialect", db.Dialect).Msg("Recorded analysis")
	return nil
}

func printPeriods(w io.Writer, periods []float64) {
	fmt.Fprint(w, "Periods found: [")
	for i, p := range periods {
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprintf(w, "%.8g", p)
	}
	fmt.Fprintln(w, "]")
}

// printPairs prints (phase, flux) rows. Long folds are summarized to their
// first and last edgeItems rows unless full is set.
func printPairs(w io.Writer, phase, flux []float64, full bool) {
	n := len(phase)
	if n == 0 {
		fmt.Fprintln(w, "[]")
		return
	}

	row := func(i int) string {
		return fmt.Sprintf("[%.8g %.8g]", phase[i], flux[i])
	}

	summarize := !full && n > summaryThreshold
	fmt.Fprint(w, "[")
	for i := 0; i < n; i++ {
		if summarize && i == edgeItems {
			fmt.Fprint(w, " ...\n")
			i = n - edgeItems
		}
		if i > 0 {
			fmt.Fprint(w, " ")
		}
		fmt.Fprint(w, row(i))
		if i < n-1 {
			fmt.Fprint(w, "\n")
		}
	}
	fmt.Fprintln(w, "]")
}
