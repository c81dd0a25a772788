package cleaning

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gonum.org/v1/gonum/floats"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// Snapshot stages, in pipeline order.
const (
	StageRaw        = "raw"
	StageFiltered   = "filtered"
	StageNoOutlier  = "no_outlier"
	StageNormalized = "normalized"
)

// Stages lists the snapshot stages in the order the pipeline writes them.
var Stages = []string{StageRaw, StageFiltered, StageNoOutlier, StageNormalized}

// SnapshotWriter persists the light curve as it leaves a cleaning stage.
type SnapshotWriter interface {
	WriteSnapshot(stage string, lc *models.LightCurve) error
}

// Report summarizes a cleaning run.
type Report struct {
	Counts  models.StageCounts
	FluxMax float64
}

// Pipeline runs the cleaning stages in order and snapshots each of them.
type Pipeline struct {
	Threshold float64
	Snapshots SnapshotWriter // optional
}

// NewPipeline creates a cleaning pipeline with the given outlier threshold.
func NewPipeline(threshold float64, snapshots SnapshotWriter) *Pipeline {
	return &Pipeline{Threshold: threshold, Snapshots: snapshots}
}

// Clean filters non-finite flux, removes outliers and normalizes lc.
// The returned series has finite time and flux and positive finite errors.
func (p *Pipeline) Clean(lc *models.LightCurve) (*models.LightCurve, Report, error) {
	var report Report
	report.Counts.Raw = lc.Len()
	if err := p.snapshot(StageRaw, lc); err != nil {
		return nil, report, err
	}

	finite := FilterFinite(lc)
	report.Counts.Finite = finite.Len()
	logDropped(StageFiltered, lc.Len(), finite.Len())
	if err := p.snapshot(StageFiltered, finite); err != nil {
		return nil, report, err
	}

	kept := RemoveOutliers(finite, p.Threshold)
	report.Counts.NoOutlier = kept.Len()
	logDropped(StageNoOutlier, finite.Len(), kept.Len())
	if err := p.snapshot(StageNoOutlier, kept); err != nil {
		return nil, report, err
	}

	usable := FilterErrors(FilterTime(kept))
	report.Counts.Usable = usable.Len()
	logDropped("usable", kept.Len(), usable.Len())

	normalized, err := Normalize(usable)
	if err != nil {
		return nil, report, fmt.Errorf("clean %d raw samples (finite=%d, at or above %g=%d, usable=%d): %w",
			report.Counts.Raw, report.Counts.Finite, p.Threshold, report.Counts.NoOutlier, report.Counts.Usable, err)
	}
	report.Counts.Normalized = normalized.Len()
	report.FluxMax = floats.Max(usable.Flux)
	if err := p.snapshot(StageNormalized, normalized); err != nil {
		return nil, report, err
	}

	log.Info().
		Int("raw", report.Counts.Raw).
		Int("finite", report.Counts.Finite).
		Int("no_outlier", report.Counts.NoOutlier).
		Int("usable", report.Counts.Usable).
		Int("normalized", report.Counts.Normalized).
		Float64("flux_max", report.FluxMax).
		Msg("Light curve cleaned")

	return normalized, report, nil
}

func (p *Pipeline) snapshot(stage string, lc *models.LightCurve) error {
	if p.Snapshots == nil {
		return nil
	}
	if err := p.Snapshots.WriteSnapshot(stage, lc); err != nil {
		return fmt.Errorf("failed to write %s snapshot: %w", stage, err)
	}
	return nil
}

func logDropped(stage string, before, after int) {
	if before == after {
		return
	}
	log.Info().
		Str("stage", stage).
		Int("before", before).
		Int("after", after).
		Int("dropped", before-after).
		Msg("Samples dropped")
}
