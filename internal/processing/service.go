package processing

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/internal/source"
	"github.com/RMahshie/lightcurve/internal/storage"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// ProcessingService runs uploaded analyses
type ProcessingService interface {
	ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error
}

type processingService struct {
	s3         storage.S3Service
	repository repository.AnalysisRepository
	options    Options
	workDir    string // parent of the per-run temp directories, "" for the OS default
}

// NewProcessingService creates a service that analyzes with opts. The
// target, snapshot and output directories of opts are set per analysis.
func NewProcessingService(s3Service storage.S3Service, repo repository.AnalysisRepository, opts Options, workDir string) ProcessingService {
	return &processingService{
		s3:         s3Service,
		repository: repo,
		options:    opts,
		workDir:    workDir,
	}
}

func (s *processingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	logger := log.With().Str("analysisID", analysisID.String()).Logger()

	// Step 1: Update to processing status
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 10); err != nil {
		return err
	}

	// Step 2: Get analysis details
	analysis, err := s.repository.GetByID(ctx, analysisID)
	if err != nil {
		return err
	}
	if analysis.DatasetKey == nil {
		s.repository.UpdateError(ctx, analysisID, "No light curve uploaded")
		return nil // status is updated to failed
	}

	// Step 3: Download from S3
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 20); err != nil {
		return err
	}
	data, err := s.s3.DownloadFile(ctx, *analysis.DatasetKey)
	if err != nil {
		logger.Error().Err(err).Str("key", *analysis.DatasetKey).Msg("Dataset download failed")
		s.repository.UpdateError(ctx, analysisID, "Failed to download light curve")
		return nil // status is updated to failed
	}

	lc, err := source.Read(bytes.NewReader(data), *analysis.DatasetKey, s.options.Columns)
	if err != nil {
		s.repository.UpdateError(ctx, analysisID, fmt.Sprintf("Failed to read light curve: %v", err))
		return nil // status is updated to failed
	}
	logger.Info().Int("samples", lc.Len()).Msg("Light curve loaded")

	// Step 4: Run the analysis in a scratch directory
	workspace, err := os.MkdirTemp(s.workDir, "lightcurve-"+analysisID.String()+"-")
	if err != nil {
		return fmt.Errorf("failed to create workspace: %w", err)
	}
	defer os.RemoveAll(workspace) // Always cleanup

	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 50); err != nil {
		return err
	}

	opts := s.options
	opts.Target = analysis.Target
	opts.SnapshotDir = workspace
	opts.OutputDir = workspace
	result, err := NewAnalyzer(opts).Run(ctx, lc)
	if err != nil {
		s.repository.UpdateError(ctx, analysisID, fmt.Sprintf("Analysis failed: %v", err))
		return fmt.Errorf("analysis %s failed: %w", analysisID, err)
	}

	// Step 5: Upload snapshots and figures
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 80); err != nil {
		return err
	}
	artifacts, err := s.uploadArtifacts(ctx, analysisID, result.Artifacts)
	if err != nil {
		s.repository.UpdateError(ctx, analysisID, "Failed to store analysis artifacts")
		return err
	}

	// Step 6: Store results
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusProcessing, 90); err != nil {
		return err
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
	if err := s.repository.StoreResults(ctx, results); err != nil {
		return err
	}

	// Step 7: Mark complete
	if err := s.repository.UpdateStatus(ctx, analysisID, models.StatusCompleted, 100); err != nil {
		return err
	}

	logger.Info().Floats64("periods", result.Periods()).Msg("Analysis completed")
	return nil
}

// uploadArtifacts stores each file under the analysis prefix and returns
// file name to object key.
func (s *processingService) uploadArtifacts(ctx context.Context, analysisID uuid.UUID, paths []string) (map[string]string, error) {
	artifacts := make(map[string]string, len(paths))
	for _, p := range paths {
		name := filepath.Base(p)
		key := storage.ArtifactKey(analysisID.String(), name)

		f, err := os.Open(p)
		if err != nil {
			return nil, fmt.Errorf("failed to open artifact %s: %w", name, err)
		}
		err = s.s3.UploadFile(ctx, key, f, storage.ContentTypeFor(name))
		f.Close()
		if err != nil {
			return nil, err
		}
		artifacts[name] = key
	}
	return artifacts, nil
}
