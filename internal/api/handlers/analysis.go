package handlers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RMahshie/lightcurve/internal/processing"
	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/internal/storage"
	"github.com/RMahshie/lightcurve/pkg/models"
)

const (
	minFileSize   = 1000
	maxFileSize   = 100 * 1024 * 1024
	uploadExpires = 15 * time.Minute
)

// AnalysisHandler handles analysis-related HTTP requests
type AnalysisHandler struct {
	repo          repository.AnalysisRepository
	s3Service     storage.S3Service
	processingSvc processing.ProcessingService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(repo repository.AnalysisRepository, s3Service storage.S3Service, processingSvc processing.ProcessingService) *AnalysisHandler {
	return &AnalysisHandler{
		repo:          repo,
		s3Service:     s3Service,
		processingSvc: processingSvc,
	}
}

// CreateAnalysis creates a new analysis and returns an upload URL
func (h *AnalysisHandler) CreateAnalysis(ctx context.Context, req *models.CreateAnalysisRequest) (*models.CreateAnalysisResponse, error) {
	log.Info().Int64("fileSize", req.Body.FileSize).Str("target", req.Body.Target).Msg("Creating new analysis")

	if req.Body.FileSize < minFileSize {
		return nil, huma.Error400BadRequest("Light curve file too small.", nil)
	}
	if req.Body.FileSize > maxFileSize {
		return nil, huma.Error400BadRequest("Light curve file too large. The limit is 100 MB.", nil)
	}

	analysisID := uuid.New()
	datasetKey, err := storage.DatasetKey(analysisID.String(), req.Body.MimeType)
	if err != nil {
		return nil, huma.Error400BadRequest("Light curve format not supported. Upload a FITS table or a text matrix.", err)
	}

	log.Info().Str("datasetKey", datasetKey).Str("mimeType", req.Body.MimeType).Msg("Generating S3 upload URL")
	uploadURL, err := h.s3Service.GenerateUploadURL(ctx, datasetKey, req.Body.MimeType)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidContentType) {
			return nil, huma.Error400BadRequest("Light curve format not supported. Upload a FITS table or a text matrix.", err)
		}
		return nil, huma.Error400BadRequest("Failed to prepare upload. Please try again.", err)
	}

	now := time.Now().UTC()
	analysis := &models.Analysis{
		ID:         analysisID.String(),
		Target:     req.Body.Target,
		Status:     models.StatusPending,
		Progress:   0,
		DatasetKey: &datasetKey,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := h.repo.Create(ctx, analysis); err != nil {
		return nil, huma.Error500InternalServerError("Failed to create analysis", err)
	}

	log.Info().Str("analysisID", analysis.ID).Msg("Analysis created, returning upload URL")
	return &models.CreateAnalysisResponse{
		Body: models.CreateAnalysisResponseBody{
			ID:        analysis.ID,
			UploadURL: uploadURL,
			ExpiresIn: int(uploadExpires.Seconds()),
		},
	}, nil
}

// ListAnalyses returns every analysis of a target star
func (h *AnalysisHandler) ListAnalyses(ctx context.Context, req *models.ListAnalysesRequest) (*models.ListAnalysesResponse, error) {
	analyses, err := h.repo.GetByTarget(ctx, req.Target)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list analyses", err)
	}

	resp := &models.ListAnalysesResponse{}
	resp.Body.Analyses = make([]models.AnalysisSummary, len(analyses))
	for i, a := range analyses {
		resp.Body.Analyses[i] = models.AnalysisSummary{
			ID:          a.ID,
			Target:      a.Target,
			Status:      a.Status,
			Progress:    a.Progress,
			CreatedAt:   a.CreatedAt,
			CompletedAt: a.CompletedAt,
		}
	}
	return resp, nil
}

// GetAnalysisStatus returns the current status of an analysis
func (h *AnalysisHandler) GetAnalysisStatus(ctx context.Context, req *models.GetAnalysisStatusRequest) (*models.GetAnalysisStatusResponse, error) {
	analysisID, analysis, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	var resultsID *string
	if analysis.Status == models.StatusCompleted {
		results, err := h.repo.GetResults(ctx, analysisID)
		if err == nil && results != nil {
			resultsID = &results.ID
		}
	}

	log.Debug().Str("analysisID", analysis.ID).Str("status", analysis.Status).Int("progress", analysis.Progress).Msg("Returning analysis status")
	return &models.GetAnalysisStatusResponse{
		Body: models.GetAnalysisStatusResponseBody{
			ID:        analysis.ID,
			Status:    analysis.Status,
			Progress:  analysis.Progress,
			Message:   statusMessage(analysis.Status, analysis.Progress),
			Error:     analysis.ErrorMsg,
			ResultsID: resultsID,
		},
	}, nil
}

// GetAnalysisResults returns the candidate periods and artifact links
func (h *AnalysisHandler) GetAnalysisResults(ctx context.Context, req *models.GetAnalysisResultsRequest) (*models.GetAnalysisResultsResponse, error) {
	analysisID, analysis, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	if analysis.Status != models.StatusCompleted {
		return nil, huma.Error409Conflict("Analysis not yet completed",
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	results, err := h.repo.GetResults(ctx, analysisID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to get results", err)
	}

	urls := make(map[string]string, len(results.Artifacts))
	for name, key := range results.Artifacts {
		url, err := h.s3Service.GenerateDownloadURL(ctx, key)
		if err != nil {
			return nil, huma.Error500InternalServerError("Failed to sign artifact URL", err)
		}
		urls[name] = url
	}

	return &models.GetAnalysisResultsResponse{
		Body: models.GetAnalysisResultsResponseBody{
			ID:         results.ID,
			AnalysisID: results.AnalysisID,
			Target:     analysis.Target,
			Candidates: results.Candidates,
			Counts:     results.Counts,
			FluxMax:    results.FluxMax,
			Artifacts:  urls,
			CreatedAt:  results.CreatedAt,
		},
	}, nil
}

// StartProcessing starts processing an uploaded file
func (h *AnalysisHandler) StartProcessing(ctx context.Context, req *models.StartProcessingRequest) (*models.StartProcessingResponse, error) {
	analysisID, analysis, err := h.lookup(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	if analysis.Status == models.StatusProcessing || analysis.Status == models.StatusCompleted {
		return nil, huma.Error409Conflict("Analysis already "+analysis.Status,
			fmt.Errorf("analysis status is %s", analysis.Status))
	}

	// Start processing in background (don't wait for completion)
	log.Info().Str("analysisID", analysisID.String()).Msg("Starting background processing goroutine")
	go func() {
		err := h.processingSvc.ProcessAnalysis(context.Background(), analysisID)
		if err != nil {
			log.Error().Err(err).Str("analysisID", analysisID.String()).Msg("Processing failed")
			h.repo.UpdateError(context.Background(), analysisID, fmt.Sprintf("Processing failed: %v", err))
		}
	}()

	resp := &models.StartProcessingResponse{}
	resp.Body.Message = "Processing started successfully"
	return resp, nil
}

// lookup parses an analysis ID and loads the analysis.
func (h *AnalysisHandler) lookup(ctx context.Context, id string) (uuid.UUID, *models.Analysis, error) {
	analysisID, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, nil, huma.Error400BadRequest("Invalid analysis ID", err)
	}

	analysis, err := h.repo.GetByID(ctx, analysisID)
	if errors.Is(err, repository.ErrNotFound) {
		return uuid.Nil, nil, huma.Error404NotFound("Analysis not found", err)
	}
	if err != nil {
		return uuid.Nil, nil, huma.Error500InternalServerError("Failed to load analysis", err)
	}
	return analysisID, analysis, nil
}

// statusMessage creates a human-readable status message
func statusMessage(status string, progress int) string {
	switch status {
	case models.StatusPending:
		return "Analysis queued for processing..."
	case models.StatusProcessing:
		switch {
		case progress < 20:
			return "Starting analysis..."
		case progress < 50:
			return "Downloading light curve..."
		case progress < 80:
			return "Cleaning light curve and searching for periods..."
		default:
			return "Storing results..."
		}
	case models.StatusCompleted:
		return "Analysis complete!"
	case models.StatusFailed:
		return "Analysis failed. Please try again."
	default:
		return "Unknown status"
	}
}
