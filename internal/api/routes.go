package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/RMahshie/lightcurve/internal/api/handlers"
	"github.com/RMahshie/lightcurve/internal/processing"
	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/internal/storage"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// Version is reported by the health endpoint and the OpenAPI document.
const Version = "1.0.0"

// RegisterHealth registers the health check endpoint
func RegisterHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns the health status of the service",
	}, func(ctx context.Context, input *struct{}) (*models.HealthResponse, error) {
		resp := &models.HealthResponse{}
		resp.Body.Status = "healthy"
		resp.Body.Version = Version
		resp.Body.Time = time.Now()
		return resp, nil
	})
}

// RegisterRoutes sets up all API routes
func RegisterRoutes(api huma.API, s3Service storage.S3Service, analysisRepo repository.AnalysisRepository, processingSvc processing.ProcessingService) {
	analysisHandler := handlers.NewAnalysisHandler(analysisRepo, s3Service, processingSvc)

	huma.Register(api, huma.Operation{
		OperationID: "createAnalysis",
		Method:      http.MethodPost,
		Path:        "/api/analyses",
		Summary:     "Create a new analysis",
		Description: "Creates a new analysis record and returns an upload URL for the light curve table",
		Tags:        []string{"Analysis"},
	}, analysisHandler.CreateAnalysis)

	huma.Register(api, huma.Operation{
		OperationID: "listAnalyses",
		Method:      http.MethodGet,
		Path:        "/api/analyses",
		Summary:     "List analyses of a target",
		Description: "Returns every analysis of a target star, newest first",
		Tags:        []string{"Analysis"},
	}, analysisHandler.ListAnalyses)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisStatus",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/status",
		Summary:     "Get analysis status",
		Description: "Returns the current status and progress of an analysis",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisStatus)

	huma.Register(api, huma.Operation{
		OperationID: "getAnalysisResults",
		Method:      http.MethodGet,
		Path:        "/api/analyses/{id}/results",
		Summary:     "Get analysis results",
		Description: "Returns the candidate periods, stage counts and artifact download URLs",
		Tags:        []string{"Analysis"},
	}, analysisHandler.GetAnalysisResults)

	huma.Register(api, huma.Operation{
		OperationID: "startProcessing",
		Method:      http.MethodPost,
		Path:        "/api/analyses/{id}/process",
		Summary:     "Start processing analysis",
		Description: "Starts processing an uploaded light curve",
		Tags:        []string{"Analysis"},
	}, analysisHandler.StartProcessing)
}
