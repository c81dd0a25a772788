package models

import (
	"time"
)

// Analysis statuses.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// HealthResponse represents the health check response
type HealthResponse struct {
	Body struct {
		Status  string    `json:"status" example:"healthy" doc:"Service health status"`
		Version string    `json:"version" example:"1.0.0" doc:"API version"`
		Time    time.Time `json:"time" doc:"Current server time"`
	}
}

// CreateAnalysisRequestBody is the body of a create analysis request
type CreateAnalysisRequestBody struct {
	Target   string `json:"target" minLength:"1" maxLength:"100" required:"true" doc:"Target star name (e.g., 'HD74423')"`
	FileSize int64  `json:"file_size" minimum:"1000" maximum:"104857600" required:"true" doc:"Light curve file size in bytes"`
	MimeType string `json:"mime_type" enum:"application/fits,image/fits,text/plain" required:"true" doc:"Light curve file MIME type"`
}

// CreateAnalysisRequest represents a request to create a new analysis
type CreateAnalysisRequest struct {
	Body CreateAnalysisRequestBody
}

// CreateAnalysisResponseBody is the body of the create analysis response
type CreateAnalysisResponseBody struct {
	ID        string `json:"id" doc:"Analysis unique identifier"`
	UploadURL string `json:"upload_url" doc:"Pre-signed S3 URL for the light curve upload"`
	ExpiresIn int    `json:"expires_in" doc:"URL expiration time in seconds"`
}

// CreateAnalysisResponse represents the response from creating an analysis
type CreateAnalysisResponse struct {
	Body CreateAnalysisResponseBody
}

// GetAnalysisStatusRequest represents a request to get analysis status
type GetAnalysisStatusRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisStatusResponseBody is the body of the status response
type GetAnalysisStatusResponseBody struct {
	ID        string  `json:"id" doc:"Analysis ID"`
	Status    string  `json:"status" enum:"pending,processing,completed,failed" doc:"Analysis status"`
	Progress  int     `json:"progress" minimum:"0" maximum:"100" doc:"Analysis progress percentage"`
	Message   string  `json:"message,omitempty" doc:"Human-readable status message"`
	Error     *string `json:"error,omitempty" doc:"Failure reason when the analysis failed"`
	ResultsID *string `json:"results_id,omitempty" doc:"Results ID when analysis completes"`
}

// GetAnalysisStatusResponse represents the current status of an analysis
type GetAnalysisStatusResponse struct {
	Body GetAnalysisStatusResponseBody
}

// GetAnalysisResultsRequest represents a request to get analysis results
type GetAnalysisResultsRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// GetAnalysisResultsResponseBody is the body of the results response
type GetAnalysisResultsResponseBody struct {
	ID         string            `json:"id" doc:"Results ID"`
	AnalysisID string            `json:"analysis_id" doc:"Analysis ID"`
	Target     string            `json:"target" doc:"Target star name"`
	Candidates []Candidate       `json:"candidates" doc:"Candidate periods ordered by power"`
	Counts     StageCounts       `json:"counts" doc:"Samples retained after each cleaning stage"`
	FluxMax    float64           `json:"flux_max" doc:"Flux maximum used for normalization"`
	Artifacts  map[string]string `json:"artifacts,omitempty" doc:"Download URLs for snapshots and plots"`
	CreatedAt  time.Time         `json:"created_at" doc:"Results creation timestamp"`
}

// GetAnalysisResultsResponse represents the complete analysis results
type GetAnalysisResultsResponse struct {
	Body GetAnalysisResultsResponseBody
}

// ListAnalysesRequest represents a request to list the analyses of a target
type ListAnalysesRequest struct {
	Target string `query:"target" required:"true" minLength:"1" doc:"Target star name"`
}

// AnalysisSummary is one entry of an analysis listing
type AnalysisSummary struct {
	ID          string     `json:"id" doc:"Analysis ID"`
	Target      string     `json:"target" doc:"Target star name"`
	Status      string     `json:"status" doc:"Analysis status"`
	Progress    int        `json:"progress" doc:"Analysis progress percentage"`
	CreatedAt   time.Time  `json:"created_at" doc:"Creation timestamp"`
	CompletedAt *time.Time `json:"completed_at,omitempty" doc:"Completion timestamp"`
}

// ListAnalysesResponse lists analyses newest first
type ListAnalysesResponse struct {
	Body struct {
		Analyses []AnalysisSummary `json:"analyses" doc:"Analyses of the target, newest first"`
	}
}

// StartProcessingRequest represents a request to start processing an uploaded file
type StartProcessingRequest struct {
	ID string `path:"id" doc:"Analysis ID"`
}

// StartProcessingResponse represents the response from starting processing
type StartProcessingResponse struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// Analysis represents the core analysis entity (for internal use)
type Analysis struct {
	ID          string     `json:"id"`
	Target      string     `json:"target"`
	Status      string     `json:"status"`
	Progress    int        `json:"progress"`
	DatasetKey  *string    `json:"dataset_key,omitempty"`
	ErrorMsg    *string    `json:"error_message,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StageCounts records how many samples survived each cleaning stage.
type StageCounts struct {
	Raw        int `json:"raw" doc:"Samples loaded from the table"`
	Finite     int `json:"finite" doc:"Samples with finite flux"`
	NoOutlier  int `json:"no_outlier" doc:"Samples at or above the outlier threshold"`
	Usable     int `json:"usable" doc:"Samples with finite time and a finite positive flux error"`
	Normalized int `json:"normalized" doc:"Samples in the cleaned series"`
}

// AnalysisResults represents the stored analysis results
type AnalysisResults struct {
	ID         string            `json:"id"`
	AnalysisID string            `json:"analysis_id"`
	Candidates []Candidate       `json:"candidates"`
	Counts     StageCounts       `json:"counts"`
	FluxMax    float64           `json:"flux_max"`
	Artifacts  map[string]string `json:"artifacts,omitempty"` // artifact name -> storage key
	CreatedAt  time.Time         `json:"created_at"`
}
