package handlers

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/internal/storage"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// MockAnalysisRepository implements repository.AnalysisRepository for testing
type MockAnalysisRepository struct {
	mock.Mock
}

func (m *MockAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	args := m.Called(ctx, analysis)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*models.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) GetByTarget(ctx context.Context, target string) ([]*models.Analysis, error) {
	args := m.Called(ctx, target)
	return args.Get(0).([]*models.Analysis), args.Error(1)
}

func (m *MockAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	args := m.Called(ctx, id, status, progress)
	return args.Error(0)
}

func (m *MockAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	args := m.Called(ctx, id, errorMsg)
	return args.Error(0)
}

func (m *MockAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	args := m.Called(ctx, results)
	return args.Error(0)
}

func (m *MockAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	args := m.Called(ctx, analysisID)
	return args.Get(0).(*models.AnalysisResults), args.Error(1)
}

// MockS3Service implements storage.S3Service for testing
type MockS3Service struct {
	mock.Mock
}

func (m *MockS3Service) GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error) {
	args := m.Called(ctx, key, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) GenerateDownloadURL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockS3Service) UploadFile(ctx context.Context, key string, body io.Reader, contentType string) error {
	args := m.Called(ctx, key, body, contentType)
	return args.Error(0)
}

func (m *MockS3Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockProcessingService implements processing.ProcessingService for testing
type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessAnalysis(ctx context.Context, analysisID uuid.UUID) error {
	args := m.Called(ctx, analysisID)
	return args.Error(0)
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "not a huma status error: %v", err)
	return se.GetStatus()
}

func TestCreateAnalysis(t *testing.T) {
	tests := []struct {
		name      string
		input     models.CreateAnalysisRequestBody
		mockSetup func(*MockAnalysisRepository, *MockS3Service)
		wantCode  int
	}{
		{
			name:  "valid FITS table",
			input: models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 2 * 1024 * 1024, MimeType: "application/fits"},
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.MatchedBy(func(k string) bool {
					return len(k) > len("uploads/") && k[len(k)-5:] == ".fits"
				}), "application/fits").Return("https://example.com/upload", nil)
				mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *models.Analysis) bool {
					return a.Target == "HD74423" && a.Status == models.StatusPending && a.DatasetKey != nil
				})).Return(nil)
			},
			wantCode: 200,
		},
		{
			name:      "file too small",
			input:     models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 500, MimeType: "text/plain"},
			mockSetup: func(*MockAnalysisRepository, *MockS3Service) {},
			wantCode:  400,
		},
		{
			name:      "file too large",
			input:     models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 200 * 1024 * 1024, MimeType: "text/plain"},
			mockSetup: func(*MockAnalysisRepository, *MockS3Service) {},
			wantCode:  400,
		},
		{
			name:      "unsupported MIME type",
			input:     models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 5000, MimeType: "audio/wav"},
			mockSetup: func(*MockAnalysisRepository, *MockS3Service) {},
			wantCode:  400,
		},
		{
			name:  "S3 failure",
			input: models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 5000, MimeType: "text/plain"},
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "text/plain").Return("", assert.AnError)
			},
			wantCode: 400,
		},
		{
			name:  "database failure",
			input: models.CreateAnalysisRequestBody{Target: "HD74423", FileSize: 5000, MimeType: "image/fits"},
			mockSetup: func(mockRepo *MockAnalysisRepository, mockS3 *MockS3Service) {
				mockS3.On("GenerateUploadURL", mock.Anything, mock.Anything, "image/fits").Return("https://example.com/upload", nil)
				mockRepo.On("Create", mock.Anything, mock.Anything).Return(assert.AnError)
			},
			wantCode: 500,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAnalysisRepository{}
			mockS3 := &MockS3Service{}
			mockProc := &MockProcessingService{}
			tt.mockSetup(mockRepo, mockS3)

			handler := NewAnalysisHandler(mockRepo, mockS3, mockProc)
			resp, err := handler.CreateAnalysis(context.Background(), &models.CreateAnalysisRequest{Body: tt.input})

			if tt.wantCode != 200 {
				require.Error(t, err)
				assert.Equal(t, tt.wantCode, statusOf(t, err))
			} else {
				require.NoError(t, err)
				assert.NotEmpty(t, resp.Body.ID)
				assert.Equal(t, "https://example.com/upload", resp.Body.UploadURL)
				assert.Equal(t, 900, resp.Body.ExpiresIn) // 15 minutes in seconds
			}

			mockRepo.AssertExpectations(t)
			mockS3.AssertExpectations(t)
			mockProc.AssertExpectations(t)
		})
	}
}

func TestGetAnalysisStatus(t *testing.T) {
	id := uuid.New()
	failure := "no finite samples"

	tests := []struct {
		name        string
		id          string
		mockSetup   func(*MockAnalysisRepository)
		wantCode    int
		wantStatus  string
		wantResults bool
	}{
		{
			name:     "invalid id",
			id:       "not-a-uuid",
			wantCode: 400,
		},
		{
			name: "not found",
			id:   id.String(),
			mockSetup: func(m *MockAnalysisRepository) {
				m.On("GetByID", mock.Anything, id).Return((*models.Analysis)(nil), repository.ErrNotFound)
			},
			wantCode: 404,
		},
		{
			name: "processing",
			id:   id.String(),
			mockSetup: func(m *MockAnalysisRepository) {
				m.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusProcessing, Progress: 50}, nil)
			},
			wantCode:   200,
			wantStatus: models.StatusProcessing,
		},
		{
			name: "completed",
			id:   id.String(),
			mockSetup: func(m *MockAnalysisRepository) {
				m.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusCompleted, Progress: 100}, nil)
				m.On("GetResults", mock.Anything, id).Return(&models.AnalysisResults{ID: "results-1"}, nil)
			},
			wantCode:    200,
			wantStatus:  models.StatusCompleted,
			wantResults: true,
		},
		{
			name: "failed",
			id:   id.String(),
			mockSetup: func(m *MockAnalysisRepository) {
				m.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusFailed, ErrorMsg: &failure}, nil)
			},
			wantCode:   200,
			wantStatus: models.StatusFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &MockAnalysisRepository{}
			if tt.mockSetup != nil {
				tt.mockSetup(mockRepo)
			}

			handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
			resp, err := handler.GetAnalysisStatus(context.Background(), &models.GetAnalysisStatusRequest{ID: tt.id})

			if tt.wantCode != 200 {
				assert.Equal(t, tt.wantCode, statusOf(t, err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.Body.Status)
			assert.NotEmpty(t, resp.Body.Message)
			assert.Equal(t, tt.wantResults, resp.Body.ResultsID != nil)
			if tt.wantStatus == models.StatusFailed {
				require.NotNil(t, resp.Body.Error)
				assert.Equal(t, failure, *resp.Body.Error)
			}
			mockRepo.AssertExpectations(t)
		})
	}
}

func TestGetAnalysisResults(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockS3 := &MockS3Service{}

	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Target: "HD74423", Status: models.StatusCompleted}, nil)
	mockRepo.On("GetResults", mock.Anything, id).Return(&models.AnalysisResults{
		ID:         "results-1",
		AnalysisID: id.String(),
		Candidates: []models.Candidate{{Rank: 1, Frequency: 0.2, Period: 5, Power: 0.95}},
		Counts:     models.StageCounts{Raw: 10, Finite: 9, NoOutlier: 8, Usable: 8, Normalized: 8},
		FluxMax:    64000,
		Artifacts:  map[string]string{"exit_3.eps": storage.ArtifactKey(id.String(), "exit_3.eps")},
		CreatedAt:  time.Now(),
	}, nil)
	mockS3.On("GenerateDownloadURL", mock.Anything, storage.ArtifactKey(id.String(), "exit_3.eps")).Return("https://example.com/exit_3.eps", nil)

	handler := NewAnalysisHandler(mockRepo, mockS3, &MockProcessingService{})
	resp, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})

	require.NoError(t, err)
	assert.Equal(t, "HD74423", resp.Body.Target)
	assert.Equal(t, 5.0, resp.Body.Candidates[0].Period)
	assert.Equal(t, 8, resp.Body.Counts.Normalized)
	assert.Equal(t, map[string]string{"exit_3.eps": "https://example.com/exit_3.eps"}, resp.Body.Artifacts)
	mockRepo.AssertExpectations(t)
	mockS3.AssertExpectations(t)
}

func TestGetAnalysisResults_NotCompleted(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusProcessing}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
	_, err := handler.GetAnalysisResults(context.Background(), &models.GetAnalysisResultsRequest{ID: id.String()})

	assert.Equal(t, 409, statusOf(t, err))
}

func TestStartProcessing(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockProc := &MockProcessingService{}
	done := make(chan struct{})

	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusPending}, nil)
	mockProc.On("ProcessAnalysis", mock.Anything, id).Return(nil).Run(func(mock.Arguments) { close(done) })

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)
	resp, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})

	require.NoError(t, err)
	assert.Equal(t, "Processing started successfully", resp.Body.Message)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("processing was not started")
	}
	mockProc.AssertExpectations(t)
}

func TestStartProcessing_AlreadyRunning(t *testing.T) {
	id := uuid.New()
	mockRepo := &MockAnalysisRepository{}
	mockProc := &MockProcessingService{}
	mockRepo.On("GetByID", mock.Anything, id).Return(&models.Analysis{ID: id.String(), Status: models.StatusProcessing}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, mockProc)
	_, err := handler.StartProcessing(context.Background(), &models.StartProcessingRequest{ID: id.String()})

	assert.Equal(t, 409, statusOf(t, err))
	mockProc.AssertNotCalled(t, "ProcessAnalysis", mock.Anything, mock.Anything)
}

func TestListAnalyses(t *testing.T) {
	mockRepo := &MockAnalysisRepository{}
	now := time.Now()
	mockRepo.On("GetByTarget", mock.Anything, "HD74423").Return([]*models.Analysis{
		{ID: "b", Target: "HD74423", Status: models.StatusCompleted, Progress: 100, CreatedAt: now, CompletedAt: &now},
		{ID: "a", Target: "HD74423", Status: models.StatusFailed, CreatedAt: now.Add(-time.Hour)},
	}, nil)

	handler := NewAnalysisHandler(mockRepo, &MockS3Service{}, &MockProcessingService{})
	resp, err := handler.ListAnalyses(context.Background(), &models.ListAnalysesRequest{Target: "HD74423"})

	require.NoError(t, err)
	require.Len(t, resp.Body.Analyses, 2)
	assert.Equal(t, "b", resp.Body.Analyses[0].ID)
	assert.NotNil(t, resp.Body.Analyses[0].CompletedAt)
}

func TestStatusMessage(t *testing.T) {
	assert.Equal(t, "Downloading light curve...", statusMessage(models.StatusProcessing, 20))
	assert.Equal(t, "Cleaning light curve and searching for periods...", statusMessage(models.StatusProcessing, 50))
	assert.Equal(t, "Storing results...", statusMessage(models.StatusProcessing, 90))
	assert.Equal(t, "Unknown status", statusMessage("archived", 0))
}
