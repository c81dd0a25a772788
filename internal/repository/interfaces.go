package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/RMahshie/lightcurve/pkg/models"
)

// ErrNotFound is returned when no row matches the requested ID.
var ErrNotFound = errors.New("record not found")

// AnalysisRepository defines the interface for analysis data operations
type AnalysisRepository interface {
	Create(ctx context.Context, analysis *models.Analysis) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error)
	GetByTarget(ctx context.Context, target string) ([]*models.Analysis, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error
	UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error
	StoreResults(ctx context.Context, results *models.AnalysisResults) error
	GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error)
}
