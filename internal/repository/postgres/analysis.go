package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/RMahshie/lightcurve/internal/repository"
	"github.com/RMahshie/lightcurve/pkg/models"
)

// PostgresAnalysisRepository implements AnalysisRepository for PostgreSQL
type PostgresAnalysisRepository struct {
	db *sql.DB
}

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository
func NewPostgresAnalysisRepository(db *sql.DB) repository.AnalysisRepository {
	return &PostgresAnalysisRepository{db: db}
}

// Create inserts a new analysis record
func (r *PostgresAnalysisRepository) Create(ctx context.Context, analysis *models.Analysis) error {
	query := `
		INSERT INTO analyses (id, target, status, progress, dataset_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		analysis.ID,
		analysis.Target,
		analysis.Status,
		analysis.Progress,
		analysis.DatasetKey,
		analysis.CreatedAt,
		analysis.UpdatedAt)

	return err
}

// GetByID retrieves an analysis by ID
func (r *PostgresAnalysisRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Analysis, error) {
	query := `SELECT ` + repository.AnalysisColumns + ` FROM analyses WHERE id = $1`

	return repository.ScanAnalysis(r.db.QueryRowContext(ctx, query, id))
}

// GetByTarget retrieves every analysis of a star, newest first
func (r *PostgresAnalysisRepository) GetByTarget(ctx context.Context, target string) ([]*models.Analysis, error) {
	query := `SELECT ` + repository.AnalysisColumns + `
		FROM analyses
		WHERE target = $1
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, target)
	if err != nil {
		return nil, err
	}
	return repository.ScanAnalyses(rows)
}

// UpdateStatus updates the status and progress of an analysis
func (r *PostgresAnalysisRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string, progress int) error {
	query := `
		UPDATE analyses
		SET status = $1, progress = $2, updated_at = NOW(),
		    completed_at = CASE WHEN $1 = 'completed' THEN NOW() ELSE completed_at END
		WHERE id = $3`

	return exec(ctx, r.db, query, status, progress, id)
}

// UpdateError marks an analysis failed with a reason
func (r *PostgresAnalysisRepository) UpdateError(ctx context.Context, id uuid.UUID, errorMsg string) error {
	query := `
		UPDATE analyses
		SET status = 'failed', error_message = $1, updated_at = NOW()
		WHERE id = $2`

	return exec(ctx, r.db, query, errorMsg, id)
}

// StoreResults stores analysis results
func (r *PostgresAnalysisRepository) StoreResults(ctx context.Context, results *models.AnalysisResults) error {
	enc, err := repository.EncodeResults(results)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analysis_results (` + repository.ResultsColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err = r.db.ExecContext(ctx, query,
		results.ID,
		results.AnalysisID,
		enc.Candidates,
		enc.Counts,
		results.FluxMax,
		enc.Artifacts,
		results.CreatedAt)

	return err
}

// GetResults retrieves analysis results
func (r *PostgresAnalysisRepository) GetResults(ctx context.Context, analysisID uuid.UUID) (*models.AnalysisResults, error) {
	query := `SELECT ` + repository.ResultsColumns + ` FROM analysis_results WHERE analysis_id = $1`

	return repository.ScanResults(r.db.QueryRowContext(ctx, query, analysisID))
}

func exec(ctx context.Context, db *sql.DB, query string, args ...any) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("analysis %v: %w", args[len(args)-1], repository.ErrNotFound)
	}
	return nil
}
